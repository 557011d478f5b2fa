package models

import (
	cst "everink.io/ember/constants"
)

/*
 Application layer data models.
*/

// Sticker identifies the decorative icon stamped on a letter.
type Sticker string

const (
	StickerHeart    Sticker = "heart"
	StickerRose     Sticker = "rose"
	StickerEnvelope Sticker = "envelope"
	StickerSparkle  Sticker = "sparkle"
	StickerStar     Sticker = "star"
)

var StickerVals = map[Sticker]struct{}{
	StickerHeart:    {},
	StickerRose:     {},
	StickerEnvelope: {},
	StickerSparkle:  {},
	StickerStar:     {},
}

// Letter is the user-authored payload of the experience. An empty string in
// Lines renders as a paragraph break and must survive round trips. Photos
// holds self-contained encoded images, at most PhotoCountMax of them.
type Letter struct {
	Recipient  string
	Lines      []string
	Signature  string
	SenderName string
	Sticker    Sticker
	Photos     []string
}

// DefaultLetter returns the built-in letter content shown when the sender
// skips the editor or submits an empty message.
func DefaultLetter() *Letter {
	return &Letter{
		Recipient: "My Dearest",
		Lines: []string{
			"From the moment I met you,",
			"my world became a little brighter,",
			"my heart a little fuller,",
			"and every day since has been",
			"a gift I never knew I needed.",
			"",
			"You are my favorite hello",
			"and my hardest goodbye.",
			"",
			"In this chaotic world,",
			"you are my calm,",
			"my peace,",
			"my home.",
			"",
			"I love you more than words",
			"could ever express.",
		},
		Signature:  "Forever Yours",
		SenderName: "♥",
		Sticker:    StickerHeart,
	}
}

// Normalized returns a copy of the letter with user edits cleaned up:
// blank salutation/sign-off/sender fall back to the defaults, an empty body
// falls back to the default lines, the sticker collapses to a known value
// and photos are capped at PhotoCountMax.
func (l *Letter) Normalized() *Letter {
	d := DefaultLetter()
	n := &Letter{
		Recipient:  l.Recipient,
		Signature:  l.Signature,
		SenderName: l.SenderName,
		Sticker:    l.Sticker,
	}
	if n.Recipient == "" {
		n.Recipient = d.Recipient
	}
	if n.Signature == "" {
		n.Signature = d.Signature
	}
	if n.SenderName == "" {
		n.SenderName = d.SenderName
	}
	if _, ok := StickerVals[n.Sticker]; !ok {
		n.Sticker = StickerHeart
	}
	if l.Blank() {
		n.Lines = append([]string{}, d.Lines...)
	} else {
		n.Lines = append([]string{}, l.Lines...)
	}
	if len(l.Photos) > 0 {
		photos := l.Photos
		if len(photos) > cst.PhotoCountMax {
			photos = photos[:cst.PhotoCountMax]
		}
		n.Photos = append([]string{}, photos...)
	}
	return n
}

// Blank reports whether the letter body carries no content at all.
func (l *Letter) Blank() bool {
	for _, line := range l.Lines {
		if line != "" {
			return false
		}
	}
	return true
}
