// Package codec turns letters into compact URL-safe tokens and back.
//
// Query-string length is the binding constraint here: the token rides in a
// single URL parameter, so the wire form uses one-char JSON keys, joins body
// lines with a newline and strips the repeated image prefix off each photo
// before base64-encoding with the URL alphabet.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
	md "everink.io/ember/models"
)

// photoPrefix is the data-URL prefix shared by every encoded photo. It is
// stripped on encode and restored on decode to keep repeated prefixes out
// of the token.
const photoPrefix = "data:image/jpeg;base64,"

// wire is the compact serialization shape. Msg is a pointer so decode can
// tell "short form present with empty body" apart from "short form absent".
type wire struct {
	To      string   `json:"t"`
	Msg     *string  `json:"m"`
	Sig     string   `json:"s,omitempty"`
	From    string   `json:"f,omitempty"`
	Sticker string   `json:"k,omitempty"`
	Photos  []string `json:"p,omitempty"`
}

// legacyWire is the original full-key serialization shape, still accepted on
// decode so links minted by old senders keep opening.
type legacyWire struct {
	Recipient  string   `json:"recipient"`
	Lines      []string `json:"lines"`
	Signature  string   `json:"signature"`
	SenderName string   `json:"senderName"`
	Sticker    string   `json:"sticker"`
	Photos     []string `json:"photos"`
}

// Encode serializes a letter into a URL-safe token.
func Encode(l *md.Letter) (string, *le.LetterErr) {
	if l == nil {
		return "", le.ErrBadInput("no letter to encode")
	}
	msg := strings.Join(l.Lines, "\n")
	w := wire{
		To:      l.Recipient,
		Msg:     &msg,
		Sig:     l.Signature,
		From:    l.SenderName,
		Sticker: string(l.Sticker),
	}
	if len(l.Photos) > 0 {
		w.Photos = make([]string, len(l.Photos))
		for i, p := range l.Photos {
			w.Photos[i] = strings.TrimPrefix(p, photoPrefix)
		}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", le.ErrServiceFailure("error serializing letter").WithCause(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode reverses Encode. It never panics: any malformed token yields a
// not-found style error the caller can treat as "no letter". Tokens using
// the standard base64 alphabet or carrying padding are accepted too.
func Decode(token string) (*md.Letter, *le.LetterErr) {
	if token == "" {
		return nil, le.ErrBadInput("empty letter token")
	}
	normalized := strings.TrimRight(token, "=")
	normalized = strings.ReplaceAll(normalized, "+", "-")
	normalized = strings.ReplaceAll(normalized, "/", "_")
	b, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return nil, le.ErrBadInput("letter token is not valid base64").WithCause(err)
	}
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, le.ErrBadInput("letter token is not valid JSON").WithCause(err)
	}
	if w.Msg != nil {
		l := &md.Letter{
			Recipient:  w.To,
			Lines:      strings.Split(*w.Msg, "\n"),
			Signature:  w.Sig,
			SenderName: w.From,
			Sticker:    md.Sticker(w.Sticker),
		}
		if len(w.Photos) > 0 {
			l.Photos = make([]string, len(w.Photos))
			for i, p := range w.Photos {
				l.Photos[i] = restorePhotoPrefix(p)
			}
		}
		return l, nil
	}
	// fall back to the original full-key shape
	var lg legacyWire
	if err := json.Unmarshal(b, &lg); err != nil {
		return nil, le.ErrBadInput("letter token is not valid JSON").WithCause(err)
	}
	if lg.Lines == nil {
		return nil, le.ErrBadInput("letter token is missing its body")
	}
	l := &md.Letter{
		Recipient:  lg.Recipient,
		Lines:      lg.Lines,
		Signature:  lg.Signature,
		SenderName: lg.SenderName,
		Sticker:    md.Sticker(lg.Sticker),
	}
	if len(lg.Photos) > 0 {
		l.Photos = make([]string, len(lg.Photos))
		for i, p := range lg.Photos {
			l.Photos[i] = restorePhotoPrefix(p)
		}
	}
	return l, nil
}

func restorePhotoPrefix(p string) string {
	if p == "" || strings.HasPrefix(p, "data:") {
		return p
	}
	return photoPrefix + p
}

// ShareParams is the letter-bearing portion of a page URL query.
type ShareParams struct {
	Token string
	From  string
}

// ParseShareQuery extracts the letter token and sender name from page query
// parameters, accepting both the short (l / f) and legacy (letter / from)
// names and preferring the short ones. The sender name value is
// percent-encoded a second time by senders, so it gets one extra unescape.
func ParseShareQuery(q url.Values) (ShareParams, bool) {
	token := q.Get(cst.ParamLetter)
	if token == "" {
		token = q.Get(cst.ParamLetterLegacy)
	}
	if token == "" {
		return ShareParams{}, false
	}
	from := q.Get(cst.ParamFrom)
	if from == "" {
		from = q.Get(cst.ParamFromLegacy)
	}
	if unescaped, err := url.QueryUnescape(from); err == nil {
		from = unescaped
	}
	return ShareParams{Token: token, From: from}, true
}
