package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModels_LetterBlank(t *testing.T) {
	tcs := []struct {
		name     string
		letter   Letter
		expected bool
	}{
		{
			name:     "NoLines",
			letter:   Letter{},
			expected: true,
		},
		{
			name:     "OnlyEmptyLines",
			letter:   Letter{Lines: []string{"", "", ""}},
			expected: true,
		},
		{
			name:     "HasContent",
			letter:   Letter{Lines: []string{"", "hi", ""}},
			expected: false,
		},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, c.letter.Blank(), "unexpected blankness")
		})
	}
}

func TestModels_LetterNormalized(t *testing.T) {
	tcs := []struct {
		name     string
		letter   Letter
		verifyFn func(*testing.T, *Letter)
	}{
		{
			name:   "EmptySubmissionFallsBackToDefault",
			letter: Letter{},
			verifyFn: func(t *testing.T, n *Letter) {
				d := DefaultLetter()
				assert.Equal(t, d.Recipient, n.Recipient)
				assert.Equal(t, d.Lines, n.Lines)
				assert.Equal(t, d.Signature, n.Signature)
				assert.Equal(t, d.SenderName, n.SenderName)
				assert.Equal(t, StickerHeart, n.Sticker)
			},
		},
		{
			name: "ContentPreservedIncludingBlankLines",
			letter: Letter{
				Recipient:  "Sam",
				Lines:      []string{"hi", "", "there"},
				Signature:  "Bye",
				SenderName: "A",
				Sticker:    StickerRose,
			},
			verifyFn: func(t *testing.T, n *Letter) {
				assert.Equal(t, "Sam", n.Recipient)
				assert.Equal(t, []string{"hi", "", "there"}, n.Lines)
				assert.Equal(t, "Bye", n.Signature)
				assert.Equal(t, "A", n.SenderName)
				assert.Equal(t, StickerRose, n.Sticker)
			},
		},
		{
			name:   "UnknownStickerCollapsesToHeart",
			letter: Letter{Lines: []string{"hey"}, Sticker: "unicorn"},
			verifyFn: func(t *testing.T, n *Letter) {
				assert.Equal(t, StickerHeart, n.Sticker)
			},
		},
		{
			name: "PhotosCapped",
			letter: Letter{
				Lines:  []string{"hey"},
				Photos: []string{"p1", "p2", "p3", "p4", "p5"},
			},
			verifyFn: func(t *testing.T, n *Letter) {
				assert.Equal(t, []string{"p1", "p2", "p3"}, n.Photos)
			},
		},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			c.verifyFn(t, c.letter.Normalized())
		})
	}
}

func TestModels_NormalizedDoesNotAliasInput(t *testing.T) {
	l := Letter{Lines: []string{"a", "b"}, Photos: []string{"p"}}
	n := l.Normalized()
	n.Lines[0] = "mutated"
	n.Photos[0] = "mutated"
	assert.Equal(t, "a", l.Lines[0], "normalization must copy lines")
	assert.Equal(t, "p", l.Photos[0], "normalization must copy photos")
}
