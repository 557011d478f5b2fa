package codec

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	md "everink.io/ember/models"
)

func TestCodec_RoundTrip(t *testing.T) {
	tcs := []struct {
		name   string
		letter *md.Letter
	}{
		{
			name:   "DefaultLetter",
			letter: md.DefaultLetter(),
		},
		{
			name: "BlankLinesPreservedInOrder",
			letter: &md.Letter{
				Recipient:  "Sam",
				Lines:      []string{"hi", "", ""},
				Signature:  "Bye",
				SenderName: "A",
				Sticker:    md.StickerHeart,
			},
		},
		{
			name: "NonASCIIContent",
			letter: &md.Letter{
				Recipient:  "Chérie",
				Lines:      []string{"Je t'aime ♥", "今日もありがとう"},
				Signature:  "À toi",
				SenderName: "Émile",
				Sticker:    md.StickerRose,
			},
		},
		{
			name: "WithPhotos",
			letter: &md.Letter{
				Recipient:  "You",
				Lines:      []string{"look at these"},
				Signature:  "Me",
				SenderName: "Me",
				Sticker:    md.StickerSparkle,
				Photos: []string{
					"data:image/jpeg;base64,/9j/4AAQSkZJRg==",
					"data:image/jpeg;base64,AAAA",
					"data:image/jpeg;base64,BBBB",
				},
			},
		},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			token, err := Encode(c.letter)
			assert.Nil(t, err, "encoding a valid letter should succeed")
			assert.NotContains(t, token, "+", "token must use the URL alphabet")
			assert.NotContains(t, token, "/", "token must use the URL alphabet")
			assert.NotContains(t, token, "=", "token must carry no padding")

			decoded, derr := Decode(token)
			assert.Nil(t, derr, "decoding a freshly encoded token should succeed")
			assert.Equal(t, c.letter, decoded, "round trip must preserve every field")
		})
	}
}

func TestCodec_PhotoPrefixStripped(t *testing.T) {
	l := &md.Letter{
		Lines:  []string{"x"},
		Photos: []string{"data:image/jpeg;base64,AAAA"},
	}
	token, err := Encode(l)
	assert.Nil(t, err)
	raw, berr := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, berr)
	assert.NotContains(t, string(raw), "data:image", "photo prefix must not be serialized")
}

func TestCodec_DecodeMalformed(t *testing.T) {
	validToken := func() string {
		token, err := Encode(md.DefaultLetter())
		assert.Nil(t, err)
		return token
	}()
	tcs := []struct {
		name  string
		token string
	}{
		{name: "Empty", token: ""},
		{name: "NotBase64", token: "%%%%%"},
		{name: "NotJSON", token: base64.RawURLEncoding.EncodeToString([]byte("junk"))},
		{name: "Truncated", token: validToken[:len(validToken)/2]},
		{
			name:  "JSONWithoutLetterFields",
			token: base64.RawURLEncoding.EncodeToString([]byte(`{"foo":"bar"}`)),
		},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			l, err := Decode(c.token)
			assert.Nil(t, l, "malformed token must yield no letter")
			assert.NotNil(t, err, "malformed token must yield an error")
		})
	}
}

func TestCodec_DecodeToleratesAlphabetVariants(t *testing.T) {
	l := &md.Letter{
		Recipient:  "Sam",
		Lines:      []string{"??>>~~", "", "!!"},
		Signature:  "Bye",
		SenderName: "A",
	}
	token, err := Encode(l)
	assert.Nil(t, err)
	// rebuild the token with the standard alphabet plus padding
	raw, berr := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, berr)
	std := base64.StdEncoding.EncodeToString(raw)
	decoded, derr := Decode(std)
	assert.Nil(t, derr)
	assert.Equal(t, l, decoded)
}

func TestCodec_DecodeLegacyShape(t *testing.T) {
	legacy := map[string]interface{}{
		"recipient":  "Sam",
		"lines":      []string{"hi", "", "there"},
		"signature":  "Bye",
		"senderName": "A",
		"sticker":    "rose",
		"photos":     []string{"data:image/jpeg;base64,AAAA"},
	}
	b, err := json.Marshal(legacy)
	assert.NoError(t, err)
	token := base64.RawURLEncoding.EncodeToString(b)

	decoded, derr := Decode(token)
	assert.Nil(t, derr, "legacy full-key token should decode")
	assert.Equal(t, &md.Letter{
		Recipient:  "Sam",
		Lines:      []string{"hi", "", "there"},
		Signature:  "Bye",
		SenderName: "A",
		Sticker:    md.StickerRose,
		Photos:     []string{"data:image/jpeg;base64,AAAA"},
	}, decoded)
}

func TestCodec_ParseShareQuery(t *testing.T) {
	token, err := Encode(md.DefaultLetter())
	assert.Nil(t, err)
	otherToken, err2 := Encode(&md.Letter{Lines: []string{"other"}})
	assert.Nil(t, err2)

	tcs := []struct {
		name     string
		rawQuery string
		found    bool
		expected ShareParams
	}{
		{
			name:     "ShortNames",
			rawQuery: "l=" + token + "&f=" + url.QueryEscape(url.QueryEscape("Anne Marie")),
			found:    true,
			expected: ShareParams{Token: token, From: "Anne Marie"},
		},
		{
			name:     "LegacyNames",
			rawQuery: "letter=" + token + "&from=" + url.QueryEscape(url.QueryEscape("Anne Marie")),
			found:    true,
			expected: ShareParams{Token: token, From: "Anne Marie"},
		},
		{
			name:     "ShortWinsOverLegacy",
			rawQuery: "letter=" + otherToken + "&l=" + token,
			found:    true,
			expected: ShareParams{Token: token},
		},
		{
			name:     "NoLetterParam",
			rawQuery: "foo=bar",
			found:    false,
		},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			q, qerr := url.ParseQuery(c.rawQuery)
			assert.NoError(t, qerr)
			params, ok := ParseShareQuery(q)
			assert.Equal(t, c.found, ok, "unexpected share-param detection")
			if c.found {
				assert.Equal(t, c.expected, params)
			}
		})
	}
}

func TestCodec_LegacyAndShortQueriesDecodeIdentically(t *testing.T) {
	l := &md.Letter{
		Recipient:  "Sam",
		Lines:      []string{"hi"},
		Signature:  "Bye",
		SenderName: "A",
	}
	token, err := Encode(l)
	assert.Nil(t, err)

	short, _ := url.ParseQuery("l=" + token)
	legacy, _ := url.ParseQuery("letter=" + token)
	sp, ok1 := ParseShareQuery(short)
	lp, ok2 := ParseShareQuery(legacy)
	assert.True(t, ok1)
	assert.True(t, ok2)

	fromShort, e1 := Decode(sp.Token)
	fromLegacy, e2 := Decode(lp.Token)
	assert.Nil(t, e1)
	assert.Nil(t, e2)
	assert.Equal(t, fromShort, fromLegacy, "both parameter names must carry the same letter")
	assert.Equal(t, l, fromShort)
}

func TestCodec_TokenStaysCompact(t *testing.T) {
	// the short-key transform exists to keep tokens within query-string
	// limits; a default letter must stay well under 1 KB
	token, err := Encode(md.DefaultLetter())
	assert.Nil(t, err)
	assert.Less(t, len(token), 1024, "default letter token unexpectedly large")
	assert.False(t, strings.ContainsAny(token, "+/="), "token must be URL-safe")
}
