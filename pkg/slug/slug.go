package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// Option configures Make.
type Option func(*config)

type config struct {
	maxLength    int
	suffixLength int
}

// MaxLength caps the result, suffix included. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// WithSuffix appends "-" and n random lowercase alphanumerics.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffixLength = n }
}

var folds = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a", 'æ': "ae",
	'ç': "c", 'č': "c", 'ć': "c", 'ď': "d", 'đ': "d",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ě': "e", 'ę': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i", 'ł': "l",
	'ñ': "n", 'ń': "n", 'ň': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o", 'œ': "oe",
	'ř': "r", 'ś': "s", 'š': "s", 'ß': "ss", 'ť': "t",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ů': "u",
	'ý': "y", 'ÿ': "y", 'ź': "z", 'ž': "z", 'ż': "z",
}

// Make turns s into a lowercase, hyphen-separated slug made of [a-z0-9].
// Latin diacritics are folded to ASCII; everything else becomes a separator.
//
//	slug.Make("Café Über Live!") // "cafe-uber-live"
func Make(s string, opts ...Option) string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		var part string
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			part = string(r)
		default:
			part = folds[r]
		}
		if part == "" {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteString(part)
	}
	out := b.String()

	limit := cfg.maxLength
	if cfg.suffixLength > 0 && limit > 0 {
		limit -= cfg.suffixLength + 1
	}
	if cfg.maxLength > 0 && limit >= 0 && len(out) > limit {
		out = strings.TrimRight(out[:limit], "-")
	}

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if out == "" {
			return suffix
		}
		out += "-" + suffix
	}
	return out
}

func randomSuffix(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
