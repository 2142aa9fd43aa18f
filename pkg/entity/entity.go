// Package entity decodes and encodes HTML numeric character references.
//
// Only the decimal form with one to three digits is handled: "&#33;" becomes
// "!". Named references ("&eacute;"), hexadecimal references ("&#x21;") and
// references with four or more digits ("&#8364;") are left exactly as they
// are. This is the subset the translation endpoint emits; it is not a
// general HTML unescaper.
package entity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxCodePoint is the largest code point a three-digit reference can carry.
const MaxCodePoint = 999

var numericRef = regexp.MustCompile(`&#([0-9]{1,3});`)

// DecodeNumeric replaces every "&#D;" (D = 1-3 decimal digits) in s with
// the character at code point D.
func DecodeNumeric(s string) string {
	if !strings.Contains(s, "&#") {
		return s
	}
	return numericRef.ReplaceAllStringFunc(s, func(ref string) string {
		n, err := strconv.Atoi(ref[2 : len(ref)-1])
		if err != nil {
			return ref
		}
		return string(rune(n))
	})
}

// EncodeNumeric escapes every non-ASCII rune whose code point fits in three
// digits as "&#D;". Everything else is copied through, so
// DecodeNumeric(EncodeNumeric(s)) == s for any s that contains no literal
// "&#D;" text of its own.
func EncodeNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r >= utf8.RuneSelf && r <= MaxCodePoint && r != utf8.RuneError {
			b.WriteString("&#")
			b.WriteString(strconv.Itoa(int(r)))
			b.WriteByte(';')
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}
