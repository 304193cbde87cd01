// Package signature fingerprints module source for access control and audit.
//
// The fingerprint is two 32 bit rolling hashes. It is not cryptographic, it
// only has to be stable and reasonably collision free among a few dozen
// modules an operator vouches for.
package signature

import (
	"fmt"
	"strings"
)

type Signature struct {
	Primary   uint32
	Secondary uint32
}

// Compute hashes content up to the first NUL byte, then mixes in the full
// length.
func Compute(content []byte) Signature {
	h1 := uint32(5381)
	h2 := uint32(0)
	for i, b := range content {
		if b == 0 {
			break
		}
		c := uint32(int32(int8(b)))
		h1 = h1*33 + c
		h2 ^= c * uint32(i+1)
	}
	length := uint32(len(content))
	h1 ^= length
	h2 ^= length * 31
	return Signature{Primary: h1, Secondary: h2}
}

func (s Signature) String() string {
	return fmt.Sprintf("%08X%08X", s.Primary, s.Secondary)
}

// Equal compares against a rendered signature ignoring case.
func (s Signature) Equal(rendered string) bool {
	return strings.EqualFold(s.String(), strings.TrimSpace(rendered))
}

func isSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == ';'
}

// Split tokenizes a module or signature list on spaces, commas and
// semicolons. Empty tokens are dropped.
func Split(list string) []string {
	return strings.FieldsFunc(list, isSeparator)
}

// ParseList upper-cases and tokenizes an allow-list.
func ParseList(list string) []string {
	return Split(strings.ToUpper(list))
}

// Allowed reports whether sig may load under the given allow-list. An empty
// list accepts everything.
func Allowed(list string, sig Signature) bool {
	tokens := ParseList(list)
	if len(tokens) == 0 {
		return true
	}
	for _, tok := range tokens {
		if sig.Equal(tok) {
			return true
		}
	}
	return false
}
