package host

import (
	"strings"
)

// Info strings are backslash separated key/value lists: \key\value\key\value.

func infoPairs(info string) [][2]string {
	parts := strings.Split(strings.TrimPrefix(info, `\`), `\`)
	pairs := make([][2]string, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		pairs = append(pairs, [2]string{parts[i], parts[i+1]})
	}
	return pairs
}

// InfoValueForKey returns the value for key, compared case-insensitively,
// or "" when absent.
func InfoValueForKey(info, key string) string {
	for _, pair := range infoPairs(info) {
		if strings.EqualFold(pair[0], key) {
			return pair[1]
		}
	}
	return ""
}

// InfoRemoveKey drops every pair whose key matches exactly.
func InfoRemoveKey(info, key string) string {
	if strings.Contains(key, `\`) {
		return info
	}
	var b strings.Builder
	for _, pair := range infoPairs(info) {
		if pair[0] == key {
			continue
		}
		b.WriteString(`\` + pair[0] + `\` + pair[1])
	}
	return b.String()
}

// InfoSetValueForKey replaces key with value, placing the new pair first.
// Keys or values containing separators or quotes, or a result longer than
// MaxInfoString, leave info unchanged and report false.
func InfoSetValueForKey(info, key, value string) (string, bool) {
	for _, s := range []string{key, value} {
		if strings.ContainsAny(s, `\;"`) {
			return info, false
		}
	}
	stripped := InfoRemoveKey(info, key)
	if value == "" {
		return stripped, true
	}
	result := `\` + key + `\` + value + stripped
	if len(result) >= MaxInfoString {
		return info, false
	}
	return result, true
}

// CleanString removes ^X color codes and anything outside printable ASCII.
func CleanString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '^' && i+1 < len(s) && s[i+1] != '^' {
			i++
			continue
		}
		if c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		}
	}
	return b.String()
}
