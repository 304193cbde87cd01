package host

import (
	"strings"
	"testing"
)

func TestInfoValueForKey(t *testing.T) {
	info := `\name\^1Bob\rate\25000\cl_guid\ABCD`
	for key, want := range map[string]string{
		"name":    "^1Bob",
		"RATE":    "25000",
		"cl_guid": "ABCD",
		"missing": "",
	} {
		if got := InfoValueForKey(info, key); got != want {
			t.Errorf("InfoValueForKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestInfoSetAndRemove(t *testing.T) {
	info := `\name\Bob\rate\25000`
	got, ok := InfoSetValueForKey(info, "rate", "5000")
	if !ok || got != `\rate\5000\name\Bob` {
		t.Errorf("set rate = %q, %v", got, ok)
	}
	if got, ok := InfoSetValueForKey(info, "name", `evil\value`); ok || got != info {
		t.Errorf("value with separator should be rejected, got %q, %v", got, ok)
	}
	if got, ok := InfoSetValueForKey(info, "name", ""); !ok || got != `\rate\25000` {
		t.Errorf("empty value should remove key, got %q", got)
	}
	if got, ok := InfoSetValueForKey(info, "pad", strings.Repeat("x", MaxInfoString)); ok || got != info {
		t.Errorf("oversized info should be rejected, got %d bytes", len(got))
	}
	if got := InfoRemoveKey(info, "name"); got != `\rate\25000` {
		t.Errorf("InfoRemoveKey = %q", got)
	}
	if got := InfoRemoveKey(info, "Name"); got != info {
		t.Errorf("InfoRemoveKey is case sensitive, got %q", got)
	}
}

func TestCleanString(t *testing.T) {
	for in, want := range map[string]string{
		"^1Red^7White": "RedWhite",
		"a^^b":         "a^",
		"tab\there":    "tabhere",
		"trailing^":    "trailing^",
	} {
		if got := CleanString(in); got != want {
			t.Errorf("CleanString(%q) = %q, want %q", in, got, want)
		}
	}
}
