package avatar

import (
	"strings"
	"testing"
)

func TestGravatarURL_KnownDigest(t *testing.T) {
	// md5("myemailaddress@example.com"), the example from Gravatar's docs.
	want := gravatarBase + "0bc83cb571cd1c50ba6f3e8a78ef1346?d=identicon"
	if got := GravatarURL("MyEmailAddress@example.com "); got != want {
		t.Errorf("GravatarURL() = %q, want %q", got, want)
	}
}

func TestGravatarURL_Deterministic(t *testing.T) {
	a := GravatarURL("a@example.com")
	b := GravatarURL("a@example.com")
	if a != b {
		t.Errorf("GravatarURL() not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, gravatarBase) {
		t.Errorf("GravatarURL() = %q, want prefix %q", a, gravatarBase)
	}
}
