package user_test

import (
	"testing"

	"github.com/lakshb/ai-chat-relay/internal/model/user"
)

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"ada@x.com", "ada_x_com"},
		{"Ada.Lovelace@example.org", "Ada_Lovelace_example_org"},
		{"plain_name-ok", "plain_name-ok"},
		{"weird!#$chars", "weird___chars"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := user.SanitizeID(tc.email); got != tc.want {
			t.Errorf("SanitizeID(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}

func TestSanitizeIDCollision(t *testing.T) {
	a := user.SanitizeID("ada@x.com")
	b := user.SanitizeID("ada.x@com")
	if a != b {
		t.Fatalf("expected colliding ids, got %q and %q", a, b)
	}
}
