package dynamics

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestWarnIfExpired(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	warnIfExpired(signedToken(t, time.Now().Add(-time.Hour)))
	if !strings.Contains(buf.String(), "expired") {
		t.Fatalf("expected a warning for an expired token, got %q", buf.String())
	}

	buf.Reset()
	warnIfExpired(signedToken(t, time.Now().Add(time.Hour)))
	if buf.Len() != 0 {
		t.Fatalf("no warning expected for a live token, got %q", buf.String())
	}

	// Opaque (non-JWT) tokens pass through silently; the remote decides.
	buf.Reset()
	warnIfExpired("not-a-jwt")
	if buf.Len() != 0 {
		t.Fatalf("no warning expected for opaque tokens, got %q", buf.String())
	}
}
