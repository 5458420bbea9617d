package token

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testPayload() Payload {
	return Payload{
		FindingID:     "fnd_1",
		RootID:        "root_0",
		ScanID:        "scan_1",
		VolumeSerial:  "0x1234ABCD",
		FileID:        "0x0000000100000002",
		Strategy:      Strategy,
		ReparsePolicy: ReparsePolicy,
		Exp:           time.Now().Add(TTL).Unix(),
	}
}

func TestMintVerifyRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	payload := testPayload()

	raw, err := Mint(payload, secret)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Verify(raw, secret)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Errorf("round-tripped payload mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyWrongSecretFails(t *testing.T) {
	raw, err := Mint(testPayload(), []byte("secret-a"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(raw, []byte("secret-b")); err == nil {
		t.Error("expected verification to fail with the wrong secret")
	}
}

func TestVerifyTamperedBodyFails(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := Mint(testPayload(), secret)
	if err != nil {
		t.Fatal(err)
	}
	// Replace a character in the middle of the body segment, where every
	// base64 bit is significant, so the decoded body always changes.
	i := strings.IndexByte(raw, '.') / 2
	replacement := "A"
	if raw[i] == 'A' {
		replacement = "B"
	}
	tampered := raw[:i] + replacement + raw[i+1:]
	if _, err := Verify(tampered, secret); err == nil {
		t.Error("expected verification to fail on tampered token")
	}
}

func TestVerifyMalformedFails(t *testing.T) {
	if _, err := Verify("not-a-token", []byte("secret")); err == nil {
		t.Error("expected malformed token to fail verification")
	}
}

func TestMintDeterministic(t *testing.T) {
	secret := []byte("test-secret")
	payload := testPayload()

	a, err := Mint(payload, secret)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Mint(payload, secret)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected minting the same payload twice to produce the same token")
	}
}
