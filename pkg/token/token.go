// Package token mints and verifies confirm tokens: signed, stateless
// capabilities that bind a planned delete to the exact finding, root, scan,
// and filesystem identity it was planned against. A token is never tracked
// as consumed; replay within its validity window against an unchanged
// target is permitted by design, because the delete engine's live identity
// check is the real single-use gate.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"sort"
	"time"

	"github.com/nullout-io/nullout/pkg/encoding"
)

// Strategy is the sole supported delete strategy tag.
const Strategy = "WIN_EXTENDED_PATH_DELETE"

// ReparsePolicy is the sole supported reparse handling policy.
const ReparsePolicy = "deny_all"

// TTL is the validity window for a minted token. It defaults to 300 seconds
// per spec §4.5 but may be overridden at startup from nullout.toml (see
// pkg/config.Knobs.TokenTTLSec); it is never read from the environment, so
// an operator cannot widen replay windows through an untrusted channel.
var TTL = 300 * time.Second

// Payload is the confirm token's signed content. Every field participates
// in the binding check the delete engine performs before acting.
type Payload struct {
	FindingID     string `json:"findingId"`
	RootID        string `json:"rootId"`
	ScanID        string `json:"scanId"`
	VolumeSerial  string `json:"volumeSerial"`
	FileID        string `json:"fileId"`
	Strategy      string `json:"strategy"`
	ReparsePolicy string `json:"reparsePolicy"`
	Exp           int64  `json:"exp"`
}

// canonicalJSON marshals payload with sorted keys and no redundant
// whitespace, so the same payload always signs to the same bytes regardless
// of struct field order or encoding/json's own map-key nondeterminism.
func canonicalJSON(payload Payload) ([]byte, error) {
	// encoding/json already marshals struct fields in declaration order,
	// which is fixed, but we route through a map and sort explicitly so the
	// signed form is documented rather than incidental.
	fields := map[string]any{
		"findingId":     payload.FindingID,
		"rootId":        payload.RootID,
		"scanId":        payload.ScanID,
		"volumeSerial":  payload.VolumeSerial,
		"fileId":        payload.FileID,
		"strategy":      payload.Strategy,
		"reparsePolicy": payload.ReparsePolicy,
		"exp":           payload.Exp,
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, key := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(fields[key])
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valueJSON...)
	}
	ordered = append(ordered, '}')
	return ordered, nil
}

func sign(body []byte, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// Mint signs payload and returns the opaque token string
// "<base64url(body)>.<base64url(hmac)>".
func Mint(payload Payload, secret []byte) (string, error) {
	body, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	signature := sign(body, secret)
	return encoding.EncodeBase64(body) + "." + encoding.EncodeBase64(signature), nil
}

// Verify decodes token, checks its signature in constant time against
// secret, and returns the payload. It does not check expiry; callers
// compare Payload.Exp against the current time themselves so the specific
// E_CONFIRM_TOKEN_EXPIRED vs E_CONFIRM_TOKEN_INVALID distinction stays in
// the caller, which is where the rest of the gate sequence's error codes
// live.
func Verify(raw string, secret []byte) (Payload, error) {
	body, signature, err := splitToken(raw)
	if err != nil {
		return Payload{}, err
	}

	expected := sign(body, secret)
	if !hmac.Equal(signature, expected) {
		return Payload{}, errInvalidSignature
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Payload{}, errMalformed
	}
	return payload, nil
}
