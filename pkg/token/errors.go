package token

import (
	"errors"
	"strings"

	"github.com/nullout-io/nullout/pkg/encoding"
)

var (
	errMalformed        = errors.New("token: malformed")
	errInvalidSignature = errors.New("token: invalid signature")
)

// splitToken decodes a token string of the form "<body>.<signature>" into
// its raw body bytes and raw signature bytes.
func splitToken(raw string) (body, signature []byte, err error) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 {
		return nil, nil, errMalformed
	}

	body, err = encoding.DecodeBase64(parts[0])
	if err != nil {
		return nil, nil, errMalformed
	}
	signature, err = encoding.DecodeBase64(parts[1])
	if err != nil {
		return nil, nil, errMalformed
	}
	return body, signature, nil
}
