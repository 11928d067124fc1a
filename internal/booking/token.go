package booking

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// TokenSource produces opaque payment references.  Injected so that
// tests can assert on deterministic values.
type TokenSource interface {
	PaymentRef() (string, error)
}

type cryptoTokenSource struct{}

// CryptoTokenSource returns a TokenSource backed by crypto/rand.
// References look like "TXN_3F9A0C47B21D".
func CryptoTokenSource() TokenSource { return cryptoTokenSource{} }

func (cryptoTokenSource) PaymentRef() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "TXN_" + strings.ToUpper(hex.EncodeToString(b)), nil
}
