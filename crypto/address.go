package crypto

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ParseAddress decodes a base58 account key.
func ParseAddress(s string) (solana.PublicKey, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return solana.PublicKey{}, fmt.Errorf("crypto: empty address")
	}
	key, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("crypto: invalid address %q: %w", trimmed, err)
	}
	return key, nil
}

// HasSuffix reports whether the base58 form of key ends with suffix.
func HasSuffix(key solana.PublicKey, suffix string) bool {
	if suffix == "" {
		return true
	}
	return strings.HasSuffix(key.String(), suffix)
}

// NewAddress returns a fresh random account key.
func NewAddress() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}
