package crypto

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

func decodeFixed(kind, s string, out []byte) error {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		trimmed = "0x" + trimmed
	}
	raw, err := hexutil.Decode(trimmed)
	if err != nil {
		return fmt.Errorf("crypto: decode %s: %w", kind, err)
	}
	if len(raw) != len(out) {
		return fmt.Errorf("crypto: %s must be %d bytes, got %d", kind, len(out), len(raw))
	}
	copy(out, raw)
	return nil
}

// ParsePublicKey decodes a hex compressed G1 point. The 0x prefix is optional.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	err := decodeFixed("public key", s, pk[:])
	return pk, err
}

// ParseSignature decodes a hex compressed G2 point. The 0x prefix is optional.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	err := decodeFixed("signature", s, sig[:])
	return sig, err
}

func (pk PublicKey) String() string { return hexutil.Encode(pk[:]) }

func (pk PublicKey) MarshalText() ([]byte, error) { return []byte(pk.String()), nil }

func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

func (sig Signature) String() string { return hexutil.Encode(sig[:]) }

func (sig Signature) MarshalText() ([]byte, error) { return []byte(sig.String()), nil }

func (sig *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}
