package crypto

import (
	"errors"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// DomainTag separates swap authorisations from every other use of the
// authority key when hashing onto G2.
const DomainTag = "SAFE-PUMP-V5"

const (
	PublicKeySize = bls12381.SizeOfG1AffineCompressed
	SignatureSize = bls12381.SizeOfG2AffineCompressed
)

// PublicKey is a compressed BLS12-381 G1 point.
type PublicKey [PublicKeySize]byte

// Signature is a compressed BLS12-381 G2 point.
type Signature [SignatureSize]byte

// --- Key Management ---

// PrivateKey is the authority's scalar. Only tooling and tests hold one; the
// gate itself only ever sees public keys.
type PrivateKey struct {
	scalar fr.Element
}

func GeneratePrivateKey() (*PrivateKey, error) {
	var k PrivateKey
	for k.scalar.IsZero() {
		if _, err := k.scalar.SetRandom(); err != nil {
			return nil, fmt.Errorf("crypto: sample scalar: %w", err)
		}
	}
	return &k, nil
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("crypto: private key must be %d bytes", fr.Bytes)
	}
	var k PrivateKey
	if err := k.scalar.SetBytesCanonical(b); err != nil {
		return nil, fmt.Errorf("crypto: decode private key: %w", err)
	}
	if k.scalar.IsZero() {
		return nil, errors.New("crypto: zero private key")
	}
	return &k, nil
}

// Bytes returns the big-endian scalar encoding.
func (k *PrivateKey) Bytes() []byte {
	b := k.scalar.Bytes()
	return b[:]
}

func (k *PrivateKey) PubKey() PublicKey {
	_, _, g1, _ := bls12381.Generators()
	var pk bls12381.G1Affine
	pk.ScalarMultiplication(&g1, k.scalar.BigInt(new(big.Int)))
	return PublicKey(pk.Bytes())
}

// Sign hashes msg onto G2 under DomainTag and multiplies by the scalar.
func (k *PrivateKey) Sign(msg []byte) (Signature, error) {
	h, err := bls12381.HashToG2(msg, []byte(DomainTag))
	if err != nil {
		return Signature{}, fmt.Errorf("crypto: hash to curve: %w", err)
	}
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&h, k.scalar.BigInt(new(big.Int)))
	return Signature(sig.Bytes()), nil
}

// Verify reports whether sig authenticates msg under pk, i.e.
// e(g1, sig) == e(pk, H(msg)). Malformed encodings, points outside the
// prime-order subgroup and identity points all verify as false.
func Verify(sig Signature, pk PublicKey, msg []byte) bool {
	var pub bls12381.G1Affine
	if _, err := pub.SetBytes(pk[:]); err != nil {
		return false
	}
	if pub.IsInfinity() {
		return false
	}
	var s bls12381.G2Affine
	if _, err := s.SetBytes(sig[:]); err != nil {
		return false
	}
	if s.IsInfinity() {
		return false
	}
	h, err := bls12381.HashToG2(msg, []byte(DomainTag))
	if err != nil {
		return false
	}
	_, _, g1, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{negG1, pub},
		[]bls12381.G2Affine{s, h},
	)
	return err == nil && ok
}
