package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func signedMessage(t *testing.T) (*PrivateKey, SwapMessage, Signature) {
	t.Helper()
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	msg := SwapMessage{
		Amount:     1_500_000_000,
		IsBuy:      true,
		MinimumOut: 42,
		Nonce:      7,
		Requester:  NewAddress(),
	}
	sig, err := key.Sign(msg.Bytes())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return key, msg, sig
}

func TestVerifyRoundTrip(t *testing.T) {
	key, msg, sig := signedMessage(t)
	if !Verify(sig, key.PubKey(), msg.Bytes()) {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerifyRejectsTamperedFields(t *testing.T) {
	key, msg, sig := signedMessage(t)
	pk := key.PubKey()

	tampered := []SwapMessage{msg, msg, msg, msg, msg}
	tampered[0].Amount++
	tampered[1].IsBuy = false
	tampered[2].MinimumOut = 0
	tampered[3].Nonce++
	tampered[4].Requester = NewAddress()
	for i, m := range tampered {
		if Verify(sig, pk, m.Bytes()) {
			t.Fatalf("tampered message %d verified", i)
		}
	}

	other, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if Verify(sig, other.PubKey(), msg.Bytes()) {
		t.Fatalf("signature verified under a different key")
	}
}

func TestVerifyRejectsMalformedEncodings(t *testing.T) {
	key, msg, sig := signedMessage(t)
	pk := key.PubKey()

	var zeroSig Signature
	if Verify(zeroSig, pk, msg.Bytes()) {
		t.Fatalf("zero signature verified")
	}
	var zeroKey PublicKey
	if Verify(sig, zeroKey, msg.Bytes()) {
		t.Fatalf("zero public key verified")
	}

	garbage := sig
	for i := range garbage {
		garbage[i] = 0xff
	}
	if Verify(garbage, pk, msg.Bytes()) {
		t.Fatalf("garbage signature verified")
	}

	// Compressed point at infinity: compression and infinity flags set.
	var infinityKey PublicKey
	infinityKey[0] = 0xc0
	var infinitySig Signature
	infinitySig[0] = 0xc0
	if Verify(infinitySig, infinityKey, msg.Bytes()) {
		t.Fatalf("identity points verified")
	}
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	a, b := key.PubKey(), restored.PubKey()
	if !bytes.Equal(a[:], b[:]) {
		t.Fatalf("restored key derives a different public key")
	}
	if _, err := PrivateKeyFromBytes(make([]byte, 32)); err == nil {
		t.Fatalf("expected zero key to be rejected")
	}
}

func TestSwapMessageLayout(t *testing.T) {
	requester := solana.MustPublicKeyFromBase58("11111111111111111111111111111SPMP")
	msg := SwapMessage{Amount: 1, IsBuy: true, MinimumOut: 2, Nonce: 3, Requester: requester}
	encoded := msg.Bytes()
	if len(encoded) != SwapMessageSize {
		t.Fatalf("unexpected length %d", len(encoded))
	}
	if encoded[0] != 1 || encoded[8] != 1 || encoded[9] != 2 || encoded[17] != 3 {
		t.Fatalf("unexpected field placement: %x", encoded[:25])
	}
	if !bytes.Equal(encoded[25:], requester[:]) {
		t.Fatalf("requester bytes not appended")
	}
	msg.IsBuy = false
	if msg.Bytes()[8] != 0 {
		t.Fatalf("sell must encode direction byte 0")
	}
}

func TestAddressHelpers(t *testing.T) {
	vanity := solana.MustPublicKeyFromBase58("11111111111111111111111111111SPMP")
	if !HasSuffix(vanity, "SPMP") {
		t.Fatalf("expected suffix match for %s", vanity)
	}
	if HasSuffix(solana.SystemProgramID, "SPMP") {
		t.Fatalf("system program should not match suffix")
	}
	parsed, err := ParseAddress(" " + vanity.String() + " ")
	if err != nil || !parsed.Equals(vanity) {
		t.Fatalf("parse address: %v %s", err, parsed)
	}
	if _, err := ParseAddress("not-base58-0OIl"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestHexEncoding(t *testing.T) {
	key, _, sig := signedMessage(t)
	pk := key.PubKey()

	parsed, err := ParsePublicKey(pk.String())
	if err != nil || parsed != pk {
		t.Fatalf("public key round trip: %v", err)
	}
	bare := strings.TrimPrefix(sig.String(), "0x")
	parsedSig, err := ParseSignature(bare)
	if err != nil || parsedSig != sig {
		t.Fatalf("signature without prefix: %v", err)
	}

	var decoded PublicKey
	text, _ := pk.MarshalText()
	if err := decoded.UnmarshalText(text); err != nil || decoded != pk {
		t.Fatalf("text round trip: %v", err)
	}
	if _, err := ParsePublicKey("0x1234"); err == nil {
		t.Fatalf("expected short key to fail")
	}
	if _, err := ParseSignature("zz"); err == nil {
		t.Fatalf("expected invalid hex to fail")
	}
}

func TestVerifyLaunch(t *testing.T) {
	deployer := solana.NewWallet()
	msg := LaunchMessage{
		Mint:        NewAddress(),
		Deployer:    deployer.PublicKey(),
		TotalSupply: 1_000_000,
		LPPercent:   100,
		AllyWallets: []solana.PublicKey{NewAddress()},
		AllyAmounts: []uint64{5},
	}
	sig, err := deployer.PrivateKey.Sign(msg.Bytes())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !VerifyLaunch(sig, msg) {
		t.Fatalf("expected deployer signature to verify")
	}

	tampered := msg
	tampered.AllyAmounts = []uint64{6}
	if VerifyLaunch(sig, tampered) {
		t.Fatalf("expected tampered ally amount to fail")
	}
	other := msg
	other.Deployer = solana.NewWallet().PublicKey()
	if VerifyLaunch(sig, other) {
		t.Fatalf("expected foreign deployer to fail")
	}
	if VerifyLaunch(solana.Signature{}, msg) {
		t.Fatalf("expected empty signature to fail")
	}
	if bytes.Equal(msg.Bytes(), (LaunchMessage{Mint: msg.Mint, Deployer: msg.Deployer, TotalSupply: 1_000_000, LPPercent: 100}).Bytes()) {
		t.Fatalf("ally lists must be part of the message")
	}
}
