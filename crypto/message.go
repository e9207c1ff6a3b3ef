package crypto

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// SwapMessageSize is the length of the canonical swap authorisation payload.
const SwapMessageSize = 8 + 1 + 8 + 8 + solana.PublicKeyLength

// SwapMessage is the set of fields the authority signs for one swap.
type SwapMessage struct {
	Amount     uint64
	IsBuy      bool
	MinimumOut uint64
	Nonce      uint64
	Requester  solana.PublicKey
}

// Bytes encodes amount, direction, minimum-out and nonce little-endian
// followed by the raw requester key.
func (m SwapMessage) Bytes() []byte {
	buf := make([]byte, SwapMessageSize)
	binary.LittleEndian.PutUint64(buf[0:8], m.Amount)
	if m.IsBuy {
		buf[8] = 1
	}
	binary.LittleEndian.PutUint64(buf[9:17], m.MinimumOut)
	binary.LittleEndian.PutUint64(buf[17:25], m.Nonce)
	copy(buf[25:], m.Requester[:])
	return buf
}

var launchTag = []byte("safepump/launch")

// LaunchMessage is the set of fields a deployer signs with their wallet key
// to launch an asset.
type LaunchMessage struct {
	Mint                solana.PublicKey
	Deployer            solana.PublicKey
	TotalSupply         uint64
	BurnPercent         uint64
	LPPercent           uint64
	DeployerAmount      uint64
	SwapFeeBps          uint64
	MaxBuyBps           uint64
	MaxSellBps          uint64
	SellCooldown        uint64
	TopTierValuationSOL uint64
	AirdropEnabled      bool
	AllyWallets         []solana.PublicKey
	AllyAmounts         []uint64
}

// Bytes encodes the tag, both keys, the numeric fields little-endian, the
// airdrop flag, then each ally list prefixed with its length.
func (m LaunchMessage) Bytes() []byte {
	buf := make([]byte, 0, len(launchTag)+2*solana.PublicKeyLength+9*8+1+8+
		len(m.AllyWallets)*solana.PublicKeyLength+8+len(m.AllyAmounts)*8)
	buf = append(buf, launchTag...)
	buf = append(buf, m.Mint[:]...)
	buf = append(buf, m.Deployer[:]...)
	for _, v := range []uint64{
		m.TotalSupply,
		m.BurnPercent,
		m.LPPercent,
		m.DeployerAmount,
		m.SwapFeeBps,
		m.MaxBuyBps,
		m.MaxSellBps,
		m.SellCooldown,
		m.TopTierValuationSOL,
	} {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	if m.AirdropEnabled {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(m.AllyWallets)))
	for _, ally := range m.AllyWallets {
		buf = append(buf, ally[:]...)
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(m.AllyAmounts)))
	for _, amount := range m.AllyAmounts {
		buf = binary.LittleEndian.AppendUint64(buf, amount)
	}
	return buf
}

// VerifyLaunch reports whether sig is the deployer's ed25519 signature over m.
func VerifyLaunch(sig solana.Signature, m LaunchMessage) bool {
	return m.Deployer.Verify(m.Bytes(), sig)
}
