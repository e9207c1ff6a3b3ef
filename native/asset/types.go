package asset

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"safepump/crypto"
	"safepump/native/common"
	"safepump/native/coordinator"
)

// ProgramID anchors the derived instance and curve vault addresses.
var ProgramID = solana.MustPublicKeyFromBase58("SafePumpAsset111111111111111111111111111111")

// Config is the immutable per-asset configuration chosen at launch.
type Config struct {
	SwapFeeBps          uint64
	MaxBuyBps           uint64
	MaxSellBps          uint64
	SellCooldown        uint64
	TopTierValuationSOL uint64
	BurnPercent         uint64
	LPPercent           uint64
	AirdropEnabled      bool
}

// AssetState is the bonding curve and bookkeeping of one launched asset.
// ReserveSOL and ReserveTokens mirror the curve before bonding and the pool
// afterwards.
type AssetState struct {
	Mint             solana.PublicKey
	Deployer         solana.PublicKey
	TotalSupply      uint64
	ReserveSOL       uint64
	ReserveTokens    uint64
	Burned           uint64
	Bonded           bool
	Pool             solana.PublicKey
	LPMint           solana.PublicKey
	SwapCount        uint64
	LaunchedAt       int64
	Config           Config
	DeployerAmount   uint64
	AllyWallets      []solana.PublicKey
	AllyAmounts      []uint64
	AirdropTriggered bool
}

type storedAsset struct {
	Mint             solana.PublicKey
	Deployer         solana.PublicKey
	TotalSupply      uint64
	ReserveSOL       uint64
	ReserveTokens    uint64
	Burned           uint64
	Bonded           bool
	Pool             solana.PublicKey
	LPMint           solana.PublicKey
	SwapCount        uint64
	LaunchedAt       uint64
	Config           Config
	DeployerAmount   uint64
	AllyWallets      []solana.PublicKey
	AllyAmounts      []uint64
	AirdropTriggered bool
}

// UserSwapState is the per-user, per-asset swap history.
type UserSwapState struct {
	LastSwapAt       int64
	LastDelegationAt int64
	DelegationCount  uint64
	Vault            solana.PublicKey
}

type storedUserSwapState struct {
	LastSwapAt       uint64
	LastDelegationAt uint64
	DelegationCount  uint64
	Vault            solana.PublicKey
}

// Request is one signed swap.
type Request struct {
	RequestID  string
	Mint       solana.PublicKey
	User       solana.PublicKey
	Direction  common.Direction
	Amount     uint64
	MinimumOut uint64
	Nonce      uint64
	Signature  crypto.Signature
	Authority  crypto.PublicKey
}

func (r Request) taxRequest() coordinator.TaxRequest {
	return coordinator.TaxRequest{
		Requester:  r.User,
		Asset:      r.Mint,
		Direction:  r.Direction,
		Amount:     r.Amount,
		MinimumOut: r.MinimumOut,
		Nonce:      r.Nonce,
		Signature:  r.Signature,
		Authority:  r.Authority,
	}
}

// Message returns the payload the authority signs for r.
func (r Request) Message() crypto.SwapMessage {
	return r.taxRequest().Message()
}

// Venue names where the exchange leg of a swap ran.
const (
	VenueCurve = "curve"
	VenueAMM   = "amm"
)

// Receipt describes a committed swap.
type Receipt struct {
	RequestID    string
	Direction    common.Direction
	Amount       uint64
	Tax          uint64
	Denomination solana.PublicKey
	Net          uint64
	AmountOut    uint64
	Venue        string
	Bonded       bool
	Nonce        uint64

	taxed         coordinator.TaxResult
	windowBought  uint64
	bondedNow     bool
	pool          solana.PublicKey
	bondedReserve uint64
}

var (
	assetPrefix = []byte("asset/state/")
	userPrefix  = []byte("asset/user/")
)

func assetKey(mint solana.PublicKey) []byte {
	return append(append([]byte{}, assetPrefix...), mint[:]...)
}

func userKey(user, mint solana.PublicKey) []byte {
	buf := append(append([]byte{}, userPrefix...), mint[:]...)
	return append(buf, user[:]...)
}

func loadAsset(st coordinator.State, mint solana.PublicKey) (*AssetState, bool, error) {
	var stored storedAsset
	ok, err := st.KVGet(assetKey(mint), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	launchedAt, err := common.TimeFromStore(stored.LaunchedAt)
	if err != nil {
		return nil, false, err
	}
	return &AssetState{
		Mint:             stored.Mint,
		Deployer:         stored.Deployer,
		TotalSupply:      stored.TotalSupply,
		ReserveSOL:       stored.ReserveSOL,
		ReserveTokens:    stored.ReserveTokens,
		Burned:           stored.Burned,
		Bonded:           stored.Bonded,
		Pool:             stored.Pool,
		LPMint:           stored.LPMint,
		SwapCount:        stored.SwapCount,
		LaunchedAt:       launchedAt,
		Config:           stored.Config,
		DeployerAmount:   stored.DeployerAmount,
		AllyWallets:      stored.AllyWallets,
		AllyAmounts:      stored.AllyAmounts,
		AirdropTriggered: stored.AirdropTriggered,
	}, true, nil
}

func saveAsset(st coordinator.State, a *AssetState) error {
	if a == nil {
		return errors.New("asset: nil asset state")
	}
	return st.KVPut(assetKey(a.Mint), storedAsset{
		Mint:             a.Mint,
		Deployer:         a.Deployer,
		TotalSupply:      a.TotalSupply,
		ReserveSOL:       a.ReserveSOL,
		ReserveTokens:    a.ReserveTokens,
		Burned:           a.Burned,
		Bonded:           a.Bonded,
		Pool:             a.Pool,
		LPMint:           a.LPMint,
		SwapCount:        a.SwapCount,
		LaunchedAt:       common.TimeToStore(a.LaunchedAt),
		Config:           a.Config,
		DeployerAmount:   a.DeployerAmount,
		AllyWallets:      a.AllyWallets,
		AllyAmounts:      a.AllyAmounts,
		AirdropTriggered: a.AirdropTriggered,
	})
}

func loadUser(st coordinator.State, user, mint solana.PublicKey) (*UserSwapState, bool, error) {
	var stored storedUserSwapState
	ok, err := st.KVGet(userKey(user, mint), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	lastSwap, err := common.TimeFromStore(stored.LastSwapAt)
	if err != nil {
		return nil, false, err
	}
	lastDelegation, err := common.TimeFromStore(stored.LastDelegationAt)
	if err != nil {
		return nil, false, err
	}
	return &UserSwapState{
		LastSwapAt:       lastSwap,
		LastDelegationAt: lastDelegation,
		DelegationCount:  stored.DelegationCount,
		Vault:            stored.Vault,
	}, true, nil
}

func saveUser(st coordinator.State, user, mint solana.PublicKey, us *UserSwapState) error {
	return st.KVPut(userKey(user, mint), storedUserSwapState{
		LastSwapAt:       common.TimeToStore(us.LastSwapAt),
		LastDelegationAt: common.TimeToStore(us.LastDelegationAt),
		DelegationCount:  us.DelegationCount,
		Vault:            us.Vault,
	})
}

// InstanceAddress derives the account that represents the asset instance in
// the coordinator registry.
func InstanceAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("instance"), mint[:]}, ProgramID)
	return addr, err
}

// CurveVault derives the account holding the curve's SOL reserve and, after
// bonding, its LP tokens.
func CurveVault(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("curve"), mint[:]}, ProgramID)
	return addr, err
}
