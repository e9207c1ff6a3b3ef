// Package amm is the constant-product exchange assets graduate to once their
// bonding curve fills.
package amm

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"safepump/native/common"
)

// DefaultFeeBps is the pool fee retained in the input reserve.
const DefaultFeeBps uint64 = 25

// ProgramID anchors the derived pool and LP mint addresses.
var ProgramID = solana.MustPublicKeyFromBase58("AmmSafePump11111111111111111111111111111111")

var (
	ErrPoolExists   = errors.New("amm: pool already exists")
	ErrPoolNotFound = errors.New("amm: pool not found")
	ErrEmptySeed    = errors.New("amm: both reserves must be seeded")
	ErrZeroInput    = errors.New("amm: zero input amount")
	ErrInvalidFee   = errors.New("amm: fee must be below 100%")
)

// Pool is the persisted state of one SOL/token pair.
type Pool struct {
	Address       solana.PublicKey
	Mint          solana.PublicKey
	LPMint        solana.PublicKey
	ReserveSOL    uint64
	ReserveTokens uint64
	LPSupply      uint64
	FeeBps        uint64
}

var poolPrefix = []byte("amm/pool/")

func poolKey(address solana.PublicKey) []byte {
	return append(append([]byte{}, poolPrefix...), address[:]...)
}

// PoolAddress derives the pool account of mint.
func PoolAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("pool"), mint[:]}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("amm: derive pool address: %w", err)
	}
	return addr, nil
}

// LPMintAddress derives the LP token mint of pool.
func LPMintAddress(pool solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("lp"), pool[:]}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("amm: derive lp mint: %w", err)
	}
	return addr, nil
}

// LoadPool returns the pool stored at address.
func LoadPool(st common.Store, address solana.PublicKey) (*Pool, bool, error) {
	p := new(Pool)
	ok, err := st.KVGet(poolKey(address), p)
	if err != nil || !ok {
		return nil, ok, err
	}
	return p, true, nil
}

func savePool(st common.Store, p *Pool) error {
	return st.KVPut(poolKey(p.Address), p)
}

// Quote returns the output of swapping amountIn against the given reserves
// after the fee is withheld.
func Quote(amountIn, reserveIn, reserveOut, feeBps uint64) (uint64, error) {
	if feeBps >= common.BpsDenominator {
		return 0, ErrInvalidFee
	}
	effective, err := common.MulDiv(amountIn, common.BpsDenominator-feeBps, common.BpsDenominator)
	if err != nil {
		return 0, err
	}
	denominator, err := common.CheckedAdd(reserveIn, effective)
	if err != nil {
		return 0, err
	}
	return common.MulDiv(effective, reserveOut, denominator)
}

// initialLiquidity is sqrt(sol * tokens).
func initialLiquidity(sol, tokens uint64) uint64 {
	product := new(uint256.Int).Mul(uint256.NewInt(sol), uint256.NewInt(tokens))
	return product.Sqrt(product).Uint64()
}
