package amm

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"safepump/core/state"
	"safepump/native/common"
	"safepump/storage"
)

var testMint = solana.MustPublicKeyFromBase58("11111111111111111111111111111SPMP")

func seededPool(t *testing.T) (*Engine, *state.Tx, solana.PublicKey, solana.PublicKey) {
	t.Helper()
	engine, err := NewEngine(DefaultFeeBps)
	require.NoError(t, err)
	tx := state.NewManager(storage.NewMemDB()).Begin()
	creator := solana.NewWallet().PublicKey()
	require.NoError(t, tx.Mint(creator, common.NativeMint, 1_000_000))
	require.NoError(t, tx.Mint(creator, testMint, 4_000_000))

	addr, err := engine.CreatePool(context.Background(), tx, common.PoolSeed{
		Mint:    testMint,
		Creator: creator,
		SOL:     1_000_000,
		Tokens:  4_000_000,
	})
	require.NoError(t, err)
	return engine, tx, addr, creator
}

func TestQuote(t *testing.T) {
	out, err := Quote(1_000, 1_000_000, 1_000_000, DefaultFeeBps)
	require.NoError(t, err)
	require.Equal(t, uint64(996), out)

	_, err = Quote(1, 1, 1, common.BpsDenominator)
	require.ErrorIs(t, err, ErrInvalidFee)
}

func TestCreatePool(t *testing.T) {
	engine, tx, addr, creator := seededPool(t)

	pool, ok, err := LoadPool(tx, addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2_000_000), pool.LPSupply)
	require.Equal(t, uint64(1_000_000), pool.ReserveSOL)

	lp, err := tx.Balance(creator, pool.LPMint)
	require.NoError(t, err)
	require.Equal(t, pool.LPSupply, lp)
	sol, err := tx.Balance(addr, common.NativeMint)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), sol)

	_, err = engine.CreatePool(context.Background(), tx, common.PoolSeed{Mint: testMint, Creator: creator, SOL: 1, Tokens: 1})
	require.ErrorIs(t, err, ErrPoolExists)
	_, err = engine.CreatePool(context.Background(), tx, common.PoolSeed{Mint: common.NativeMint, Creator: creator})
	require.ErrorIs(t, err, ErrEmptySeed)
}

func TestSwapKeepsInvariant(t *testing.T) {
	engine, tx, addr, _ := seededPool(t)
	trader := solana.NewWallet().PublicKey()
	require.NoError(t, tx.Mint(trader, common.NativeMint, 10_000))

	before, _, err := LoadPool(tx, addr)
	require.NoError(t, err)
	k := before.ReserveSOL * before.ReserveTokens

	out, err := engine.Swap(context.Background(), tx, common.Leg{
		Pool:      addr,
		Mint:      testMint,
		Trader:    trader,
		Direction: common.DirectionBuy,
		AmountIn:  10_000,
	})
	require.NoError(t, err)
	require.NotZero(t, out)

	after, _, err := LoadPool(tx, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(1_010_000), after.ReserveSOL)
	require.Equal(t, before.ReserveTokens-out, after.ReserveTokens)
	require.GreaterOrEqual(t, after.ReserveSOL*after.ReserveTokens, k)

	tokens, err := tx.Balance(trader, testMint)
	require.NoError(t, err)
	require.Equal(t, out, tokens)

	back, err := engine.Swap(context.Background(), tx, common.Leg{
		Pool:      addr,
		Mint:      testMint,
		Trader:    trader,
		Direction: common.DirectionSell,
		AmountIn:  out,
	})
	require.NoError(t, err)
	require.Less(t, back, uint64(10_000), "round trip pays the fee twice")
}

func TestSwapRejections(t *testing.T) {
	engine, tx, addr, _ := seededPool(t)
	trader := solana.NewWallet().PublicKey()
	require.NoError(t, tx.Mint(trader, common.NativeMint, 10_000))
	ctx := context.Background()

	leg := common.Leg{Pool: addr, Mint: testMint, Trader: trader, Direction: common.DirectionBuy, AmountIn: 10_000, MinimumOut: 1_000_000}
	_, err := engine.Swap(ctx, tx, leg)
	require.ErrorIs(t, err, common.ErrSlippageExceeded)

	leg.MinimumOut = 0
	leg.AmountIn = 0
	_, err = engine.Swap(ctx, tx, leg)
	require.ErrorIs(t, err, ErrZeroInput)

	leg.AmountIn = 10_000
	leg.Pool = solana.NewWallet().PublicKey()
	_, err = engine.Swap(ctx, tx, leg)
	require.ErrorIs(t, err, ErrPoolNotFound)

	bal, err := tx.Balance(trader, common.NativeMint)
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), bal)
}

func TestBurnLP(t *testing.T) {
	engine, tx, addr, creator := seededPool(t)
	require.NoError(t, engine.BurnLP(tx, addr, creator, 500_000))

	pool, _, err := LoadPool(tx, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000), pool.LPSupply)
	require.Equal(t, uint64(1_000_000), pool.ReserveSOL)
}
