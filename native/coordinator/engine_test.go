package coordinator

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"safepump/core/events"
	"safepump/core/state"
	"safepump/crypto"
	"safepump/native/common"
	"safepump/native/rewards"
	"safepump/native/tax"
	"safepump/native/vault"
	"safepump/storage"
)

const launchTime int64 = 1_000

var testMint = solana.MustPublicKeyFromBase58("11111111111111111111111111111SPMP")

type fixture struct {
	t        *testing.T
	engine   *Engine
	tx       *state.Tx
	key      *crypto.PrivateKey
	treasury solana.PublicKey
}

func testParams(authority crypto.PublicKey) Params {
	p := DefaultParams()
	p.Authorities = []crypto.PublicKey{authority}
	p.LiquidityPool = solana.NewWallet().PublicKey()
	p.TreasuryVault = solana.NewWallet().PublicKey()
	p.RewardsVault = solana.NewWallet().PublicKey()
	return p
}

func newFixture(t *testing.T, mutate func(*Params)) *fixture {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	params := testParams(key.PubKey())
	if mutate != nil {
		mutate(&params)
	}
	engine, err := NewEngine(params)
	require.NoError(t, err)
	f := &fixture{
		t:        t,
		engine:   engine,
		tx:       state.NewManager(storage.NewMemDB()).Begin(),
		key:      key,
		treasury: solana.NewWallet().PublicKey(),
	}
	_, err = engine.Initialize(f.tx, common.Env{Now: launchTime}, f.treasury)
	require.NoError(t, err)
	return f
}

// trader registers a vault for a fresh user funded with sol lamports.
func (f *fixture) trader(sol uint64) solana.PublicKey {
	f.t.Helper()
	user := solana.NewWallet().PublicKey()
	_, err := f.engine.RegisterVault(f.tx, user)
	require.NoError(f.t, err)
	require.NoError(f.t, f.tx.Mint(user, common.NativeMint, sol))
	return user
}

func (f *fixture) request(user solana.PublicKey, dir common.Direction, amount, nonce uint64) TaxRequest {
	f.t.Helper()
	req := TaxRequest{
		Requester: user,
		Asset:     testMint,
		Direction: dir,
		Amount:    amount,
		Nonce:     nonce,
		Authority: f.key.PubKey(),
	}
	sig, err := f.key.Sign(req.Message().Bytes())
	require.NoError(f.t, err)
	req.Signature = sig
	return req
}

func (f *fixture) balance(account, mint solana.PublicKey) uint64 {
	f.t.Helper()
	bal, err := f.tx.Balance(account, mint)
	require.NoError(f.t, err)
	return bal
}

func eventTypes(tx *state.Tx) []string {
	var out []string
	for _, e := range tx.Events() {
		out = append(out, e.EventType())
	}
	return out
}

func afterSnipe() common.Env {
	return common.Env{Now: launchTime + DefaultAntiSnipeSeconds, Slot: 10}
}

func TestInitializeOnce(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.engine.Initialize(f.tx, common.Env{Now: launchTime}, f.treasury)
	require.ErrorIs(t, err, ErrAlreadyInitialized)

	g, err := f.engine.Global(f.tx)
	require.NoError(t, err)
	require.True(t, g.Initialized)
	require.Equal(t, f.treasury, g.Treasury)
	require.Equal(t, launchTime, g.LaunchedAt)
}

func TestOperationsRequireInitialization(t *testing.T) {
	engine, err := NewEngine(testParams(crypto.PublicKey{}))
	require.NoError(t, err)
	tx := state.NewManager(storage.NewMemDB()).Begin()

	_, err = engine.RegisterVault(tx, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, engine.RegisterAsset(tx, testMint, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()), ErrNotInitialized)
	_, err = engine.CollectTax(context.Background(), tx, afterSnipe(), TaxRequest{})
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestNewEngineRequiresAccounts(t *testing.T) {
	_, err := NewEngine(DefaultParams())
	require.Error(t, err)
}

func TestRegisterAsset(t *testing.T) {
	f := newFixture(t, nil)
	instance, deployer := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	require.ErrorIs(t, f.engine.RegisterAsset(f.tx, common.NativeMint, instance, deployer), ErrInvalidMintSuffix)
	require.NoError(t, f.engine.RegisterAsset(f.tx, testMint, instance, deployer))
	require.ErrorIs(t, f.engine.RegisterAsset(f.tx, testMint, instance, deployer), ErrAssetAlreadyRegistered)

	entries, err := f.engine.Registry(f.tx)
	require.NoError(t, err)
	require.Equal(t, []RegistryEntry{{Mint: testMint, Instance: instance, Deployer: deployer}}, entries)
	require.Contains(t, eventTypes(f.tx), events.TypeAssetRegistered)
}

func TestRegisterVaultRejectsDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(0)
	_, err := f.engine.RegisterVault(f.tx, user)
	require.ErrorIs(t, err, vault.ErrVaultExists)

	v, err := vault.MustLoad(f.tx, user)
	require.NoError(t, err)
	require.Zero(t, v.Nonce)
}

func TestCollectTaxRoutesAllocations(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(common.LamportsPerSOL)
	params := f.engine.Params()

	res, err := f.engine.CollectTax(context.Background(), f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
	require.NoError(t, err)
	require.Equal(t, common.NativeMint, res.Denomination)
	require.Equal(t, uint64(250), res.Split.Total)
	require.Equal(t, uint64(9_750), res.Net)

	require.Equal(t, uint64(100), f.balance(params.LiquidityPool, common.NativeMint))
	require.Equal(t, uint64(50), f.balance(params.TreasuryVault, common.NativeMint))
	require.Equal(t, uint64(100), f.balance(params.RewardsVault, common.NativeMint))
	require.Equal(t, common.LamportsPerSOL-250, f.balance(user, common.NativeMint))

	g, err := f.engine.Global(f.tx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), g.SwapCount)
	require.Equal(t, uint64(10_000), g.TotalSwapped)

	ledger, err := tax.LoadLedger(f.tx, common.NativeMint)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ledger.SwapCount)
	require.Equal(t, uint64(20), ledger.BadgePool)
	require.Equal(t, tax.RewardEntry{Recipient: user, Amount: 80}, ledger.Slots[0])

	holders, err := tax.LoadHolders(f.tx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), holders.BuyCount(user))

	v, err := vault.MustLoad(f.tx, user)
	require.NoError(t, err)
	require.Zero(t, v.Nonce, "the coordinator never advances the nonce")
	require.Contains(t, eventTypes(f.tx), events.TypeTaxCollected)
}

func TestCollectTaxSellChargesAssetToken(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(0)
	require.NoError(t, f.tx.Mint(user, testMint, 1_000_000))

	res, err := f.engine.CollectTax(context.Background(), f.tx, afterSnipe(), f.request(user, common.DirectionSell, 1_000_000, 0))
	require.NoError(t, err)
	require.Equal(t, testMint, res.Denomination)
	require.Equal(t, uint64(1_000_000-25_000), f.balance(user, testMint))
	require.Equal(t, uint64(10_000), f.balance(f.engine.Params().RewardsVault, testMint))

	holders, err := tax.LoadHolders(f.tx)
	require.NoError(t, err)
	require.Zero(t, holders.Count(), "sells never enter the badge table")

	denoms, err := f.engine.Denominations(f.tx)
	require.NoError(t, err)
	require.Equal(t, []solana.PublicKey{testMint}, denoms)
}

func TestCollectTaxAntiSnipe(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(common.LamportsPerSOL)
	req := f.request(user, common.DirectionBuy, 10_000, 0)

	_, err := f.engine.CollectTax(context.Background(), f.tx, common.Env{Now: launchTime + 10}, req)
	require.ErrorIs(t, err, common.ErrAntiSnipeCooldown)
	_, err = f.engine.CollectTax(context.Background(), f.tx, afterSnipe(), req)
	require.NoError(t, err)
	// Only the first protocol swap waits.
	_, err = f.engine.CollectTax(context.Background(), f.tx, common.Env{Now: launchTime + 1, Slot: 10}, req)
	require.NoError(t, err)
}

func TestCollectTaxAuthentication(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(common.LamportsPerSOL)
	ctx := context.Background()

	_, err := f.engine.CollectTax(ctx, f.tx, afterSnipe(), f.request(solana.NewWallet().PublicKey(), common.DirectionBuy, 10_000, 0))
	require.ErrorIs(t, err, common.ErrVaultNotRegistered)

	_, err = f.engine.CollectTax(ctx, f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 1))
	require.ErrorIs(t, err, common.ErrReplayRejected)

	tampered := f.request(user, common.DirectionBuy, 10_000, 0)
	tampered.Amount = 20_000
	_, err = f.engine.CollectTax(ctx, f.tx, afterSnipe(), tampered)
	require.ErrorIs(t, err, common.ErrInvalidSignature)

	require.Equal(t, common.LamportsPerSOL, f.balance(user, common.NativeMint))
}

func TestCollectTaxAuthorityAllowlist(t *testing.T) {
	other, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	f := newFixture(t, func(p *Params) { p.Authorities = []crypto.PublicKey{other.PubKey()} })
	user := f.trader(common.LamportsPerSOL)

	_, err = f.engine.CollectTax(context.Background(), f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
	require.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestCollectTaxGlobalVelocity(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(1_000 * common.LamportsPerSOL)
	ctx := context.Background()
	env := afterSnipe()

	// No cumulative threshold is reached yet, so the scan falls through to
	// the last tier: 300 SOL per slot.
	_, err := f.engine.CollectTax(ctx, f.tx, env, f.request(user, common.DirectionBuy, 200*common.LamportsPerSOL, 0))
	require.NoError(t, err)
	_, err = f.engine.CollectTax(ctx, f.tx, env, f.request(user, common.DirectionBuy, 150*common.LamportsPerSOL, 0))
	require.ErrorIs(t, err, common.ErrVelocityExceeded)

	env.Slot++
	_, err = f.engine.CollectTax(ctx, f.tx, env, f.request(user, common.DirectionBuy, 150*common.LamportsPerSOL, 0))
	require.NoError(t, err)
}

func TestCollectTaxPaused(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.SetPauses(common.StaticPauses{common.ModuleSwap: true})
	user := f.trader(common.LamportsPerSOL)

	_, err := f.engine.CollectTax(context.Background(), f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
	require.ErrorIs(t, err, common.ErrModulePaused)
}

func TestCollectTaxInsufficientBalance(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(100)

	_, err := f.engine.CollectTax(context.Background(), f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
}

func TestDistributeFlushesRewards(t *testing.T) {
	f := newFixture(t, nil)
	alice := f.trader(common.LamportsPerSOL)
	bob := f.trader(common.LamportsPerSOL)
	ctx := context.Background()
	for _, user := range []solana.PublicKey{alice, bob} {
		_, err := f.engine.CollectTax(ctx, f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
		require.NoError(t, err)
	}
	rewardsVault := f.engine.Params().RewardsVault
	require.Equal(t, uint64(200), f.balance(rewardsVault, common.NativeMint))

	_, err := f.engine.Distribute(f.tx, common.Env{Now: launchTime + rewards.DefaultPeriodSeconds - 1}, common.NativeMint)
	require.ErrorIs(t, err, common.ErrDistributionTooSoon)
	require.Equal(t, uint64(200), f.balance(rewardsVault, common.NativeMint))

	now := launchTime + rewards.DefaultPeriodSeconds
	summary, err := f.engine.Distribute(f.tx, common.Env{Now: now}, common.NativeMint)
	require.NoError(t, err)
	require.Equal(t, uint64(2), summary.Recipients)
	require.Equal(t, uint64(160), summary.SwapperTotal)
	require.Equal(t, uint64(20), summary.PerHolder)
	require.Equal(t, uint64(40), summary.BadgeTotal)
	require.Zero(t, f.balance(rewardsVault, common.NativeMint))
	require.Equal(t, common.LamportsPerSOL-150, f.balance(alice, common.NativeMint))
	require.Equal(t, common.LamportsPerSOL-150, f.balance(bob, common.NativeMint))

	ledger, err := tax.LoadLedger(f.tx, common.NativeMint)
	require.NoError(t, err)
	require.Zero(t, ledger.SwapCount)
	require.Equal(t, now, ledger.LastFlush)
	require.Contains(t, eventTypes(f.tx), events.TypeRewardsDistributed)
}

func TestWithdrawTreasury(t *testing.T) {
	f := newFixture(t, nil)
	vaultKey := f.engine.Params().TreasuryVault
	require.NoError(t, f.tx.Mint(vaultKey, common.NativeMint, 500))
	dest := solana.NewWallet().PublicKey()

	err := f.engine.WithdrawTreasury(f.tx, solana.NewWallet().PublicKey(), common.NativeMint, 100, dest)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, f.engine.WithdrawTreasury(f.tx, f.treasury, common.NativeMint, 0, dest), ErrInvalidAmount)

	require.NoError(t, f.engine.WithdrawTreasury(f.tx, f.treasury, common.NativeMint, 300, dest))
	require.Equal(t, uint64(200), f.balance(vaultKey, common.NativeMint))
	require.Equal(t, uint64(300), f.balance(dest, common.NativeMint))
}

func TestMintBadge(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.BadgeBuyThreshold = 2 })
	user := f.trader(common.LamportsPerSOL)
	badge := f.engine.Params().BadgeMint
	ctx := context.Background()

	_, err := f.engine.CollectTax(ctx, f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
	require.NoError(t, err)
	_, err = f.engine.MintBadge(f.tx, user)
	require.ErrorIs(t, err, ErrInsufficientBuySwaps)

	_, err = f.engine.CollectTax(ctx, f.tx, afterSnipe(), f.request(user, common.DirectionBuy, 10_000, 0))
	require.NoError(t, err)
	solBefore := f.balance(user, common.NativeMint)
	minted, err := f.engine.MintBadge(f.tx, user)
	require.NoError(t, err)
	require.True(t, minted)

	minted, err = f.engine.MintBadge(f.tx, user)
	require.NoError(t, err)
	require.False(t, minted)
	require.Equal(t, uint64(1), f.balance(user, badge))
	require.Equal(t, solBefore, f.balance(user, common.NativeMint))
	require.Zero(t, f.balance(user, testMint))
}

func TestBadgeMintIsReserved(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.BadgeMint = testMint })
	err := f.engine.RegisterAsset(f.tx, testMint, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, ErrUnauthorized)

	p := testParams(f.key.PubKey())
	p.BadgeMint = common.NativeMint
	_, err = NewEngine(p)
	require.ErrorIs(t, err, errInvalidParams)
	p.BadgeMint = solana.PublicKey{}
	_, err = NewEngine(p)
	require.ErrorIs(t, err, errInvalidParams)
}

func TestParamsRequireAuthority(t *testing.T) {
	p := testParams(crypto.PublicKey{})
	p.Authorities = nil
	_, err := NewEngine(p)
	require.ErrorIs(t, err, errInvalidParams)
}

func TestCollectTaxAuthenticatesBeforeAntiSnipe(t *testing.T) {
	f := newFixture(t, nil)
	user := f.trader(common.LamportsPerSOL)
	forged := f.request(user, common.DirectionBuy, 10_000, 0)
	forged.Amount = 20_000

	_, err := f.engine.CollectTax(context.Background(), f.tx, common.Env{Now: launchTime + 1}, forged)
	require.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestClaimAirdrop(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.AirdropMaxClaimers = 2 })
	a, b, c := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	require.ErrorIs(t, f.engine.ClaimAirdrop(f.tx, a, testMint), ErrAssetNotRegistered)
	require.NoError(t, f.engine.RegisterAsset(f.tx, testMint, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()))

	require.NoError(t, f.engine.ClaimAirdrop(f.tx, a, testMint))
	require.ErrorIs(t, f.engine.ClaimAirdrop(f.tx, a, testMint), ErrAirdropClaimed)
	require.NoError(t, f.engine.ClaimAirdrop(f.tx, b, testMint))
	require.ErrorIs(t, f.engine.ClaimAirdrop(f.tx, c, testMint), ErrAirdropLimitExceeded)

	claimers, err := f.engine.Claimers(f.tx, testMint)
	require.NoError(t, err)
	require.Equal(t, []solana.PublicKey{a, b}, claimers)
}

func TestCaptureSwapper(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.CaptureCapacity = 2 })
	a, b, c := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	for _, step := range []struct {
		user solana.PublicKey
		want bool
	}{{a, true}, {a, false}, {b, true}, {c, false}} {
		captured, err := f.engine.CaptureSwapper(f.tx, step.user)
		require.NoError(t, err)
		require.Equal(t, step.want, captured)
	}
	total, err := f.engine.Captured(f.tx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), total)
}
