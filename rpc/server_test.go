package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"safepump/core/events"
	"safepump/core/state"
	"safepump/crypto"
	"safepump/native/amm"
	"safepump/native/asset"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/storage"
	"safepump/storage/journal"
)

const launchAt int64 = 50_000

var testMint = solana.MustPublicKeyFromBase58("11111111111111111111111111111SPMP")

type fixture struct {
	t        *testing.T
	mgr      *state.Manager
	journal  *journal.Journal
	handler  http.Handler
	now      int64
	slot     uint64
	key      *crypto.PrivateKey
	deployer *solana.Wallet
	trader   solana.PublicKey
}

func newFixture(t *testing.T, limiter *RateLimiter) *fixture {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	cp := coordinator.DefaultParams()
	cp.LiquidityPool = solana.NewWallet().PublicKey()
	cp.TreasuryVault = solana.NewWallet().PublicKey()
	cp.RewardsVault = solana.NewWallet().PublicKey()
	cp.Authorities = []crypto.PublicKey{key.PubKey()}
	coord, err := coordinator.NewEngine(cp)
	require.NoError(t, err)
	pools, err := amm.NewEngine(amm.DefaultFeeBps)
	require.NoError(t, err)
	assets, err := asset.NewEngine(asset.DefaultParams(), coord, pools, pools)
	require.NoError(t, err)

	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	mgr := state.NewManager(storage.NewMemDB())
	assets.SetState(mgr)
	assets.SetEmitter(j)

	f := &fixture{
		t:        t,
		mgr:      mgr,
		journal:  j,
		now:      launchAt,
		key:      key,
		deployer: solana.NewWallet(),
		trader:   solana.NewWallet().PublicKey(),
	}

	tx := mgr.Begin()
	_, err = coord.Initialize(tx, common.Env{Now: launchAt}, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.NoError(t, tx.Mint(f.deployer.PublicKey(), common.NativeMint, 10*common.LamportsPerSOL))
	require.NoError(t, tx.Mint(f.trader, common.NativeMint, 100*common.LamportsPerSOL))
	require.NoError(t, tx.Commit(nil))

	srv, err := NewServer(Config{
		State:       mgr,
		Coordinator: coord,
		Assets:      assets,
		Events:      j,
		Emitter:     j,
		Limiter:     limiter,
		Env:         func() common.Env { return common.Env{Now: f.now, Slot: f.slot} },
	})
	require.NoError(t, err)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(method, path string, body interface{}) (int, Response) {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	var resp Response
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func (f *fixture) launch() {
	f.t.Helper()
	code, resp := f.do(http.MethodPost, "/v1/vaults", AccountRequest{User: f.trader.String()})
	require.Equal(f.t, http.StatusCreated, code, "%+v", resp.Error)

	code, resp = f.do(http.MethodPost, "/v1/assets", f.signedLaunch(f.deployer.PrivateKey))
	require.Equal(f.t, http.StatusCreated, code, "%+v", resp.Error)

	code, resp = f.do(http.MethodPost, "/v1/traders", AccountRequest{User: f.trader.String(), Mint: testMint.String()})
	require.Equal(f.t, http.StatusCreated, code, "%+v", resp.Error)
}

// signedLaunch returns the default launch for the fixture deployer, signed
// with signer.
func (f *fixture) signedLaunch(signer solana.PrivateKey) LaunchRequest {
	f.t.Helper()
	payload := LaunchRequest{
		Mint:                testMint.String(),
		Deployer:            f.deployer.PublicKey().String(),
		TotalSupply:         asset.DefaultMinSupply,
		LPPercent:           100,
		MaxBuyBps:           common.BpsDenominator,
		MaxSellBps:          common.BpsDenominator,
		SellCooldown:        900,
		TopTierValuationSOL: 1_000_000,
	}
	lp, err := payload.toAsset()
	require.NoError(f.t, err)
	sig, err := signer.Sign(lp.Message().Bytes())
	require.NoError(f.t, err)
	payload.Signature = sig
	return payload
}

func (f *fixture) swap(amount, nonce uint64) SwapRequest {
	f.t.Helper()
	return f.swapSignedBy(f.key, amount, nonce)
}

func (f *fixture) swapSignedBy(key *crypto.PrivateKey, amount, nonce uint64) SwapRequest {
	f.t.Helper()
	req := asset.Request{
		Mint:      testMint,
		User:      f.trader,
		Direction: common.DirectionBuy,
		Amount:    amount,
		Nonce:     nonce,
		Authority: key.PubKey(),
	}
	sig, err := key.Sign(req.Message().Bytes())
	require.NoError(f.t, err)
	return SwapRequest{
		Mint:      testMint.String(),
		User:      f.trader.String(),
		Direction: "buy",
		Amount:    amount,
		Nonce:     nonce,
		Signature: sig,
		Authority: key.PubKey(),
	}
}

func (f *fixture) balance(account solana.PublicKey) uint64 {
	f.t.Helper()
	tx := f.mgr.Begin()
	defer tx.Discard()
	bal, err := tx.Balance(account, common.NativeMint)
	require.NoError(f.t, err)
	return bal
}

func decodeResult(t *testing.T, resp Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestSwapFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.launch()

	code, resp := f.do(http.MethodPost, "/v1/swap", f.swap(common.LamportsPerSOL/2, 0))
	require.Equal(t, http.StatusTooManyRequests, code)
	require.Equal(t, string(common.ClassAdmission), resp.Error.Code)

	f.now = launchAt + asset.DefaultAntiSnipeSeconds
	f.slot = 1
	payload := f.swap(common.LamportsPerSOL/2, 0)
	code, resp = f.do(http.MethodPost, "/v1/swap", payload)
	require.Equal(t, http.StatusOK, code, "%+v", resp.Error)
	var receipt SwapReceipt
	decodeResult(t, resp, &receipt)
	require.Equal(t, "buy", receipt.Direction)
	require.Equal(t, uint64(1), receipt.Nonce)
	require.NotZero(t, receipt.AmountOut)
	require.NotEmpty(t, receipt.RequestID)

	code, resp = f.do(http.MethodPost, "/v1/swap", payload)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, string(common.ClassAuthentication), resp.Error.Code)

	code, resp = f.do(http.MethodGet, "/v1/vaults/"+f.trader.String(), nil)
	require.Equal(t, http.StatusOK, code)
	var view VaultView
	decodeResult(t, resp, &view)
	require.Equal(t, uint64(1), view.Nonce)
	require.Equal(t, f.key.PubKey().String(), view.LastSigner)

	code, resp = f.do(http.MethodGet, "/v1/assets/"+testMint.String(), nil)
	require.Equal(t, http.StatusOK, code)
	var av AssetView
	decodeResult(t, resp, &av)
	require.Equal(t, uint64(1), av.SwapCount)
	require.False(t, av.Bonded)

	code, resp = f.do(http.MethodGet, "/v1/events?type="+events.TypeSwapExecuted, nil)
	require.Equal(t, http.StatusOK, code)
	var entries []map[string]interface{}
	decodeResult(t, resp, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, receipt.RequestID, entries[0]["requestId"])

	code, resp = f.do(http.MethodPost, "/v1/rewards/distribute", DistributeRequest{Mint: common.NativeMint.String()})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, string(common.ClassDistribution), resp.Error.Code)
}

func TestSwapRejectsUnlistedAuthority(t *testing.T) {
	f := newFixture(t, nil)
	f.launch()
	f.now = launchAt + asset.DefaultAntiSnipeSeconds
	f.slot = 1

	stranger, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	before := f.balance(f.trader)
	code, resp := f.do(http.MethodPost, "/v1/swap", f.swapSignedBy(stranger, common.LamportsPerSOL/2, 0))
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, string(common.ClassAuthentication), resp.Error.Code)
	require.Equal(t, before, f.balance(f.trader))
}

func TestLaunchRequiresDeployerSignature(t *testing.T) {
	f := newFixture(t, nil)
	deployer := f.deployer.PublicKey()
	before := f.balance(deployer)

	unsigned := f.signedLaunch(f.deployer.PrivateKey)
	unsigned.Signature = solana.Signature{}
	code, resp := f.do(http.MethodPost, "/v1/assets", unsigned)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, string(common.ClassAuthentication), resp.Error.Code)

	code, _ = f.do(http.MethodPost, "/v1/assets", f.signedLaunch(solana.NewWallet().PrivateKey))
	require.Equal(t, http.StatusUnauthorized, code)

	tampered := f.signedLaunch(f.deployer.PrivateKey)
	tampered.LPPercent = 50
	tampered.BurnPercent = 50
	code, _ = f.do(http.MethodPost, "/v1/assets", tampered)
	require.Equal(t, http.StatusUnauthorized, code)

	require.Equal(t, before, f.balance(deployer))
	code, _ = f.do(http.MethodGet, "/v1/assets/"+testMint.String(), nil)
	require.Equal(t, http.StatusNotFound, code)

	code, resp = f.do(http.MethodPost, "/v1/assets", f.signedLaunch(f.deployer.PrivateKey))
	require.Equal(t, http.StatusCreated, code, "%+v", resp.Error)
	require.Equal(t, before-asset.DefaultPoolSeedLamports, f.balance(deployer))
}

func TestRegisterVaultTwiceConflicts(t *testing.T) {
	f := newFixture(t, nil)
	code, _ := f.do(http.MethodPost, "/v1/vaults", AccountRequest{User: f.trader.String()})
	require.Equal(t, http.StatusCreated, code)
	code, resp := f.do(http.MethodPost, "/v1/vaults", AccountRequest{User: f.trader.String()})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "conflict", resp.Error.Code)

	code, resp = f.do(http.MethodGet, "/v1/events?type="+events.TypeVaultRegistered, nil)
	require.Equal(t, http.StatusOK, code)
	var entries []map[string]interface{}
	decodeResult(t, resp, &entries)
	require.Len(t, entries, 1)
}

func TestUnknownVaultAndAsset(t *testing.T) {
	f := newFixture(t, nil)
	code, resp := f.do(http.MethodGet, "/v1/vaults/"+f.trader.String(), nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "not_found", resp.Error.Code)

	code, _ = f.do(http.MethodGet, "/v1/assets/"+testMint.String(), nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(http.MethodGet, "/v1/assets/not-a-key", nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRejectsMalformedPayloads(t *testing.T) {
	f := newFixture(t, nil)
	code, resp := f.do(http.MethodPost, "/v1/vaults", map[string]string{"user": f.trader.String(), "extra": "x"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_params", resp.Error.Code)

	bad := f.swap(1, 0)
	bad.Direction = "hold"
	code, _ = f.do(http.MethodPost, "/v1/swap", bad)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(http.MethodGet, "/v1/events?limit=-3", nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRateLimiterThrottles(t *testing.T) {
	f := newFixture(t, NewRateLimiter(1, 1, nil))
	code, _ := f.do(http.MethodGet, "/v1/events", nil)
	require.Equal(t, http.StatusOK, code)
	code, resp := f.do(http.MethodGet, "/v1/events", nil)
	require.Equal(t, http.StatusTooManyRequests, code)
	require.NotNil(t, resp.Error)

	code, _ = f.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestRequestIDEchoed(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestWallClockSlots(t *testing.T) {
	clock := WallClock(func() time.Time { return time.Unix(100, 800_000_000) }, 0)
	env := clock()
	require.Equal(t, int64(100), env.Now)
	require.Equal(t, uint64(252), env.Slot)
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	require.Equal(t, "10.0.0.9", clientID(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", clientID(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", clientID(req))
}
