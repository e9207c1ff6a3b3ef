package rpc

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"safepump/crypto"
	"safepump/native/asset"
	"safepump/native/common"
)

// Error is the body of every failed response.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Response wraps every body the server writes.
type Response struct {
	Result interface{} `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// SwapRequest is the wire form of a signed swap. Amounts are base units.
type SwapRequest struct {
	RequestID  string           `json:"requestId,omitempty"`
	Mint       string           `json:"mint"`
	User       string           `json:"user"`
	Direction  string           `json:"direction"`
	Amount     uint64           `json:"amount"`
	MinimumOut uint64           `json:"minimumOut"`
	Nonce      uint64           `json:"nonce"`
	Signature  crypto.Signature `json:"signature"`
	Authority  crypto.PublicKey `json:"authority"`
}

func parseDirection(raw string) (common.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy":
		return common.DirectionBuy, nil
	case "sell":
		return common.DirectionSell, nil
	default:
		return 0, fmt.Errorf("direction must be buy or sell, got %q", raw)
	}
}

func (r SwapRequest) toAsset() (asset.Request, error) {
	mint, err := crypto.ParseAddress(r.Mint)
	if err != nil {
		return asset.Request{}, fmt.Errorf("mint: %w", err)
	}
	user, err := crypto.ParseAddress(r.User)
	if err != nil {
		return asset.Request{}, fmt.Errorf("user: %w", err)
	}
	dir, err := parseDirection(r.Direction)
	if err != nil {
		return asset.Request{}, err
	}
	return asset.Request{
		RequestID:  strings.TrimSpace(r.RequestID),
		Mint:       mint,
		User:       user,
		Direction:  dir,
		Amount:     r.Amount,
		MinimumOut: r.MinimumOut,
		Nonce:      r.Nonce,
		Signature:  r.Signature,
		Authority:  r.Authority,
	}, nil
}

// SwapReceipt is the result of a committed swap.
type SwapReceipt struct {
	RequestID    string `json:"requestId"`
	Direction    string `json:"direction"`
	Amount       uint64 `json:"amount"`
	Tax          uint64 `json:"tax"`
	Denomination string `json:"denomination"`
	Net          uint64 `json:"net"`
	AmountOut    uint64 `json:"amountOut"`
	Venue        string `json:"venue"`
	Bonded       bool   `json:"bonded"`
	Nonce        uint64 `json:"nonce"`
}

func receiptFrom(r asset.Receipt) SwapReceipt {
	return SwapReceipt{
		RequestID:    r.RequestID,
		Direction:    r.Direction.String(),
		Amount:       r.Amount,
		Tax:          r.Tax,
		Denomination: r.Denomination.String(),
		Net:          r.Net,
		AmountOut:    r.AmountOut,
		Venue:        r.Venue,
		Bonded:       r.Bonded,
		Nonce:        r.Nonce,
	}
}

// LaunchRequest is the wire form of asset.LaunchParams. Signature is the
// deployer's base58 ed25519 signature over the launch message.
type LaunchRequest struct {
	Mint                string           `json:"mint"`
	Deployer            string           `json:"deployer"`
	TotalSupply         uint64           `json:"totalSupply"`
	BurnPercent         uint64           `json:"burnPercent"`
	LPPercent           uint64           `json:"lpPercent"`
	DeployerAmount      uint64           `json:"deployerAmount"`
	AllyWallets         []string         `json:"allyWallets,omitempty"`
	AllyAmounts         []uint64         `json:"allyAmounts,omitempty"`
	SwapFeeBps          uint64           `json:"swapFeeBps"`
	MaxBuyBps           uint64           `json:"maxBuyBps"`
	MaxSellBps          uint64           `json:"maxSellBps"`
	SellCooldown        uint64           `json:"sellCooldown"`
	TopTierValuationSOL uint64           `json:"topTierValuationSol"`
	AirdropEnabled      bool             `json:"airdropEnabled"`
	Signature           solana.Signature `json:"signature"`
}

func (r LaunchRequest) toAsset() (asset.LaunchParams, error) {
	mint, err := crypto.ParseAddress(r.Mint)
	if err != nil {
		return asset.LaunchParams{}, fmt.Errorf("mint: %w", err)
	}
	deployer, err := crypto.ParseAddress(r.Deployer)
	if err != nil {
		return asset.LaunchParams{}, fmt.Errorf("deployer: %w", err)
	}
	allies := make([]solana.PublicKey, 0, len(r.AllyWallets))
	for _, raw := range r.AllyWallets {
		ally, err := crypto.ParseAddress(raw)
		if err != nil {
			return asset.LaunchParams{}, fmt.Errorf("ally: %w", err)
		}
		allies = append(allies, ally)
	}
	return asset.LaunchParams{
		Mint:                mint,
		Deployer:            deployer,
		TotalSupply:         r.TotalSupply,
		BurnPercent:         r.BurnPercent,
		LPPercent:           r.LPPercent,
		DeployerAmount:      r.DeployerAmount,
		AllyWallets:         allies,
		AllyAmounts:         r.AllyAmounts,
		SwapFeeBps:          r.SwapFeeBps,
		MaxBuyBps:           r.MaxBuyBps,
		MaxSellBps:          r.MaxSellBps,
		SellCooldown:        r.SellCooldown,
		TopTierValuationSOL: r.TopTierValuationSOL,
		AirdropEnabled:      r.AirdropEnabled,
	}, nil
}

// AssetView is the public state of a launched asset.
type AssetView struct {
	Mint          string `json:"mint"`
	Deployer      string `json:"deployer"`
	TotalSupply   uint64 `json:"totalSupply"`
	ReserveSOL    uint64 `json:"reserveSol"`
	ReserveTokens uint64 `json:"reserveTokens"`
	Burned        uint64 `json:"burned"`
	Bonded        bool   `json:"bonded"`
	Pool          string `json:"pool,omitempty"`
	SwapCount     uint64 `json:"swapCount"`
	LaunchedAt    int64  `json:"launchedAt"`
}

func assetView(a *asset.AssetState) AssetView {
	view := AssetView{
		Mint:          a.Mint.String(),
		Deployer:      a.Deployer.String(),
		TotalSupply:   a.TotalSupply,
		ReserveSOL:    a.ReserveSOL,
		ReserveTokens: a.ReserveTokens,
		Burned:        a.Burned,
		Bonded:        a.Bonded,
		SwapCount:     a.SwapCount,
		LaunchedAt:    a.LaunchedAt,
	}
	if a.Bonded {
		view.Pool = a.Pool.String()
	}
	return view
}

// VaultView is the public state of a nonce vault.
type VaultView struct {
	Owner      string `json:"owner"`
	Nonce      uint64 `json:"nonce"`
	LastSigner string `json:"lastSigner,omitempty"`
}

// AccountRequest names a user, optionally scoped to a mint.
type AccountRequest struct {
	User string `json:"user"`
	Mint string `json:"mint,omitempty"`
}

// DistributeRequest names the reward denomination to flush.
type DistributeRequest struct {
	Mint string `json:"mint"`
}

// DistributionView reports one flush.
type DistributionView struct {
	Denomination string `json:"denomination"`
	Recipients   uint64 `json:"recipients"`
	Swapper      uint64 `json:"swapper"`
	Holders      uint64 `json:"holders"`
	PerHolder    uint64 `json:"perHolder"`
	Badge        uint64 `json:"badge"`
	Dust         uint64 `json:"dust"`
}
