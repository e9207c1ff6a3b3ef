package coordinator

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/crypto"
	"safepump/native/common"
	"safepump/native/rewards"
	"safepump/native/tax"
	"safepump/native/tier"
)

const (
	DefaultAntiSnipeSeconds   int64  = 120
	DefaultBadgeBuyThreshold  uint64 = 1_000
	DefaultAirdropMaxClaimers uint64 = 10_000
	DefaultCaptureCapacity    uint64 = 80_000
)

// DefaultMintSuffix is the vanity suffix every registered mint must carry.
const DefaultMintSuffix = "SPMP"

// ProgramID anchors the addresses the coordinator derives for itself.
var ProgramID = solana.MustPublicKeyFromBase58("SafePumpCoordinator111111111111111111111111")

// DefaultBadgeMint is the derived badge mint. Only the coordinator mints it.
var DefaultBadgeMint = mustDerive([]byte("badge"))

func mustDerive(seed []byte) solana.PublicKey {
	addr, _, err := solana.FindProgramAddress([][]byte{seed}, ProgramID)
	if err != nil {
		panic(err)
	}
	return addr
}

// Params configures the coordinator. Velocity is evaluated against the
// protocol's cumulative swapped volume, not a valuation. Authorities must
// list at least one key: a request signed by any other key is rejected.
type Params struct {
	Tax      tax.Policy
	Velocity tier.Ladder

	AntiSnipeSeconds   int64
	DistributionPeriod int64
	MintSuffix         string
	Authorities        []crypto.PublicKey

	LiquidityPool solana.PublicKey
	TreasuryVault solana.PublicKey
	RewardsVault  solana.PublicKey
	BadgeMint     solana.PublicKey

	BadgeBuyThreshold  uint64
	AirdropMaxClaimers uint64
	CaptureCapacity    uint64
}

// DefaultParams returns the production constants. Pool and vault accounts and
// the authority list are left empty and must be configured.
func DefaultParams() Params {
	return Params{
		Tax:                tax.DefaultPolicy(),
		Velocity:           tier.VelocityLadder(tier.RuleFirstAtOrBelow),
		AntiSnipeSeconds:   DefaultAntiSnipeSeconds,
		DistributionPeriod: rewards.DefaultPeriodSeconds,
		MintSuffix:         DefaultMintSuffix,
		BadgeMint:          DefaultBadgeMint,
		BadgeBuyThreshold:  DefaultBadgeBuyThreshold,
		AirdropMaxClaimers: DefaultAirdropMaxClaimers,
		CaptureCapacity:    DefaultCaptureCapacity,
	}
}

var errInvalidParams = errors.New("coordinator: invalid params")

func (p Params) Validate() error {
	if err := p.Tax.Validate(); err != nil {
		return err
	}
	if err := p.Velocity.Validate(); err != nil {
		return err
	}
	if p.AntiSnipeSeconds < 0 || p.DistributionPeriod < 0 {
		return fmt.Errorf("%w: negative interval", errInvalidParams)
	}
	accounts := []struct {
		name string
		key  solana.PublicKey
	}{
		{"liquidity pool", p.LiquidityPool},
		{"treasury vault", p.TreasuryVault},
		{"rewards vault", p.RewardsVault},
		{"badge mint", p.BadgeMint},
	}
	for _, account := range accounts {
		if account.key.IsZero() {
			return fmt.Errorf("%w: %s not configured", errInvalidParams, account.name)
		}
	}
	if p.BadgeMint.Equals(common.NativeMint) {
		return fmt.Errorf("%w: badge mint cannot be the native mint", errInvalidParams)
	}
	if len(p.Authorities) == 0 {
		return fmt.Errorf("%w: no swap authority configured", errInvalidParams)
	}
	return nil
}

func (p Params) authorityAllowed(pk crypto.PublicKey) bool {
	for _, allowed := range p.Authorities {
		if allowed == pk {
			return true
		}
	}
	return false
}
