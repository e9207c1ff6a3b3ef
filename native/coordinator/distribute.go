package coordinator

import (
	"github.com/gagliardetto/solana-go"

	"safepump/core/events"
	"safepump/native/common"
	"safepump/native/rewards"
	"safepump/native/tax"
)

// Distribute flushes the reward ledger of one denomination, paying swappers
// and badge holders out of the rewards vault.
func (e *Engine) Distribute(st State, env common.Env, denomination solana.PublicKey) (rewards.Summary, error) {
	g, err := loadGlobal(st)
	if err != nil {
		return rewards.Summary{}, err
	}
	ledger, err := e.loadLedger(st, g, denomination)
	if err != nil {
		return rewards.Summary{}, err
	}
	holders, err := tax.LoadHolders(st)
	if err != nil {
		return rewards.Summary{}, err
	}
	pay := func(recipient solana.PublicKey, amount uint64) error {
		return st.Transfer(e.params.RewardsVault, recipient, denomination, amount)
	}
	summary, err := rewards.Distribute(ledger, holders, env.Now, e.params.DistributionPeriod, pay)
	if err != nil {
		return rewards.Summary{}, err
	}
	if err := tax.SaveLedger(st, ledger); err != nil {
		return rewards.Summary{}, err
	}
	st.Emit(events.RewardsDistributed{
		Denomination: denomination,
		Recipients:   summary.Recipients,
		SwapperTotal: summary.SwapperTotal,
		Holders:      summary.Holders,
		PerHolder:    summary.PerHolder,
		BadgeTotal:   summary.BadgeTotal,
		Dust:         summary.Dust,
		At:           env.Now,
	})
	e.metrics.ObserveDistribution(denominationLabel(denomination), summary.SwapperTotal, summary.BadgeTotal)
	e.metrics.AddRoundingDust("badge", summary.Dust)
	e.logger.Info("rewards distributed",
		"denomination", denomination.String(),
		"recipients", summary.Recipients,
		"swapperTotal", summary.SwapperTotal,
		"badgeTotal", summary.BadgeTotal)
	return summary, nil
}

// Denominations lists every mint with a reward ledger.
func (e *Engine) Denominations(st State) ([]solana.PublicKey, error) {
	return tax.Denominations(st)
}
