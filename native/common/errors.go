package common

import "errors"

var (
	ErrReplayRejected     = errors.New("swap: nonce does not match vault")
	ErrInvalidSignature   = errors.New("swap: invalid authority signature")
	ErrVaultNotRegistered = errors.New("swap: vault not registered")

	ErrAntiSnipeCooldown     = errors.New("swap: launch anti-snipe cooldown active")
	ErrCooldownNotElapsed    = errors.New("swap: sell cooldown not elapsed")
	ErrVelocityExceeded      = errors.New("swap: velocity cap exceeded for slot")
	ErrBuyCapExceeded        = errors.New("swap: buy exceeds per-swap cap")
	ErrSellCapExceeded       = errors.New("swap: sell exceeds per-swap cap")
	ErrDelegationRateLimited = errors.New("swap: delegation rate limit reached")

	ErrOverflow = errors.New("swap: arithmetic overflow")

	ErrExchangeRejected    = errors.New("swap: exchange rejected leg")
	ErrSlippageExceeded    = errors.New("swap: output below minimum")
	ErrInsufficientReserve = errors.New("swap: reserve too small for output")

	ErrDistributionTooSoon = errors.New("rewards: distribution period not elapsed")

	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
)

// Class groups errors for metrics labels and transport status mapping.
type Class string

const (
	ClassNone           Class = ""
	ClassAuthentication Class = "authentication"
	ClassAdmission      Class = "admission"
	ClassArithmetic     Class = "arithmetic"
	ClassExternal       Class = "external"
	ClassDistribution   Class = "distribution"
	ClassValidation     Class = "validation"
)

// Classify maps err onto the error taxonomy. Anything not recognised is a
// validation error.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrReplayRejected),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrVaultNotRegistered):
		return ClassAuthentication
	case errors.Is(err, ErrAntiSnipeCooldown),
		errors.Is(err, ErrCooldownNotElapsed),
		errors.Is(err, ErrVelocityExceeded),
		errors.Is(err, ErrBuyCapExceeded),
		errors.Is(err, ErrSellCapExceeded),
		errors.Is(err, ErrDelegationRateLimited),
		errors.Is(err, ErrModulePaused):
		return ClassAdmission
	case errors.Is(err, ErrOverflow):
		return ClassArithmetic
	case errors.Is(err, ErrExchangeRejected):
		return ClassExternal
	case errors.Is(err, ErrDistributionTooSoon):
		return ClassDistribution
	default:
		return ClassValidation
	}
}
