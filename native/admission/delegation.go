package admission

import (
	"fmt"

	"safepump/native/common"
)

// DelegationLimit bounds how often one user may route swaps of one asset
// through the coordinator.
type DelegationLimit struct {
	Max           uint64
	WindowSeconds int64
}

// DelegationCounter is the per-user usage persisted alongside the user's swap
// state.
type DelegationCounter struct {
	WindowStart int64
	Count       uint64
}

// CheckDelegation records one more delegation at now. The returned counter
// reflects the new usage when the limit is not exceeded; on denial the
// previous counter is returned.
func CheckDelegation(limit DelegationLimit, now int64, prev DelegationCounter) (DelegationCounter, error) {
	next := prev
	if limit.WindowSeconds <= 0 || now-prev.WindowStart >= limit.WindowSeconds {
		next = DelegationCounter{WindowStart: now}
	}
	count, err := common.CheckedAdd(next.Count, 1)
	if err != nil {
		return prev, err
	}
	if limit.Max > 0 && count > limit.Max {
		return prev, fmt.Errorf("%w: %d in %ds", common.ErrDelegationRateLimited, limit.Max, limit.WindowSeconds)
	}
	next.Count = count
	return next, nil
}
