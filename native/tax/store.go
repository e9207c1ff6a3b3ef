package tax

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"safepump/native/common"
)

// Storage abstracts the state transaction used to persist tax bookkeeping.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	ledgerPrefix   = []byte("tax/rewards/")
	holderTableKey = []byte("tax/badge-holders")
	ledgerIndexKey = []byte("tax/rewards/index")
)

func ledgerKey(denomination solana.PublicKey) []byte {
	return append(append([]byte{}, ledgerPrefix...), denomination[:]...)
}

type storedRewardLedger struct {
	Denomination solana.PublicKey
	Slots        []RewardEntry
	SwapCount    uint64
	BadgePool    uint64
	LastFlush    uint64
}

// LoadLedger returns the reward ledger of denomination, or an empty one.
func LoadLedger(store Storage, denomination solana.PublicKey) (*RewardLedger, error) {
	var stored storedRewardLedger
	ok, err := store.KVGet(ledgerKey(denomination), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewRewardLedger(denomination), nil
	}
	lastFlush, err := common.TimeFromStore(stored.LastFlush)
	if err != nil {
		return nil, err
	}
	return &RewardLedger{
		Denomination: stored.Denomination,
		Slots:        stored.Slots,
		SwapCount:    stored.SwapCount,
		BadgePool:    stored.BadgePool,
		LastFlush:    lastFlush,
	}, nil
}

// SaveLedger persists l and records its denomination in the ledger index.
func SaveLedger(store Storage, l *RewardLedger) error {
	if l == nil {
		return errors.New("tax: nil reward ledger")
	}
	stored := storedRewardLedger{
		Denomination: l.Denomination,
		Slots:        l.Slots,
		SwapCount:    l.SwapCount,
		BadgePool:    l.BadgePool,
		LastFlush:    common.TimeToStore(l.LastFlush),
	}
	if err := store.KVPut(ledgerKey(l.Denomination), stored); err != nil {
		return err
	}
	return indexDenomination(store, l.Denomination)
}

func indexDenomination(store Storage, denomination solana.PublicKey) error {
	list, err := Denominations(store)
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing.Equals(denomination) {
			return nil
		}
	}
	return store.KVPut(ledgerIndexKey, append(list, denomination))
}

// Denominations lists every mint that has a reward ledger.
func Denominations(store Storage) ([]solana.PublicKey, error) {
	var list []solana.PublicKey
	if _, err := store.KVGet(ledgerIndexKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// LoadHolders returns the badge holder table.
func LoadHolders(store Storage) (*HolderTable, error) {
	table := new(HolderTable)
	if _, err := store.KVGet(holderTableKey, table); err != nil {
		return nil, err
	}
	return table, nil
}

func SaveHolders(store Storage, table *HolderTable) error {
	if table == nil {
		return errors.New("tax: nil holder table")
	}
	return store.KVPut(holderTableKey, table)
}
