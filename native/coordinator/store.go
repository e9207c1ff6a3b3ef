package coordinator

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"safepump/core/events"
	"safepump/native/common"
)

// State is the transaction handle every coordinator operation runs against.
type State interface {
	common.Ledger
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	Emit(events.Event)
}

var (
	globalKey          = []byte("coordinator/global")
	registryKey        = []byte("coordinator/registry")
	airdropPrefix      = []byte("coordinator/airdrop/")
	airdropClaimPrefix = []byte("coordinator/airdrop-claim/")
	badgeClaimPrefix   = []byte("coordinator/badge-claim/")
	capturePrefix      = []byte("coordinator/capture/")
	captureCountKey    = []byte("coordinator/capture-count")
)

func joinKey(prefix []byte, parts ...solana.PublicKey) []byte {
	buf := append([]byte{}, prefix...)
	for _, part := range parts {
		buf = append(buf, part[:]...)
	}
	return buf
}

// Global is the coordinator singleton.
type Global struct {
	Initialized  bool
	Treasury     solana.PublicKey
	TotalSwapped uint64
	SwapCount    uint64
	LaunchedAt   int64
}

type storedGlobal struct {
	Initialized  bool
	Treasury     solana.PublicKey
	TotalSwapped uint64
	SwapCount    uint64
	LaunchedAt   uint64
}

func loadGlobal(st State) (*Global, error) {
	var stored storedGlobal
	ok, err := st.KVGet(globalKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok || !stored.Initialized {
		return nil, ErrNotInitialized
	}
	launchedAt, err := common.TimeFromStore(stored.LaunchedAt)
	if err != nil {
		return nil, err
	}
	return &Global{
		Initialized:  stored.Initialized,
		Treasury:     stored.Treasury,
		TotalSwapped: stored.TotalSwapped,
		SwapCount:    stored.SwapCount,
		LaunchedAt:   launchedAt,
	}, nil
}

func saveGlobal(st State, g *Global) error {
	if g == nil {
		return errors.New("coordinator: nil global state")
	}
	return st.KVPut(globalKey, storedGlobal{
		Initialized:  g.Initialized,
		Treasury:     g.Treasury,
		TotalSwapped: g.TotalSwapped,
		SwapCount:    g.SwapCount,
		LaunchedAt:   common.TimeToStore(g.LaunchedAt),
	})
}

// RegistryEntry is one completed asset handshake.
type RegistryEntry struct {
	Mint     solana.PublicKey
	Instance solana.PublicKey
	Deployer solana.PublicKey
}

func loadRegistry(st State) ([]RegistryEntry, error) {
	var entries []RegistryEntry
	if _, err := st.KVGet(registryKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AirdropRegistry lists the claimers of one asset's airdrop in claim order.
type AirdropRegistry struct {
	Mint     solana.PublicKey
	Claimers []solana.PublicKey
}

func loadAirdrop(st State, mint solana.PublicKey) (*AirdropRegistry, error) {
	reg := &AirdropRegistry{Mint: mint}
	if _, err := st.KVGet(joinKey(airdropPrefix, mint), reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func saveAirdrop(st State, reg *AirdropRegistry) error {
	return st.KVPut(joinKey(airdropPrefix, reg.Mint), reg)
}

func flagSet(st State, key []byte) (bool, error) {
	var flag bool
	ok, err := st.KVGet(key, &flag)
	if err != nil {
		return false, err
	}
	return ok && flag, nil
}
