package journal

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"safepump/core/events"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	j.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return j
}

func TestAppendAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()

	j.Emit(events.AssetLaunched{Mint: mint, TotalSupply: 1_000})
	j.Emit(events.SwapExecuted{RequestID: "req-1", Mint: mint, Direction: "buy", AmountIn: 10, Venue: "curve"})
	j.Emit(events.SwapExecuted{RequestID: "req-2", Mint: mint, Direction: "sell", AmountIn: 5, Venue: "curve"})

	all, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].RequestID != "req-2" || all[2].Type != events.TypeAssetLaunched {
		t.Fatalf("entries not newest first: %+v", all)
	}
	if !all[0].RecordedAt.Equal(time.Unix(1_700_000_000, 0)) {
		t.Fatalf("unexpected timestamp %s", all[0].RecordedAt)
	}

	swaps, err := j.Recent(ctx, events.TypeSwapExecuted, 1)
	if err != nil {
		t.Fatalf("recent swaps: %v", err)
	}
	if len(swaps) != 1 || swaps[0].Attributes["direction"] != "sell" {
		t.Fatalf("unexpected filtered entries: %+v", swaps)
	}
	if flat := swaps[0].Flat(); flat.Attributes["amountIn"] != "5" {
		t.Fatalf("unexpected flat attributes: %+v", flat.Attributes)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err != ErrPathRequired {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
	if _, err := FileDSN(""); err != ErrPathRequired {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
	dsn, err := FileDSN("journal.db")
	if err != nil {
		t.Fatalf("file dsn: %v", err)
	}
	if dsn[:5] != "file:" {
		t.Fatalf("unexpected dsn %s", dsn)
	}
}
