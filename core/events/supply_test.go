package events

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestTokenSupplyEvent(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	evt := TokenSupply{
		Mint:   mint,
		Total:  5000,
		Delta:  250,
		Reason: SupplyReasonMint,
	}.Event()
	if evt == nil {
		t.Fatalf("expected event")
	}
	if evt.Type != TypeTokenSupply {
		t.Fatalf("unexpected type: %s", evt.Type)
	}
	if evt.Attributes["mint"] != mint.String() {
		t.Fatalf("unexpected mint attr: %s", evt.Attributes["mint"])
	}
	if evt.Attributes["total"] != "5000" || evt.Attributes["delta"] != "250" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
	if evt.Attributes["reason"] != SupplyReasonMint {
		t.Fatalf("unexpected reason: %s", evt.Attributes["reason"])
	}
}

func TestFlattenFallsBackToType(t *testing.T) {
	var rec Recorder
	Fanout{&rec, nil, NoopEmitter{}}.Emit(TokenSupply{Total: 1})
	if got := rec.Types(); len(got) != 1 || got[0] != TypeTokenSupply {
		t.Fatalf("unexpected recorded types: %v", got)
	}
	flat := Flatten(bare("custom"))
	if flat.Type != "custom" || len(flat.Attributes) != 0 {
		t.Fatalf("unexpected flattened event: %+v", flat)
	}
	if Flatten(nil) != nil {
		t.Fatalf("expected nil for nil event")
	}
}

type bare string

func (b bare) EventType() string { return string(b) }
