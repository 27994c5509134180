package enums

import "testing"

func TestParseCurrency(t *testing.T) {
	got, err := ParseCurrency("LOCAL")
	if err != nil || got != CurrencyLocal {
		t.Fatalf("expected LOCAL, got %q err=%v", got, err)
	}
	if _, err := ParseCurrency("VES"); err == nil {
		t.Fatalf("expected error for unknown currency")
	}
	if Currency("").IsValid() {
		t.Fatalf("empty currency should be invalid")
	}
}

func TestParseCartItemKind(t *testing.T) {
	for _, raw := range []string{"product", "repair"} {
		kind, err := ParseCartItemKind(raw)
		if err != nil || kind.String() != raw {
			t.Fatalf("expected %q to parse, got %q err=%v", raw, kind, err)
		}
	}
	if _, err := ParseCartItemKind("service"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRepairStatusCollectable(t *testing.T) {
	if !RepairStatusReady.Collectable() {
		t.Fatalf("ready orders should be collectable")
	}
	if RepairStatusCancelled.Collectable() {
		t.Fatalf("cancelled orders should not be collectable")
	}
	if RepairStatus("lost").Collectable() {
		t.Fatalf("unknown status should not be collectable")
	}
}

func TestParseRateProvenance(t *testing.T) {
	p, err := ParseRateProvenance("synced")
	if err != nil || p != RateProvenanceSynced {
		t.Fatalf("expected synced, got %q err=%v", p, err)
	}
	if _, err := ParseRateProvenance("guess"); err == nil {
		t.Fatalf("expected error for unknown provenance")
	}
}
