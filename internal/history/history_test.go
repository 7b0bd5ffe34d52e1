package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/storage/kv"
)

func samplePlan(id string) plans.Plan {
	return plans.Plan{
		ID:             id,
		Category:       plans.CategoryPreventive,
		InstrumentType: plans.InstrumentFlowMeter,
		PlatformType:   plans.PlatformFPSO,
		Tag:            "FT-" + id,
		SafetyAnalysis: []plans.SafetyRisk{{Hazard: "h", Mitigation: "m"}},
		TestProcedures: []plans.Step{{ID: "1", Action: "Check"}},
		CreatedAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPrependKeepsNewestFirstAndCaps(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	for i := 0; i < Limit+5; i++ {
		if err := store.Prepend(ctx, samplePlan(fmt.Sprintf("p%02d", i))); err != nil {
			t.Fatalf("Prepend: %v", err)
		}
	}
	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != Limit {
		t.Fatalf("expected %d items, got %d", Limit, len(items))
	}
	if items[0].ID != fmt.Sprintf("p%02d", Limit+4) {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}
	if items[Limit-1].ID != "p05" {
		t.Fatalf("expected oldest retained p05, got %s", items[Limit-1].ID)
	}
}

func TestListTreatsCorruptRecordAsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	for _, raw := range []string{`not json`, `{"id":"x"}`, `"text"`} {
		if err := mem.Put(ctx, Key, []byte(raw)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		items, err := NewStore(mem).List(ctx)
		if err != nil {
			t.Fatalf("List(%q): %v", raw, err)
		}
		if len(items) != 0 {
			t.Fatalf("List(%q): expected empty, got %d", raw, len(items))
		}
	}
}

func TestListFiltersInvalidEntries(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	good, err := json.Marshal(samplePlan("ok"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw := `[` + string(good) + `, {"id":"partial","tag":"T"}, 42]`
	if err := mem.Put(ctx, Key, []byte(raw)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	items, err := NewStore(mem).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != "ok" {
		t.Fatalf("expected only the valid entry, got %+v", items)
	}
}

func TestFindReturnsDetachedCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())
	if err := store.Prepend(ctx, samplePlan("a")); err != nil {
		t.Fatalf("Prepend: %v", err)
	}

	got, ok, err := store.Find(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	got.SafetyAnalysis[0].Hazard = "mutated"

	again, _, _ := store.Find(ctx, "a")
	if again.SafetyAnalysis[0].Hazard != "h" {
		t.Fatalf("stored plan was mutated through Find result")
	}
	if _, ok, _ := store.Find(ctx, "missing"); ok {
		t.Fatalf("expected missing id not found")
	}
}
