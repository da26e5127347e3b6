package planner

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/plan/plantest"
	"ai-study-planner/internal/storage"
)

func TestPlanStoreInitialize(t *testing.T) {
	t.Run("FirstRun", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		store := NewPlanStore(kv)

		res, err := store.Initialize(wednesday)
		if err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
		if res.Plan != nil || res.APIKey != "" || res.RolledOver {
			t.Errorf("Expected a clean start, got %+v", res)
		}
		week, _, _ := kv.Get(KeyWeek)
		if week != "week-2024-9-7" {
			t.Errorf("Expected week key to be written, got %q", week)
		}
	})

	t.Run("RolloverKeepsAPIKey", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		kv.Set(KeyWeek, "week-2024-8-30")
		kv.Set(KeyAPIKey, "sk-test123")
		kv.Set(KeyPlan, plantest.SampleJSON())
		store := NewPlanStore(kv)

		res, err := store.Initialize(wednesday)
		if err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
		if res.APIKey != "sk-test123" {
			t.Errorf("Expected apiKey to survive rollover, got %q", res.APIKey)
		}
		if res.Plan != nil || !res.RolledOver {
			t.Errorf("Expected the old plan to be dropped, got %+v", res)
		}
		if _, found, _ := kv.Get(KeyPlan); found {
			t.Error("Expected studyPlan to be erased")
		}
		if week, _, _ := kv.Get(KeyWeek); week != plan.CurrentWeekKey(wednesday) {
			t.Errorf("Expected week key to be updated, got %q", week)
		}
	})

	t.Run("SameWeekIsIdempotent", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		store := NewPlanStore(kv)
		if _, err := store.Initialize(wednesday); err != nil {
			t.Fatal(err)
		}
		if err := store.Save(plantest.Sample()); err != nil {
			t.Fatal(err)
		}
		before, _, _ := kv.Get(KeyPlan)

		for _, now := range []time.Time{wednesday, wednesday.Add(72 * time.Hour), wednesday.Add(-48 * time.Hour)} {
			res, err := store.Initialize(now)
			if err != nil {
				t.Fatalf("Initialize returned error: %v", err)
			}
			if res.Plan == nil || res.RolledOver {
				t.Fatalf("Expected the plan to be kept on %s", now.Weekday())
			}
		}
		after, _, _ := kv.Get(KeyPlan)
		if before != after {
			t.Error("Expected studyPlan to be untouched")
		}
	})

	t.Run("CorruptPlanIsDropped", func(t *testing.T) {
		oneDay := plantest.Sample()
		oneDay.Days = oneDay.Days[:1]
		oneDayJSON, err := json.Marshal(oneDay)
		if err != nil {
			t.Fatal(err)
		}

		stored := map[string]string{
			"NotJSON": "{not json",
			"OneDay":  string(oneDayJSON),
		}
		for name, raw := range stored {
			t.Run(name, func(t *testing.T) {
				kv := storage.NewMemoryStore()
				kv.Set(KeyWeek, plan.CurrentWeekKey(wednesday))
				kv.Set(KeyAPIKey, "sk-test123")
				kv.Set(KeyPlan, raw)
				store := NewPlanStore(kv)

				res, err := store.Initialize(wednesday)
				if err != nil {
					t.Fatalf("Initialize returned error: %v", err)
				}
				if res.Plan != nil {
					t.Errorf("Expected no plan, got %d days", len(res.Plan.Days))
				}
				if res.APIKey != "sk-test123" {
					t.Errorf("Expected the key to survive, got %q", res.APIKey)
				}
				if _, found, _ := kv.Get(KeyPlan); found {
					t.Error("Expected the corrupt plan to be removed")
				}
			})
		}
	})
}

func TestPlanStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewPlanStore(storage.NewMemoryStore())
	p := plantest.Sample()

	if err := store.Save(p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(p, loaded) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", p, loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if loaded, err := store.Load(); err != nil || loaded != nil {
		t.Errorf("Expected no plan after Clear, got %v %v", loaded, err)
	}
}

func TestPlanStoreSaveDoesNotTouchWeekOrKey(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.Set(KeyWeek, "week-2024-9-7")
	store := NewPlanStore(kv)
	if err := store.SaveAPIKey("sk-abc"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(plantest.Sample()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}

	if week, _, _ := kv.Get(KeyWeek); week != "week-2024-9-7" {
		t.Errorf("Expected week key untouched, got %q", week)
	}
	if key, _ := store.APIKey(); key != "sk-abc" {
		t.Errorf("Expected api key untouched, got %q", key)
	}
}

func TestPlanStoreLoadCorrupt(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.Set(KeyPlan, `{"days": [{"day": "Funday"}]}`)
	_, err := NewPlanStore(kv).Load()
	if !errors.Is(err, ErrCorruptPlan) {
		t.Fatalf("Expected ErrCorruptPlan, got %v", err)
	}
}
