package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/storage"
)

// Keys of the persisted entries.
const (
	KeyWeek   = "weekKey"
	KeyAPIKey = "apiKey"
	KeyPlan   = "studyPlan"
)

// ErrCorruptPlan is returned by Load when the stored plan cannot be decoded.
var ErrCorruptPlan = errors.New("stored plan is corrupt")

// InitResult is what a session starts with.
type InitResult struct {
	APIKey string
	// Plan is nil when there is no active plan for the current week.
	Plan *plan.Plan
	// RolledOver is set when a plan from an earlier week was discarded.
	RolledOver bool
}

// PlanStore persists the plan for the current week and the API key.
type PlanStore struct {
	kv storage.KV
}

// NewPlanStore creates a PlanStore over a key-value backend.
func NewPlanStore(kv storage.KV) *PlanStore {
	return &PlanStore{kv: kv}
}

// Initialize applies the weekly reset policy. When the stored week differs
// from the week containing now, the week key is replaced and the stored plan
// erased; the API key is never touched.
func (s *PlanStore) Initialize(now time.Time) (InitResult, error) {
	current := plan.CurrentWeekKey(now)

	stored, found, err := s.kv.Get(KeyWeek)
	if err != nil {
		return InitResult{}, fmt.Errorf("failed to read week key: %w", err)
	}

	apiKey, err := s.APIKey()
	if err != nil {
		return InitResult{}, err
	}
	res := InitResult{APIKey: apiKey}

	if !found || stored != current {
		if err := s.kv.Set(KeyWeek, current); err != nil {
			return InitResult{}, fmt.Errorf("failed to write week key: %w", err)
		}
		if err := s.kv.Remove(KeyPlan); err != nil {
			return InitResult{}, fmt.Errorf("failed to clear plan: %w", err)
		}
		if found {
			log.Printf("New week %s (was %s), cleared previous plan", current, stored)
			res.RolledOver = true
		}
		return res, nil
	}

	p, err := s.Load()
	if errors.Is(err, ErrCorruptPlan) {
		log.Printf("Warning: discarding unreadable plan: %v", err)
		if err := s.kv.Remove(KeyPlan); err != nil {
			return InitResult{}, fmt.Errorf("failed to clear plan: %w", err)
		}
		return res, nil
	}
	if err != nil {
		return InitResult{}, err
	}
	res.Plan = p
	return res, nil
}

// Load returns the stored plan, or nil when none is stored. A plan that
// does not decode or breaks the model's rules is ErrCorruptPlan.
func (s *PlanStore) Load() (*plan.Plan, error) {
	raw, found, err := s.kv.Get(KeyPlan)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	if !found {
		return nil, nil
	}
	p := &plan.Plan{}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPlan, err)
	}
	if err := plan.Validate(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPlan, err)
	}
	return p, nil
}

// Save overwrites the stored plan. The week key is left alone.
func (s *PlanStore) Save(p *plan.Plan) error {
	if p == nil {
		return errors.New("cannot save a nil plan")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := s.kv.Set(KeyPlan, string(data)); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// SaveAPIKey overwrites the stored API key.
func (s *PlanStore) SaveAPIKey(key string) error {
	if err := s.kv.Set(KeyAPIKey, key); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

// APIKey returns the stored API key, or "" when none is stored.
func (s *PlanStore) APIKey() (string, error) {
	key, _, err := s.kv.Get(KeyAPIKey)
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return key, nil
}

// Clear removes the stored plan only.
func (s *PlanStore) Clear() error {
	if err := s.kv.Remove(KeyPlan); err != nil {
		return fmt.Errorf("failed to clear plan: %w", err)
	}
	return nil
}
