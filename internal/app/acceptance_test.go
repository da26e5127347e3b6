package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/plan/plantest"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/storage"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	generateContentCalls int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt llm.Prompt) (llm.ContentResponse, error) {
	m.generateContentCalls++
	return llm.ContentResponse{Content: plantest.SampleJSON()}, nil
}

func TestWeeklyWorkflow(t *testing.T) {
	dir := t.TempDir()
	kv, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	client := &mockLLMClient{}
	factory := func(ctx context.Context, apiKey string) (llm.TextGenerator, error) { return client, nil }
	gen := planner.NewGenerator(factory, llm.Provider{Name: "openai", KeyPrefix: "sk-"}, 0.7)

	now := time.Date(2024, time.October, 9, 9, 0, 0, 0, time.Local)
	clock := func() time.Time { return now }

	// 1. First session: key, example input, generate, edit, save.
	session := app.New(planner.NewPlanStore(kv), gen, app.WithClock(clock))
	if _, err := session.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := session.SetAPIKey("sk-test123"); err != nil {
		t.Fatal(err)
	}
	session.LoadExample()
	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if client.generateContentCalls != 1 {
		t.Errorf("Expected 1 LLM call, got %d", client.generateContentCalls)
	}
	if err := session.ToggleEdit(); err != nil {
		t.Fatal(err)
	}
	idx, err := session.AddSession(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := session.UpdateField(3, idx, editor.FieldTitle, "Care plan draft"); err != nil {
		t.Fatal(err)
	}
	if err := session.UpdateField(3, idx, editor.FieldTime, "13:00-15:30"); err != nil {
		t.Fatal(err)
	}
	session.CloseSession()
	if err := session.Save(); err != nil {
		t.Fatal(err)
	}
	want := session.View().Plan

	// 2. Later the same week: the plan is restored, the key too.
	later := app.New(planner.NewPlanStore(kv), gen, app.WithClock(func() time.Time { return now.Add(48 * time.Hour) }))
	res, err := later.Start()
	if err != nil {
		t.Fatal(err)
	}
	if res.APIKey != "sk-test123" || res.Plan == nil {
		t.Fatalf("Expected key and plan to be restored, got %+v", res)
	}
	if err := later.ResumePlan(); err != nil {
		t.Fatal(err)
	}
	got := later.View().Plan
	thursday := got.Days[plan.Thursday].Sessions
	if thursday[len(thursday)-1].Title != "Care plan draft" {
		t.Errorf("Expected the saved edit to survive a restart")
	}
	if plan.FormatText(got) != plan.FormatText(want) {
		t.Error("Expected the restored plan to render like the saved one")
	}

	// 3. Next week: the plan is gone, the key survives.
	nextWeek := app.New(planner.NewPlanStore(kv), gen, app.WithClock(func() time.Time { return now.AddDate(0, 0, 7) }))
	res, err = nextWeek.Start()
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan != nil || !res.RolledOver || res.APIKey != "sk-test123" {
		t.Errorf("Expected rollover keeping only the key, got %+v", res)
	}
	if !strings.HasPrefix(nextWeek.View().State.String(), "input") {
		t.Errorf("Expected to start on input, got %s", nextWeek.View().State)
	}
}
