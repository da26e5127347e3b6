package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-study-planner/internal/config"
	"ai-study-planner/internal/plan"
	"ai-study-planner/internal/plan/plantest"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/share"
	"ai-study-planner/internal/shared"
	"ai-study-planner/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// lastText returns the text of the most recent sent or edited message.
func (f *fakeSender) lastText() string {
	if len(f.sent) == 0 {
		return ""
	}
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	}
	return ""
}

type mockGenerator struct {
	err   error
	calls int
	input string
}

func (m *mockGenerator) Generate(ctx context.Context, raw, apiKey string, now time.Time) (planner.Result, error) {
	m.calls++
	m.input = raw
	if m.err != nil {
		return planner.Result{Meta: shared.AgentMeta{AgentName: "PlanGenerator"}}, m.err
	}
	return planner.Result{Plan: plantest.Sample()}, nil
}

var monday = time.Date(2024, time.October, 7, 7, 0, 0, 0, time.Local)

const testChat = int64(42)

type testBot struct {
	*Bot
	api  *fakeSender
	gen  *mockGenerator
	kv   storage.KV
	repo *SessionRepository
}

func newTestBot(t *testing.T, cfg *config.Config) *testBot {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Timeout: time.Second, TelegramAllowUserIDs: []int64{7}}
	}
	api := &fakeSender{}
	gen := &mockGenerator{}
	kv := storage.NewMemoryStore()
	repo := NewSessionRepository(kv, gen, func() time.Time { return monday })
	b := newBot(api, cfg, Deps{Sessions: repo, Signer: share.NewSigner("secret")})
	return &testBot{Bot: b, api: api, gen: gen, kv: kv, repo: repo}
}

func (tb *testBot) say(text string) {
	tb.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 100,
		From:      &tgbotapi.User{ID: 7, UserName: "student"},
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      text,
	}})
}

func (tb *testBot) press(data string) {
	tb.HandleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}})
}

func (tb *testBot) session(t *testing.T) *Session {
	t.Helper()
	s, err := tb.repo.Get(testChat)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	return s
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text, cmd, args string
	}{
		{"/key sk-abc", "/key", "sk-abc"},
		{"/Plan@StudyFlowBot", "/plan", ""},
		{"hello", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args := parseCommand(tt.text)
			if cmd != tt.cmd || args != tt.args {
				t.Errorf("parseCommand(%q) = %q, %q", tt.text, cmd, args)
			}
		})
	}
}

func TestKeyCommandStoresKeyAndDeletesMessage(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.say("/key sk-test123")

	if got := tb.session(t).App.View().APIKey; got != "sk-test123" {
		t.Errorf("Expected key to be stored, got %q", got)
	}
	if len(tb.api.requests) != 1 {
		t.Fatalf("Expected one delete request, got %d", len(tb.api.requests))
	}
	if _, ok := tb.api.requests[0].(tgbotapi.DeleteMessageConfig); !ok {
		t.Errorf("Expected DeleteMessageConfig, got %T", tb.api.requests[0])
	}
	if strings.Contains(tb.api.lastText(), "sk-test123") {
		t.Error("Confirmation must not echo the full key")
	}
}

func TestScheduleTextGeneratesPlan(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.say("/key sk-test123")
	tb.say("Classes Mon 9-12, work Fri night")

	if tb.gen.calls != 1 || tb.gen.input != "Classes Mon 9-12, work Fri night" {
		t.Fatalf("Expected one generation with the schedule, got %d calls (%q)", tb.gen.calls, tb.gen.input)
	}
	edit, ok := tb.api.sent[len(tb.api.sent)-1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("Expected the status message to be edited, got %T", tb.api.sent[len(tb.api.sent)-1])
	}
	if !strings.Contains(edit.Text, "Plan Ready") || !strings.Contains(edit.Text, "12 hours") {
		t.Errorf("Unexpected overview:\n%s", edit.Text)
	}
	if edit.ReplyMarkup == nil {
		t.Error("Expected the day keyboard")
	}

	if _, found, _ := tb.kv.Get("chat:42:" + planner.KeyPlan); !found {
		t.Error("Expected plan to be stored under the chat prefix")
	}
}

func TestGenerationFailureShowsRemediation(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.gen.err = &planner.GenerationError{Kind: planner.KindQuotaExceeded}
	tb.say("/key sk-test123")
	tb.say("Classes Mon 9-12")

	if !strings.Contains(tb.api.lastText(), "Out of credits") {
		t.Errorf("Expected quota remediation, got %q", tb.api.lastText())
	}
	if tb.session(t).App.HasPlan() {
		t.Error("Expected no plan after a failed generation")
	}
}

func TestUnauthorizedUserIsIgnored(t *testing.T) {
	tests := map[string][]int64{
		"NotListed": {1},
		"EmptyList": nil,
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			tb := newTestBot(t, &config.Config{TelegramAllowUserIDs: ids})
			tb.say("/help")
			tb.press("week")
			if len(tb.api.sent) != 0 || len(tb.api.requests) != 0 {
				t.Errorf("Expected no reply, got %d messages and %d requests", len(tb.api.sent), len(tb.api.requests))
			}
		})
	}
}

func TestEditFlowThroughButtons(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.say("/key sk-test123")
	tb.say("Classes Mon 9-12")

	tb.press("editmode")
	if !tb.session(t).App.View().State.Editing() {
		t.Fatal("Expected edit mode")
	}

	tb.press("add|0")
	if got := len(tb.session(t).App.View().Plan.Days[0].Sessions); got != 4 {
		t.Fatalf("Expected 4 Monday sessions, got %d", got)
	}

	tb.press("field|0|3|time")
	tb.say("25:00-26:00")
	if !strings.Contains(tb.api.lastText(), "HH:MM-HH:MM") {
		t.Errorf("Expected the time prompt again, got %q", tb.api.lastText())
	}
	tb.say("13:00-14:30")

	tb.press("field|0|3|title")
	tb.say("Anatomy drills")
	tb.press("type|0|3|class")

	got := tb.session(t).App.View().Plan.Days[0].Sessions[3]
	want := plan.Session{Time: plan.MustTimeRange("13:00-14:30"), Type: plan.TypeClass, Title: "Anatomy drills", Icon: "📚", Focus: "Add details here"}
	if got != want {
		t.Errorf("Unexpected session:\n got %+v\nwant %+v", got, want)
	}

	tb.press("save")
	stored, err := planner.NewPlanStore(chatStore(tb.kv, testChat)).Load()
	if err != nil || stored == nil {
		t.Fatalf("Expected stored plan, got %v (%v)", stored, err)
	}
	if stored.Days[0].Sessions[3].Title != "Anatomy drills" {
		t.Errorf("Expected saved edit, got %+v", stored.Days[0].Sessions[3])
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.say("/key sk-test123")
	tb.say("Classes Mon 9-12")
	tb.press("editmode")

	tb.press("del|0|1")
	if got := len(tb.session(t).App.View().Plan.Days[0].Sessions); got != 3 {
		t.Fatalf("Expected no deletion before confirming, got %d sessions", got)
	}
	tb.press("delok|0|1")
	sessions := tb.session(t).App.View().Plan.Days[0].Sessions
	if len(sessions) != 2 || sessions[1].Title != "C" {
		t.Errorf("Expected B to be removed, got %+v", sessions)
	}

	tb.press("discard")
	if got := len(tb.session(t).App.View().Plan.Days[0].Sessions); got != 3 {
		t.Errorf("Expected discard to restore 3 sessions, got %d", got)
	}
}

func TestStaleCallbackReportsError(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.say("/key sk-test123")
	tb.say("Classes Mon 9-12")
	tb.press("editmode")

	tb.press("edit|0|9")
	if !strings.Contains(tb.api.lastText(), "no longer exists") {
		t.Errorf("Expected out of range message, got %q", tb.api.lastText())
	}
}

func TestMetricsIsAdminOnly(t *testing.T) {
	tb := newTestBot(t, &config.Config{AdminTelegramID: 99, TelegramAllowUserIDs: []int64{7}})
	tb.say("/metrics")
	if !strings.Contains(tb.api.lastText(), "Access Denied") {
		t.Errorf("Expected access denied, got %q", tb.api.lastText())
	}
}

func TestShareLinkResolvesToPlan(t *testing.T) {
	tb := newTestBot(t, &config.Config{Timeout: time.Second, PublicURL: "https://planner.example/", TelegramAllowUserIDs: []int64{7}})
	tb.say("/key sk-test123")
	tb.say("Classes Mon 9-12")
	tb.say("/share")

	text := tb.api.lastText()
	i := strings.Index(text, "https://planner.example/share/")
	if i < 0 {
		t.Fatalf("Expected a share link, got %q", text)
	}
	token := strings.TrimSpace(text[i+len("https://planner.example/share/"):])

	claims, err := tb.signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	p, week, err := tb.repo.SharedPlan(claims.Owner())
	if err != nil || p == nil {
		t.Fatalf("Expected shared plan, got %v (%v)", p, err)
	}
	if week != plan.CurrentWeekKey(monday) || week != claims.WeekKey {
		t.Errorf("Unexpected week %q (claims %q)", week, claims.WeekKey)
	}
}

func TestSessionRestartsOnNewWeek(t *testing.T) {
	now := monday
	kv := storage.NewMemoryStore()
	repo := NewSessionRepository(kv, &mockGenerator{}, func() time.Time { return now })

	s, err := repo.Get(testChat)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if err := s.App.SetAPIKey("sk-test123"); err != nil {
		t.Fatalf("SetAPIKey returned error: %v", err)
	}
	s.App.SetInput("Classes")
	if err := s.App.Generate(context.Background()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	now = monday.AddDate(0, 0, 7)
	next, err := repo.Get(testChat)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if next == s {
		t.Fatal("Expected a new session for the new week")
	}
	if next.App.HasPlan() {
		t.Error("Expected last week's plan to be cleared")
	}
	if next.App.View().APIKey != "sk-test123" {
		t.Error("Expected the API key to survive the rollover")
	}
	if p, _, _ := repo.SharedPlan("42"); p != nil {
		t.Error("Expected no shared plan after rollover")
	}
}

func TestAwaitedFieldFollowsDeletes(t *testing.T) {
	t.Run("EarlierSessionDeleted", func(t *testing.T) {
		tb := newTestBot(t, nil)
		tb.say("/key sk-test123")
		tb.say("Classes Mon 9-12")
		tb.press("editmode")

		tb.press("field|0|1|title")
		tb.press("delok|0|0")
		tb.say("Revised")

		sessions := tb.session(t).App.View().Plan.Days[0].Sessions
		if len(sessions) != 2 || sessions[0].Title != "Revised" || sessions[1].Title != "C" {
			t.Errorf("Expected B renamed and C untouched, got %q %q", sessions[0].Title, sessions[1].Title)
		}
	})

	t.Run("AwaitedSessionDeleted", func(t *testing.T) {
		tb := newTestBot(t, nil)
		tb.say("/key sk-test123")
		tb.say("Classes Mon 9-12")
		tb.press("editmode")

		tb.press("field|0|1|title")
		tb.press("delok|0|1")
		tb.say("Revised")

		for _, s := range tb.session(t).App.View().Plan.Days[0].Sessions {
			if s.Title == "Revised" {
				t.Errorf("Expected no session to be renamed, got %+v", s)
			}
		}
	})
}
