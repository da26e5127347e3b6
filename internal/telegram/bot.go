package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/config"
	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/share"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ShareTTL is how long a share link stays valid.
const ShareTTL = 7 * 24 * time.Hour

// Sender is the part of the Telegram API the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ScheduleFetcher imports schedule text from a URL.
type ScheduleFetcher interface {
	FetchScheduleText(ctx context.Context, url string) (string, error)
}

// UsageReporter reads recorded generation usage.
type UsageReporter interface {
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// Deps are the collaborators of the bot.
type Deps struct {
	Sessions *SessionRepository
	Clipper  ScheduleFetcher
	Usage    UsageReporter
	Signer   *share.Signer
}

// Bot wraps the Telegram API and the per-chat planning sessions.
type Bot struct {
	api      Sender
	cfg      *config.Config
	sessions *SessionRepository
	clipper  ScheduleFetcher
	usage    UsageReporter
	signer   *share.Signer
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, deps Deps) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	if webhookURL := cfg.TelegramWebhookURL; webhookURL != "" {
		wh, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	return newBot(bot, cfg, deps), nil
}

func newBot(api Sender, cfg *config.Config, deps Deps) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		sessions: deps.Sessions,
		clipper:  deps.Clipper,
		usage:    deps.Usage,
		signer:   deps.Signer,
	}
}

// HandleWebhook receives updates pushed by Telegram.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	go b.HandleUpdate(update)
}

// HandleUpdate dispatches one update. It blocks until the update is handled.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.Message == nil || q.Message.Chat == nil || !b.allowed(q.From) {
			return
		}
		b.handleCallbackQuery(q)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil || !b.allowed(msg.From) {
			return
		}
		b.processMessage(msg)
	}
}

func (b *Bot) allowed(u *tgbotapi.User) bool {
	if b.cfg.IsAllowed(u.ID) {
		return true
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", u.ID, u.UserName)
	return false
}

func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	s, err := b.sessions.Get(chatID)
	if err != nil {
		log.Printf("Error loading session: %v", err)
		b.reply(chatID, "❌ Could not load your planner. Please try again later.")
		return
	}

	cmd, args := parseCommand(msg.Text)
	switch cmd {
	case "/start", "/help":
		b.handleStart(chatID, s)
	case "/key":
		b.handleKey(msg, s, args)
	case "/example":
		s.App.LoadExample()
		b.generate(chatID, s)
	case "/plan":
		b.handlePlan(chatID, s)
	case "/new":
		b.handleNew(chatID, s)
	case "/edit":
		b.handleEditMode(chatID, s)
	case "/save":
		b.handleSave(chatID, s)
	case "/discard":
		b.handleDiscard(chatID, s)
	case "/reset":
		b.handleReset(chatID, s)
	case "/share":
		b.handleShare(chatID, s)
	case "/metrics":
		b.handleMetricsRequest(msg)
	case "":
		b.handleText(msg, s)
	default:
		b.reply(chatID, "🤔 Unknown command. Send /help for the list of commands.")
	}
}

func (b *Bot) handleStart(chatID int64, s *Session) {
	var sb strings.Builder
	sb.WriteString("✨ *StudyFlow* - AI-Powered Study Planner\n\n")
	sb.WriteString("Describe your week (classes, work shifts, commute, deadlines, exams, energy levels) and I'll plan every hour of it.\n\n")
	sb.WriteString("*Commands*\n")
	sb.WriteString("/key `<api key>` - set your API key\n")
	sb.WriteString("/example - plan the example week\n")
	sb.WriteString("/plan - show this week's plan\n")
	sb.WriteString("/new - describe a new week\n")
	sb.WriteString("/edit, /save, /discard - edit the plan\n")
	sb.WriteString("/share - get a read-only link\n")
	sb.WriteString("/reset - delete this week's plan\n\n")
	sb.WriteString("You can also send a link to your timetable page.")
	if s.App.View().APIKey == "" {
		sb.WriteString("\n\n🔑 Start by setting your API key with /key.")
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleKey(msg *tgbotapi.Message, s *Session, key string) {
	// the key should not linger in the chat history
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		log.Printf("Failed to delete key message: %v", err)
	}
	if key == "" {
		b.reply(msg.Chat.ID, "🔑 Usage: /key `<your api key>`")
		return
	}
	if err := s.App.SetAPIKey(key); err != nil {
		log.Printf("Error saving api key: %v", err)
		b.reply(msg.Chat.ID, "❌ Could not save your key.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("🔑 Key saved (%s). Now send me your schedule.", maskKey(key)))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-4:]
}

func (b *Bot) handleText(msg *tgbotapi.Message, s *Session) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if f, ok := s.TakeAwaited(); ok {
		b.applyField(chatID, s, f, text)
		return
	}

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClipperRequest(chatID, s, text)
		return
	}

	s.App.SetInput(text)
	b.generate(chatID, s)
}

func (b *Bot) handleClipperRequest(chatID int64, s *Session, url string) {
	if b.clipper == nil {
		b.reply(chatID, "❌ Importing from links is not available.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := b.clipper.FetchScheduleText(ctx, url)
	if err != nil {
		log.Printf("Error importing schedule from %s: %v", url, err)
		b.reply(chatID, "❌ *Error importing schedule:*\n```\n"+strings.ReplaceAll(err.Error(), "`", "'")+"\n```")
		return
	}
	s.App.SetInput(text)
	b.generate(chatID, s)
}

// generate runs a generation for the chat and reports the outcome in place
// of a status message.
func (b *Bot) generate(chatID int64, s *Session) {
	v := s.App.View()
	if v.State.Editing() {
		b.reply(chatID, "✏️ You are editing your plan. Finish with /save or /discard first.")
		return
	}
	if v.State.Page() == app.PageResult {
		if err := s.App.GoToInput(); err != nil {
			b.replyError(chatID, err)
			return
		}
	}

	req, err := s.App.BeginGeneration()
	if errors.Is(err, app.ErrRequestInFlight) {
		b.reply(chatID, "⏳ Your plan is still being created, hang on.")
		return
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	status := tgbotapi.NewMessage(chatID, "⏳ *Creating Your Plan*\n_AI is analyzing your schedule..._")
	status.ParseMode = "Markdown"
	sent, sendErr := b.api.Send(status)

	timeout := b.cfg.Timeout + 30*time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, genErr := s.App.Execute(ctx, req)
	if err := s.App.CompleteGeneration(req, res, genErr); err != nil {
		if planner.KindOf(err) == planner.KindUnknown {
			b.sendAdminAlert(fmt.Sprintf("Generation failed for chat %d: %v", chatID, err))
		}
		b.replaceStatus(chatID, sent.MessageID, sendErr == nil, userMessage(err), nil)
		return
	}

	v = s.App.View()
	kb := dayKeyboard(false)
	b.replaceStatus(chatID, sent.MessageID, sendErr == nil, formatOverview(v.Plan, false)+"\nPick a day to see its schedule.", &kb)
}

func (b *Bot) replaceStatus(chatID int64, messageID int, edit bool, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if !edit {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = "Markdown"
		if kb != nil {
			msg.ReplyMarkup = *kb
		}
		b.send(msg)
		return
	}
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = "Markdown"
	e.ReplyMarkup = kb
	b.send(e)
}

// userMessage turns an error into chat text.
func userMessage(err error) string {
	var genErr *planner.GenerationError
	switch {
	case errors.As(err, &genErr):
		return "❌ " + escape(genErr.Remediation())
	case errors.Is(err, app.ErrIllegalTransition):
		return "🤔 That's not possible right now. Send /plan to see where you are."
	case errors.Is(err, app.ErrNoPlan):
		return "📭 No plan for this week yet. Send me your schedule or try /example."
	case errors.Is(err, editor.ErrInvalidValue):
		return "⚠️ " + escape(err.Error())
	case errors.Is(err, editor.ErrAddressOutOfRange):
		return "⚠️ That session no longer exists."
	default:
		return "❌ Something went wrong: " + escape(err.Error())
	}
}

func (b *Bot) handlePlan(chatID int64, s *Session) {
	v := s.App.View()
	if v.State.Page() == app.PageInput {
		if err := s.App.ResumePlan(); err != nil {
			b.replyError(chatID, err)
			return
		}
		v = s.App.View()
	}
	if v.Plan == nil {
		b.replyError(chatID, app.ErrNoPlan)
		return
	}
	b.sendOverview(chatID, s)
}

func (b *Bot) sendOverview(chatID int64, s *Session) {
	v := s.App.View()
	msg := tgbotapi.NewMessage(chatID, formatOverview(v.Plan, v.State.Editing())+"\nPick a day.")
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = dayKeyboard(v.State.Editing())
	b.send(msg)
}

func (b *Bot) handleNew(chatID int64, s *Session) {
	if s.App.View().State.Page() == app.PageResult {
		if err := s.App.GoToInput(); err != nil {
			b.replyError(chatID, err)
			return
		}
	}
	b.reply(chatID, "📝 Describe your week: classes and times, work shifts, commute, deadlines, exam dates, energy levels.\n\nYour current plan is kept until a new one is created. /plan shows it again.")
}

func (b *Bot) handleEditMode(chatID int64, s *Session) {
	if s.App.View().State.Page() == app.PageInput {
		if err := s.App.ResumePlan(); err != nil {
			b.replyError(chatID, err)
			return
		}
	}
	if err := s.App.ToggleEdit(); err != nil && !s.App.View().State.Editing() {
		b.replyError(chatID, err)
		return
	}
	b.sendOverview(chatID, s)
}

func (b *Bot) handleSave(chatID int64, s *Session) {
	s.TakeAwaited()
	if err := s.App.Save(); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, "✅ Changes saved!")
}

func (b *Bot) handleDiscard(chatID int64, s *Session) {
	s.TakeAwaited()
	if err := s.App.DiscardEdits(); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, "↩️ Changes discarded.")
}

func (b *Bot) handleReset(chatID int64, s *Session) {
	s.TakeAwaited()
	if err := s.App.DiscardPlan(); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, "🗑 This week's plan was deleted. Your API key is kept.")
}

func (b *Bot) handleShare(chatID int64, s *Session) {
	if b.signer == nil || b.cfg.PublicURL == "" {
		b.reply(chatID, "❌ Sharing is not configured.")
		return
	}
	if !s.App.HasPlan() {
		b.replyError(chatID, app.ErrNoPlan)
		return
	}
	token, err := b.signer.Issue(strconv.FormatInt(chatID, 10), s.WeekKey, ShareTTL)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	link := strings.TrimRight(b.cfg.PublicURL, "/") + "/share/" + token
	msg := tgbotapi.NewMessage(chatID, "🔗 Read-only link to your saved plan (valid 7 days):\n"+link)
	b.send(msg)
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID || b.cfg.AdminTelegramID == 0 {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	if b.usage == nil {
		b.reply(chatID, "❌ Metrics are not enabled.")
		return
	}
	usage, err := b.usage.GetDailyUsage(7)
	if err != nil {
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DataDir)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Plan Generations*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d runs, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.reply(chatID, sb.String())
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.cfg.AdminTelegramID, "🚨 *Admin Alert*\n"+escape(text))
	msg.ParseMode = "Markdown"
	b.send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.send(msg)
}

func (b *Bot) replyError(chatID int64, err error) {
	b.reply(chatID, userMessage(err))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Failed to send telegram message: %v", err)
	}
}
