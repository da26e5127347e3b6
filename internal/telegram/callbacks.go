package telegram

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/editor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var errBadCallback = errors.New("malformed callback data")

// callback is parsed inline keyboard data of the form "action|arg|arg".
type callback struct {
	action string
	args   []string
}

func parseCallback(data string) callback {
	parts := strings.Split(data, "|")
	return callback{action: parts[0], args: parts[1:]}
}

func (c callback) ints(n int) ([]int, error) {
	if len(c.args) < n {
		return nil, errBadCallback
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(c.args[i])
		if err != nil {
			return nil, errBadCallback
		}
		out[i] = v
	}
	return out, nil
}

func (b *Bot) handleCallbackQuery(q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	s, err := b.sessions.Get(chatID)
	if err != nil {
		log.Printf("Error loading session: %v", err)
		return
	}

	cb := parseCallback(q.Data)
	if err := b.dispatchCallback(chatID, msgID, s, cb); err != nil {
		log.Printf("Callback %q failed: %v", q.Data, err)
		b.replyError(chatID, err)
	}
}

func (b *Bot) dispatchCallback(chatID int64, msgID int, s *Session, cb callback) error {
	// buttons from an older message may arrive after /new
	if cb.action != "" && s.App.View().State.Page() == app.PageInput {
		if err := s.App.ResumePlan(); err != nil {
			return err
		}
	}

	switch cb.action {
	case "week":
		b.showOverview(chatID, msgID, s)
	case "day":
		a, err := cb.ints(1)
		if err != nil {
			return err
		}
		return b.showDay(chatID, msgID, s, a[0])
	case "editmode":
		if err := s.App.ToggleEdit(); err != nil && !s.App.View().State.Editing() {
			return err
		}
		b.showOverview(chatID, msgID, s)
	case "save":
		s.TakeAwaited()
		if err := s.App.Save(); err != nil {
			return err
		}
		b.showOverview(chatID, msgID, s)
		b.reply(chatID, "✅ Changes saved!")
	case "discard":
		s.TakeAwaited()
		if err := s.App.DiscardEdits(); err != nil {
			return err
		}
		b.showOverview(chatID, msgID, s)
		b.reply(chatID, "↩️ Changes discarded.")
	case "edit":
		a, err := cb.ints(2)
		if err != nil {
			return err
		}
		if err := s.App.OpenSession(a[0], a[1]); err != nil {
			return err
		}
		return b.showSession(chatID, msgID, s, a[0], a[1])
	case "del":
		a, err := cb.ints(2)
		if err != nil {
			return err
		}
		sess, err := editor.New(s.App.View().Plan).Session(a[0], a[1])
		if err != nil {
			return err
		}
		b.edit(chatID, msgID, "🗑 Delete *"+escape(sess.Title)+"* ("+sess.Time.String()+")?", confirmDeleteKeyboard(a[0], a[1]))
	case "delok":
		a, err := cb.ints(2)
		if err != nil {
			return err
		}
		if err := s.App.DeleteSession(a[0], a[1]); err != nil {
			return err
		}
		s.SessionDeleted(a[0], a[1])
		return b.showDay(chatID, msgID, s, a[0])
	case "add":
		a, err := cb.ints(1)
		if err != nil {
			return err
		}
		idx, err := s.App.AddSession(a[0])
		if err != nil {
			return err
		}
		return b.showSession(chatID, msgID, s, a[0], idx)
	case "field":
		a, err := cb.ints(2)
		if err != nil || len(cb.args) < 3 {
			return errBadCallback
		}
		f, err := editor.ParseField(cb.args[2])
		if err != nil {
			return err
		}
		if err := s.App.OpenSession(a[0], a[1]); err != nil {
			return err
		}
		s.Await(pendingField{Day: a[0], Session: a[1], Field: f})
		b.reply(chatID, fieldPrompt(f))
	case "type":
		a, err := cb.ints(2)
		if err != nil || len(cb.args) < 3 {
			return errBadCallback
		}
		if err := s.App.UpdateField(a[0], a[1], editor.FieldType, cb.args[2]); err != nil {
			return err
		}
		return b.showSession(chatID, msgID, s, a[0], a[1])
	case "done":
		a, err := cb.ints(1)
		if err != nil {
			return err
		}
		s.TakeAwaited()
		s.App.CloseSession()
		return b.showDay(chatID, msgID, s, a[0])
	default:
		return errBadCallback
	}
	return nil
}

// applyField applies a typed value to the awaited field. An invalid value
// keeps the field awaited so the user can try again.
func (b *Bot) applyField(chatID int64, s *Session, f pendingField, value string) {
	err := s.App.UpdateField(f.Day, f.Session, f.Field, value)
	if errors.Is(err, editor.ErrInvalidValue) {
		s.Await(f)
		b.reply(chatID, userMessage(err)+"\n"+fieldPrompt(f.Field))
		return
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	sess, err := editor.New(s.App.View().Plan).Session(f.Day, f.Session)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatSession(sess))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = sessionKeyboard(f.Day, f.Session)
	b.send(msg)
}

func (b *Bot) showOverview(chatID int64, msgID int, s *Session) {
	v := s.App.View()
	if v.Plan == nil {
		b.replyError(chatID, app.ErrNoPlan)
		return
	}
	b.edit(chatID, msgID, formatOverview(v.Plan, v.State.Editing())+"\nPick a day.", dayKeyboard(v.State.Editing()))
}

func (b *Bot) showDay(chatID int64, msgID int, s *Session, day int) error {
	v := s.App.View()
	if v.Plan == nil {
		return app.ErrNoPlan
	}
	if day < 0 || day >= len(v.Plan.Days) {
		return editor.ErrAddressOutOfRange
	}
	kb := dayKeyboard(false)
	if v.State.Editing() {
		kb = dayEditKeyboard(v.Plan, day)
	}
	b.edit(chatID, msgID, formatDay(v.Plan, day), kb)
	return nil
}

func (b *Bot) showSession(chatID int64, msgID int, s *Session, day, session int) error {
	sess, err := editor.New(s.App.View().Plan).Session(day, session)
	if err != nil {
		return err
	}
	b.edit(chatID, msgID, formatSession(sess), sessionKeyboard(day, session))
	return nil
}

func (b *Bot) edit(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	e := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)
	e.ParseMode = "Markdown"
	b.send(e)
}

