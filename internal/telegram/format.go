package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"ai-study-planner/internal/editor"
	"ai-study-planner/internal/plan"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape protects user and model text inside legacy Markdown messages.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// formatOverview renders everything but the day schedules.
func formatOverview(p *plan.Plan, editing bool) string {
	var sb strings.Builder
	if editing {
		sb.WriteString("✏️ *Edit Mode*\n")
	} else {
		sb.WriteString("✅ *Plan Ready!*\n")
	}
	sb.WriteString(fmt.Sprintf("📅 *This Week*: %s hours of focused study\n", formatHours(p.Stats.TotalHours)))

	if len(p.Urgent) > 0 {
		sb.WriteString("\n🔥 *Urgent This Week*\n")
		for _, t := range p.Urgent {
			sb.WriteString(fmt.Sprintf("• %s (due %s)\n", escape(t.Title), escape(t.Due)))
		}
	}

	if len(p.Stats.Subjects) > 0 {
		sb.WriteString("\n📊 *Study Distribution*\n")
		for _, s := range p.Stats.Subjects {
			sb.WriteString(fmt.Sprintf("• %s: %sh\n", escape(s.Name), formatHours(s.Hours)))
		}
	}

	if len(p.Tips) > 0 {
		sb.WriteString("\n💡 *Tips*\n")
		for _, t := range p.Tips {
			sb.WriteString(escape(t) + "\n")
		}
	}
	return sb.String()
}

// formatDay renders one day's sessions, numbered from 1.
func formatDay(p *plan.Plan, day int) string {
	d := p.Days[day]
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*, %s\n\n", d.Day, escape(d.Date)))
	if len(d.Sessions) == 0 {
		sb.WriteString("_Nothing planned._\n")
	}
	for i, s := range d.Sessions {
		sb.WriteString(fmt.Sprintf("%d. `%s` %s *%s* (%s)\n", i+1, s.Time, s.Icon, escape(s.Title), s.Type))
		if s.Focus != "" {
			sb.WriteString(fmt.Sprintf("    _%s_\n", escape(s.Focus)))
		}
	}
	return sb.String()
}

// formatSession renders the open session card.
func formatSession(s plan.Session) string {
	var sb strings.Builder
	sb.WriteString("✏️ *Edit Session*\n\n")
	sb.WriteString(fmt.Sprintf("*Title*: %s\n", escape(s.Title)))
	sb.WriteString(fmt.Sprintf("*Time*: `%s`\n", s.Time))
	sb.WriteString(fmt.Sprintf("*Type*: %s\n", s.Type))
	sb.WriteString(fmt.Sprintf("*Icon*: %s\n", s.Icon))
	if s.Focus != "" {
		sb.WriteString(fmt.Sprintf("*Focus*: %s\n", escape(s.Focus)))
	}
	return sb.String()
}

func fieldPrompt(f editor.Field) string {
	switch f {
	case editor.FieldTime:
		return "⏰ Send the new time as `HH:MM-HH:MM`, e.g. `09:00-10:30`."
	case editor.FieldIcon:
		return "🎨 Send a new icon, e.g. " + strings.Join(plan.SuggestedIcons[:6], " ")
	case editor.FieldFocus:
		return "🎯 Send the new focus (what to work on)."
	default:
		return "📝 Send the new " + string(f) + "."
	}
}

func dayKeyboard(editing bool) tgbotapi.InlineKeyboardMarkup {
	var row1, row2 []tgbotapi.InlineKeyboardButton
	for i := 0; i < plan.DaysPerWeek; i++ {
		btn := tgbotapi.NewInlineKeyboardButtonData(plan.Weekday(i).String()[:3], fmt.Sprintf("day|%d", i))
		if i < 4 {
			row1 = append(row1, btn)
		} else {
			row2 = append(row2, btn)
		}
	}
	var actions []tgbotapi.InlineKeyboardButton
	if editing {
		actions = tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", "save"),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Discard", "discard"),
		)
	} else {
		actions = tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", "editmode"),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(row1, row2, actions)
}

func dayEditKeyboard(p *plan.Plan, day int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range p.Days[day].Sessions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✏️ %d", i+1), fmt.Sprintf("edit|%d|%d", day, i)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 %d", i+1), fmt.Sprintf("del|%d|%d", day, i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Add Session", fmt.Sprintf("add|%d", day)),
		tgbotapi.NewInlineKeyboardButtonData("📅 Week", "week"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func sessionKeyboard(day, session int) tgbotapi.InlineKeyboardMarkup {
	fields := make([]tgbotapi.InlineKeyboardButton, 0, len(editor.Fields))
	for _, f := range editor.Fields {
		if f == editor.FieldType {
			continue
		}
		fields = append(fields, tgbotapi.NewInlineKeyboardButtonData(string(f), fmt.Sprintf("field|%d|%d|%s", day, session, f)))
	}
	var types []tgbotapi.InlineKeyboardButton
	for _, t := range plan.SessionTypes {
		types = append(types, tgbotapi.NewInlineKeyboardButtonData(string(t), fmt.Sprintf("type|%d|%d|%s", day, session, t)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		fields,
		types[:3],
		types[3:],
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("del|%d|%d", day, session)),
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", fmt.Sprintf("done|%d", day)),
		),
	)
}

func confirmDeleteKeyboard(day, session int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Yes, delete", fmt.Sprintf("delok|%d|%d", day, session)),
		tgbotapi.NewInlineKeyboardButtonData("Cancel", fmt.Sprintf("day|%d", day)),
	))
}
