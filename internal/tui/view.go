package tui

import (
	"fmt"
	"strconv"
	"strings"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/plan"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	v := m.app.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render("✨ StudyFlow") + " " + mutedStyle.Render("AI-Powered Study Planner") + "\n\n")

	switch v.State.Page() {
	case app.PageInput:
		b.WriteString(headerStyle.Render("Describe your week") + "\n")
		b.WriteString(m.schedule.View() + "\n")
		b.WriteString(m.apiKey.View() + "\n")
		b.WriteString(m.footer())
		b.WriteString(helpStyle.Render("ctrl+g generate • ctrl+l example • ctrl+r open saved plan • tab switch field • esc quit"))
	case app.PageLoading:
		b.WriteString(fmt.Sprintf("%s Creating your plan... AI is analyzing your schedule\n", m.spinner.View()))
		b.WriteString(helpStyle.Render("esc cancel"))
	case app.PageResult:
		b.WriteString(m.viewport.View() + "\n")
		b.WriteString(m.footer())
		b.WriteString(helpStyle.Render(m.resultHelp(v.State)))
	}
	return b.String()
}

func (m *Model) footer() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(errText(m.err)) + "\n"
	case m.status != "":
		return okStyle.Render(m.status) + "\n"
	}
	return ""
}

func (m *Model) resultHelp(s app.PageState) string {
	switch {
	case m.form != nil:
		return "tab next field • enter apply • esc close"
	case m.confirmDelete:
		return "delete this session? y yes • any other key cancels"
	case s.Editing():
		return "←/→ day • ↑/↓ session • enter edit • a add • d delete • s save • x discard • b back"
	}
	return "←/→ day • ↑/↓ session • e edit • b new schedule • ctrl+d delete plan • q quit"
}

// refresh re-renders the plan into the viewport.
func (m *Model) refresh() {
	v := m.app.View()
	if v.Plan == nil || v.State.Page() != app.PageResult {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderPlan(v.Plan, v.State.Editing()))
}

func (m *Model) renderPlan(p *plan.Plan, editing bool) string {
	var b strings.Builder

	mode := okStyle.Render("✅ Plan Ready")
	if editing {
		mode = urgentStyle.Render("✏️ Edit Mode")
	}
	b.WriteString(fmt.Sprintf("%s  📅 %s hours of focused study\n", mode, formatHours(p.Stats.TotalHours)))

	if len(p.Urgent) > 0 {
		b.WriteString("\n" + urgentStyle.Render("🔥 Urgent This Week") + "\n")
		for _, t := range p.Urgent {
			b.WriteString(fmt.Sprintf("  • %s (due %s, %s)\n", t.Title, t.Due, t.Priority))
		}
	}

	b.WriteString("\n" + m.renderTabs(p) + "\n\n")
	b.WriteString(m.renderDay(p.Days[m.day], editing))

	if m.form != nil {
		b.WriteString("\n" + formStyle.Render(headerStyle.Render("Edit Session")+"\n"+m.form.view()) + "\n")
	}

	if len(p.Stats.Subjects) > 0 {
		b.WriteString("\n" + headerStyle.Render("📊 Study Distribution") + "\n")
		for _, s := range p.Stats.Subjects {
			b.WriteString(fmt.Sprintf("  %s %s: %sh\n", subjectStyle(s.Color).Render("■"), s.Name, formatHours(s.Hours)))
		}
	}
	if len(p.Tips) > 0 {
		b.WriteString("\n" + headerStyle.Render("💡 Tips") + "\n")
		for _, t := range p.Tips {
			b.WriteString("  " + t + "\n")
		}
	}
	return b.String()
}

func (m *Model) renderTabs(p *plan.Plan) string {
	tabs := make([]string, 0, len(p.Days))
	for i, d := range p.Days {
		label := d.Day.String()[:3] + " " + d.Date
		if i == m.day {
			tabs = append(tabs, activeDayTabStyle.Render(label))
		} else {
			tabs = append(tabs, dayTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderDay(d plan.Day, editing bool) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(d.Day.String())+", "+d.Date) + "\n")
	if len(d.Sessions) == 0 {
		b.WriteString(mutedStyle.Render("  Nothing planned.") + "\n")
	}
	for i, s := range d.Sessions {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("▸ ")
		}
		line := fmt.Sprintf("%s %s %s", s.Time, s.Icon, s.Title)
		b.WriteString(marker + typeStyle(s.Type).Render(line) + mutedStyle.Render(" ["+string(s.Type)+"]") + "\n")
		if s.Focus != "" {
			b.WriteString("      " + mutedStyle.Render(s.Focus) + "\n")
		}
	}
	if editing {
		b.WriteString(mutedStyle.Render("  + a to add a session") + "\n")
	}
	return b.String()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
