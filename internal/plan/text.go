package plan

import (
	"fmt"
	"strings"
)

// FormatText renders the plan as plain text for terminals and share links.
func FormatText(p *Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "THIS WEEK: %s hours of focused study\n", formatHours(p.Stats.TotalHours))

	if len(p.Urgent) > 0 {
		sb.WriteString("\n=== URGENT ===\n")
		for _, t := range p.Urgent {
			fmt.Fprintf(&sb, "- [%s] %s (due %s)\n", t.Priority, t.Title, t.Due)
		}
	}

	if len(p.Stats.Subjects) > 0 {
		sb.WriteString("\n=== STUDY DISTRIBUTION ===\n")
		for _, s := range p.Stats.Subjects {
			fmt.Fprintf(&sb, "- %-24s %sh\n", s.Name, formatHours(s.Hours))
		}
	}

	for _, d := range p.Days {
		fmt.Fprintf(&sb, "\n=== %s, %s ===\n", strings.ToUpper(d.Day.String()), d.Date)
		if len(d.Sessions) == 0 {
			sb.WriteString("  (nothing planned)\n")
		}
		for _, s := range d.Sessions {
			fmt.Fprintf(&sb, "  %s  %s %s [%s]\n", s.Time, s.Icon, s.Title, s.Type)
			if s.Focus != "" {
				fmt.Fprintf(&sb, "               > %s\n", s.Focus)
			}
		}
	}

	if len(p.Tips) > 0 {
		sb.WriteString("\n=== TIPS ===\n")
		for _, t := range p.Tips {
			fmt.Fprintf(&sb, "%s\n", t)
		}
	}
	return sb.String()
}

func formatHours(h float64) string {
	if h == float64(int(h)) {
		return fmt.Sprintf("%d", int(h))
	}
	return fmt.Sprintf("%.1f", h)
}
