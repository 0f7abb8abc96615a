package boardview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// cardHeight is the number of lines each card takes.
const cardHeight = 2

// maxTags is how many tags fit on a card before the rest are elided.
const maxTags = 2

type cardState int

const (
	cardNormal cardState = iota
	cardSelected
	cardGrabbed
)

// renderCard draws one task as a two-line card of the given width.
func renderCard(t model.Task, width int, state cardState, now time.Time) string {
	inner := max(width-2, 4)

	title := truncate(t.Name, inner-3)
	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))
	line1 := fmt.Sprintf("%s %s", priBadge, title)

	var meta []string
	if t.DueDate != nil {
		if t.IsOverdue(now) {
			meta = append(meta, theme.OverdueStyle.Render("OVERDUE "+t.DueDate.Format("Jan 02")))
		} else {
			meta = append(meta, theme.DueDateStyle.Render(dueLabel(*t.DueDate, now)))
		}
	}
	if len(t.Tags) > 0 {
		display := t.Tags
		if len(display) > maxTags {
			display = append(append([]string(nil), display[:maxTags]...), "…")
		}
		meta = append(meta, theme.TagStyle.Render("#"+strings.Join(display, " #")))
	}
	line2 := "  " + strings.Join(meta, " ")
	if len(meta) == 0 {
		line2 = "  " + theme.DimmedStyle.Render(truncate(t.Description, inner-2))
	}

	card := lipgloss.JoinVertical(lipgloss.Left, line1, line2)
	if t.Status == model.StatusDone && state == cardNormal {
		card = theme.DimmedStyle.Render(card)
	}

	switch state {
	case cardGrabbed:
		return theme.GrabbedCardStyle.MaxWidth(width).Render(card)
	case cardSelected:
		return theme.SelectedCardStyle.MaxWidth(width).Render(card)
	default:
		return theme.CardStyle.MaxWidth(width).Render(card)
	}
}

// dueLabel returns a human-friendly label for a due day relative to now.
func dueLabel(due, now time.Time) string {
	days := int(model.Date(due).Sub(model.Date(now)).Hours() / 24)
	switch {
	case days < 0:
		return "due " + due.Format("Jan 02")
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days < 7:
		return fmt.Sprintf("due in %dd", days)
	default:
		return "due " + due.Format("Jan 02")
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "H"
	case model.PriorityMedium:
		return "M"
	case model.PriorityLow:
		return "L"
	default:
		return "?"
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
