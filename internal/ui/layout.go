package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// NoticeKind selects how a status bar notice is styled.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	// NoticeToast confirms a completed action.
	NoticeToast
	// NoticeWarning reports a problem that did not block the user.
	NoticeWarning
)

// Notice is a short message shown at the right of the status bar.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar. It never goes below zero.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the top bar with the board title on the left and a
// summary (task counts, active search) on the right.
func (l Layout) RenderHeader(title string, summary string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	summaryRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(summary)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		fill(theme.HeaderStyle, l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(summaryRendered)),
		summaryRendered,
	)
}

// RenderStatusBar renders key hints on the left and, when set, the notice on
// the right.
func (l Layout) RenderStatusBar(hints string, notice Notice) string {
	rendered := theme.StatusBarStyle.Render(hints)

	noticeRendered := ""
	switch notice.Kind {
	case NoticeToast:
		noticeRendered = theme.ToastStyle.Render(notice.Text)
	case NoticeWarning:
		noticeRendered = theme.NoticeStyle.Render(notice.Text)
	}

	gap := l.Width - lipgloss.Width(rendered) - lipgloss.Width(noticeRendered)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		rendered,
		fill(theme.StatusBarStyle, gap),
		noticeRendered,
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// fill renders width blank cells with style's background.
func fill(style lipgloss.Style, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(style.GetBackground()).
		Render("")
}
