package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#E8A87C")
	okColor      = lipgloss.Color("#85DCB0")
	cautionColor = lipgloss.Color("#F6AE2D")
	failColor    = lipgloss.Color("#E85D75")
	ruleColor    = lipgloss.Color("#6B7280")
	brightColor  = lipgloss.Color("#F3F4F6")
	faintColor   = lipgloss.Color("#9CA3AF")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)
	taglineStyle = lipgloss.NewStyle().Foreground(faintColor).Italic(true)
	faintStyle   = lipgloss.NewStyle().Foreground(faintColor)
	phaseStyle   = lipgloss.NewStyle().Bold(true).Foreground(okColor).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(ruleColor).MarginTop(1).MarginBottom(1)

	pathStyle    = lipgloss.NewStyle().Foreground(brightColor)
	counterStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(okColor).Bold(true)
	cautionStyle = lipgloss.NewStyle().Foreground(cautionColor)
	failStyle    = lipgloss.NewStyle().Foreground(failColor).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(faintColor).Width(20)
	valueStyle   = lipgloss.NewStyle().Foreground(brightColor).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(accentColor)
	keysStyle    = lipgloss.NewStyle().Foreground(ruleColor).Italic(true).MarginTop(2)

	// The border color tells a dry run notice from an error.
	noticeBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(1, 2).MarginTop(1)
	errorBoxStyle  = noticeBoxStyle.BorderForeground(failColor)

	iconCamera  = "📷"
	iconFolder  = "📁"
	iconArrow   = "→"
	iconOK      = "✓"
	iconFail    = "✗"
	iconWarning = "⚠"
	iconSkipped = "○"
)
