package chat

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1890ff"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8c8c8c"))
	userStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52c41a"))
	personaStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#eb2f96"))
	failedStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#bfbfbf"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fa8c16"))
	sendActive    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1890ff"))
	sendMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("#dddddd"))
	tagBaseStyle  = lipgloss.NewStyle().Padding(0, 1)
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1890ff"))
	defaultTagHex = "#8c8c8c"
)

// tagColors maps the trait vocabulary's color names to terminal colors.
var tagColors = map[string]string{
	"gold":     "#faad14",
	"lime":     "#a0d911",
	"green":    "#52c41a",
	"cyan":     "#13c2c2",
	"blue":     "#1677ff",
	"orange":   "#fa8c16",
	"purple":   "#722ed1",
	"red":      "#f5222d",
	"volcano":  "#fa541c",
	"magenta":  "#eb2f96",
	"geekblue": "#2f54eb",
	"brown":    "#8b572a",
}

func tagStyle(color string) lipgloss.Style {
	hex, ok := tagColors[color]
	if !ok {
		hex = defaultTagHex
	}
	return tagBaseStyle.Foreground(lipgloss.Color(hex))
}
