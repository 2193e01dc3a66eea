// Package ui provides terminal output for the sunday CLI.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// NoColor disables colored output when true.
	NoColor = false

	// Styles
	TitleStyle   lipgloss.Style
	AccentStyle  lipgloss.Style
	HandleStyle  lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	DimStyle     lipgloss.Style
	BoldStyle    lipgloss.Style
	CodeStyle    lipgloss.Style
	LogoStyle    lipgloss.Style
)

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		NoColor = true
	}
	// Piped stderr gets plain text
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		NoColor = true
	}

	initStyles()
}

// initStyles initializes the lipgloss styles.
func initStyles() {
	if NoColor {
		TitleStyle = lipgloss.NewStyle()
		AccentStyle = lipgloss.NewStyle()
		HandleStyle = lipgloss.NewStyle()
		SuccessStyle = lipgloss.NewStyle()
		ErrorStyle = lipgloss.NewStyle()
		WarningStyle = lipgloss.NewStyle()
		DimStyle = lipgloss.NewStyle()
		BoldStyle = lipgloss.NewStyle().Bold(true)
		CodeStyle = lipgloss.NewStyle()
		LogoStyle = lipgloss.NewStyle()
		return
	}

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#e8a25c")) // Sunrise amber

	AccentStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#d98c5f")) // Terracotta

	HandleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#8fb3c9")) // Morning sky

	SuccessStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7fa37a")) // Meadow green

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#cf6a63")) // Brick red

	WarningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#d6b35a")) // Straw

	DimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#77726c")) // Warm grey

	BoldStyle = lipgloss.NewStyle().
		Bold(true)

	CodeStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("#2e2a27")).
		Foreground(lipgloss.Color("#e6dccf")).
		Padding(0, 1)

	LogoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0b567"))
}

// SetNoColor enables or disables colored output.
func SetNoColor(noColor bool) {
	NoColor = noColor
	initStyles()
}

// Title formats text as a title.
func Title(s string) string {
	return TitleStyle.Render(s)
}

// Handle formats a display handle.
func Handle(s string) string {
	return HandleStyle.Render(s)
}

// Success formats text as success message.
func Success(s string) string {
	return SuccessStyle.Render(s)
}

// Warning formats text as warning message.
func Warning(s string) string {
	return WarningStyle.Render(s)
}

// Dim formats text as dimmed.
func Dim(s string) string {
	return DimStyle.Render(s)
}

// Bold formats text as bold.
func Bold(s string) string {
	return BoldStyle.Render(s)
}

// Code formats text as inline code.
func Code(s string) string {
	return CodeStyle.Render(s)
}
