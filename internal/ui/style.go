package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"animeku/internal/media"
)

var (
	accent  = lipgloss.Color("#cba6f7")
	success = lipgloss.Color("#a6e3a1")
	warning = lipgloss.Color("#f9e2af")
	failure = lipgloss.Color("#f38ba8")
	faint   = lipgloss.Color("#6c7086")

	infoStyle    = lipgloss.NewStyle().Foreground(accent)
	successStyle = lipgloss.NewStyle().Foreground(success)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(faint)
	bannerStyle  = lipgloss.NewStyle().Foreground(success).Bold(true)
)

func Info(s string) string    { return infoStyle.Render(s) }
func Success(s string) string { return successStyle.Render(s) }
func Warn(s string) string    { return warnStyle.Render(s) }
func Error(s string) string   { return errorStyle.Render(s) }

// Banner renders the program name and version.
func Banner(version string) string {
	return bannerStyle.Render("animeku") + " " + labelStyle.Render("v"+version)
}

// MetaBlock renders meta as an aligned label/value table followed by the
// episode count.
func MetaBlock(meta media.Meta, episodes int) string {
	width := lo.Max(lo.Map(meta.Data, func(f media.Field, _ int) int {
		return lipgloss.Width(f.Label)
	}))

	var b strings.Builder
	for _, f := range meta.Data {
		label := labelStyle.Width(width + 2).Render(f.Label + ":")
		fmt.Fprintf(&b, "%s %s\n", label, f.Value)
	}
	fmt.Fprintf(&b, "%s\n", Info(fmt.Sprintf("%d episode(s) available", episodes)))
	return b.String()
}
