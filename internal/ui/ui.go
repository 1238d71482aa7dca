package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	Green     = lipgloss.Color("42")
	Amber     = lipgloss.Color("214")
	Blue      = lipgloss.Color("39")
	Red       = lipgloss.Color("196")
	White     = lipgloss.Color("255")
	LightGray = lipgloss.Color("245")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(Blue)
	debugStyle   = lipgloss.NewStyle().Foreground(LightGray)
	warnStyle    = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(White).Bold(true).Underline(true)
)

func Success(format string, a ...any) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, a...)))
}

func Info(format string, a ...any) {
	fmt.Println(infoStyle.Render(fmt.Sprintf(format, a...)))
}

func Debug(format string, a ...any) {
	fmt.Println(debugStyle.Render(fmt.Sprintf(format, a...)))
}

func Warn(format string, a ...any) {
	fmt.Println(warnStyle.Render(fmt.Sprintf(format, a...)))
}

func Error(format string, a ...any) {
	fmt.Println(errorStyle.Render(fmt.Sprintf(format, a...)))
}

// Section prints a titled block of lines, used by status-style commands.
func Section(title string, textLines []string) {
	fmt.Println(titleStyle.Render(title))
	fmt.Println(strings.Join(textLines, "\n"))
}

// Table prints rows with padded columns and a styled header.
func Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := utf8.RuneCountInString(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(White).Bold(true)
	var b strings.Builder
	for i, h := range headers {
		b.WriteString(pad(h, widths[i]))
		if i < len(headers)-1 {
			b.WriteString("  ")
		}
	}
	fmt.Println(headerStyle.Render(b.String()))

	for _, row := range rows {
		b.Reset()
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			b.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
		fmt.Println(b.String())
	}
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// PrefixedUI mirrors the package-level print functions but prepends a fixed
// prefix, so concurrent service output stays attributable.
type PrefixedUI struct {
	Prefix string
}

func (p *PrefixedUI) Success(format string, a ...any) {
	fmt.Println(p.Prefix + successStyle.Render(fmt.Sprintf(format, a...)))
}

func (p *PrefixedUI) Info(format string, a ...any) {
	fmt.Println(p.Prefix + infoStyle.Render(fmt.Sprintf(format, a...)))
}

func (p *PrefixedUI) Warn(format string, a ...any) {
	fmt.Println(p.Prefix + warnStyle.Render(fmt.Sprintf(format, a...)))
}

func (p *PrefixedUI) Error(format string, a ...any) {
	fmt.Println(p.Prefix + errorStyle.Render(fmt.Sprintf(format, a...)))
}
