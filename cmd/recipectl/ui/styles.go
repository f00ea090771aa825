package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// PrintTitle prints a styled heading.
func PrintTitle(s string) {
	fmt.Println(titleStyle.Render(s))
}

// PrintSuccess prints a styled success line.
func PrintSuccess(s string) {
	fmt.Println(successStyle.Render(s))
}

// PrintInfo prints a dimmed detail line.
func PrintInfo(s string) {
	fmt.Println(subtleStyle.Render("  " + s))
}

// PrintError prints a styled error message.
func PrintError(s string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+s))
}
