// Package cli renders recommendations and chat replies in the terminal and
// drives the interactive quiz and chat loops.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/bean-scene/internal/model"
)

var (
	// PrimaryColor is the main theme color (espresso crema).
	PrimaryColor = lipgloss.Color("#C8883A")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#7FB77E") // Green
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#D9C3A5") // Latte
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5C4033")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				PaddingRight(2).
				Foreground(PrimaryColor)

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	CoffeeIcon  = "☕"
	RobotIcon   = "🤖"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the coffee icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(CoffeeIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// RenderRecommendation draws the recommendation card for a scored coffee.
func RenderRecommendation(c model.ScoredCandidate) string {
	lines := []string{BoldStyle.Render(c.Coffee.Name)}
	if c.Coffee.Description != "" {
		lines = append(lines, c.Coffee.Description)
	}
	lines = append(lines, "")
	if c.Coffee.Origin != "" {
		lines = append(lines, "Origin:  "+c.Coffee.Origin)
	}
	lines = append(lines, fmt.Sprintf("Roast:   %s (%d/6)", c.Coffee.Roast, int(c.Coffee.Roast)))
	if len(c.Coffee.Notes) > 0 {
		lines = append(lines, "Notes:   "+strings.Join(c.Coffee.NoteNames(), ", "))
	}
	lines = append(lines,
		"",
		SubtleStyle.Render(fmt.Sprintf("Match score %d (roast %d, flavor %d, style %d, priority %d)",
			c.Score, c.Breakdown.Roast, c.Breakdown.Flavor, c.Breakdown.Style, c.Breakdown.Priority)),
		InfoStyle.Render(c.Coffee.URL),
	)

	return RenderBox(CoffeeIcon+" Your coffee match", strings.Join(lines, "\n"))
}

// RenderCoffeeTable lists catalog rows one per line.
func RenderCoffeeTable(coffees []model.Coffee) string {
	if len(coffees) == 0 {
		return SubtleStyle.Render("No coffees in the catalog.")
	}

	rows := [][]string{{"ID", "NAME", "ROAST", "NOTES", "VERIFIED"}}
	for _, c := range coffees {
		verified := ""
		if c.Verified {
			verified = SuccessIcon
		}
		rows = append(rows, []string{c.ID, c.Name, c.Roast.String(), strings.Join(c.NoteNames(), ", "), verified})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for r, row := range rows {
		style := TableCellStyle
		if r == 0 {
			style = TableHeaderStyle
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = style.Width(widths[i] + 2).Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		if r < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderReply formats an assistant reply with its provenance.
func RenderReply(reply, modelName string, cached bool) string {
	source := modelName
	if cached {
		source += ", cached"
	}
	return PromptStyle.Render(RobotIcon+" ") + reply + "\n" + SubtleStyle.Render("("+source+")")
}
