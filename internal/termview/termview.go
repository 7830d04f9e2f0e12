// Package termview renders creature cards for a terminal.
package termview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"finitefield.org/dex-web/internal/content"
	dextpl "finitefield.org/dex-web/internal/templates/dex"
)

const (
	defaultColumns = 3
	cardWidth      = 34
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e3350d")).MarginBottom(1)
	cardStyle    = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ca3af")).
			Padding(0, 1).
			Width(cardWidth)
	nameStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e3350d"))
)

// Options controls the layout.
type Options struct {
	Heading string
	Columns int
}

// Render lays the cards out in a grid. An empty list renders the empty-state text.
func Render(cards []dextpl.CardData, labels content.Labels, opts Options) string {
	columns := opts.Columns
	if columns <= 0 {
		columns = defaultColumns
	}

	var sections []string
	if opts.Heading != "" {
		sections = append(sections, headingStyle.Render(opts.Heading))
	}
	if len(cards) == 0 {
		sections = append(sections, hintStyle.Render(labels.Empty))
		return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
	}

	for start := 0; start < len(cards); start += columns {
		end := min(start+columns, len(cards))
		row := make([]string, 0, end-start)
		for _, card := range cards[start:end] {
			row = append(row, Card(card, labels))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// Card renders one bordered card.
func Card(card dextpl.CardData, labels content.Labels) string {
	lines := []string{nameStyle.Render(card.Name)}
	if card.HasImage() {
		lines = append(lines, hintStyle.Render(card.ImageURL))
	} else {
		lines = append(lines, hintStyle.Render(labels.NoImage))
	}
	lines = append(lines, field(labels.Types, card.Types))
	if card.Detail != nil {
		lines = append(lines,
			field(labels.Height, card.Detail.Height),
			field(labels.Weight, card.Detail.Weight),
			field(labels.Abilities, card.Detail.Abilities),
			field(labels.BaseExperience, card.Detail.BaseExperience),
		)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// Error renders the load failure line.
func Error(labels content.Labels, msg string) string {
	return errorStyle.Render(labels.ErrorPrefix+" "+msg) + "\n"
}

func field(label, value string) string {
	return labelStyle.Render(label) + " " + value
}
