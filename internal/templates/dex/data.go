package dex

import (
	"strconv"
	"strings"

	"finitefield.org/dex-web/internal/content"
	"finitefield.org/dex-web/internal/dex"
	"finitefield.org/dex-web/internal/templates/helpers"
	"finitefield.org/dex-web/internal/widget"
)

const missingValue = "—"

// PageData drives the full widget page.
type PageData struct {
	Title     string
	Lang      string
	Summary   string
	IntroHTML string
	Widget    WidgetData
}

// LaunchData drives the page that mounts a widget on request.
type LaunchData struct {
	Title     string
	Lang      string
	Summary   string
	IntroHTML string
	Action    string
	Labels    content.Labels
}

// BuildLaunchData assembles the launch page from the page copy.
func BuildLaunchData(page content.Page) LaunchData {
	return LaunchData{
		Title:     page.Title,
		Lang:      page.Lang,
		Summary:   page.Summary,
		IntroHTML: page.BodyHTML,
		Action:    helpers.MountPath(),
		Labels:    page.Labels,
	}
}

// WidgetData is the swappable widget fragment.
type WidgetData struct {
	ID      string
	Mode    string
	Heading string
	Labels  content.Labels
	Error   string
	PollURL string
	Filter  FilterData
	Cards   []CardData
}

// Loading reports whether the loading indicator should render.
func (d WidgetData) Loading() bool { return d.Mode == widget.PhaseLoading.String() }

// Failed reports whether only the error message should render.
func (d WidgetData) Failed() bool { return d.Mode == widget.PhaseError.String() }

// FilterData renders the category selector and clear button.
type FilterData struct {
	Action      string
	ClearAction string
	Selected    string
	Options     []CategoryOption
}

// CategoryOption is one <option> of the selector.
type CategoryOption struct {
	Code     string
	Label    string
	Selected bool
}

// CardData renders one creature card.
type CardData struct {
	ID        int
	Name      string
	ImageURL  string
	ImageAlt  string
	Types     string
	Expanded  bool
	ToggleURL string
	Hint      string
	Detail    *DetailData
}

// HasImage reports whether the card shows a sprite.
func (c CardData) HasImage() bool { return c.ImageURL != "" }

// DetailData is the expanded section of a card.
type DetailData struct {
	Height         string
	Weight         string
	Abilities      string
	BaseExperience string
}

// BuildPageData assembles the full page for a widget.
func BuildPageData(page content.Page, widgetID string, state widget.ViewState) PageData {
	return PageData{
		Title:     page.Title,
		Lang:      page.Lang,
		Summary:   page.Summary,
		IntroHTML: page.BodyHTML,
		Widget:    BuildWidgetData(widgetID, page.Title, state, page.Labels),
	}
}

// BuildWidgetData maps view state to the fragment model.
func BuildWidgetData(widgetID, heading string, state widget.ViewState, labels content.Labels) WidgetData {
	data := WidgetData{
		ID:      widgetID,
		Mode:    state.Phase().String(),
		Heading: heading,
		Labels:  labels,
		PollURL: helpers.WidgetPath(widgetID),
	}

	switch state.Phase() {
	case widget.PhaseLoading:
		return data
	case widget.PhaseError:
		data.Error = state.LoadError
		return data
	}

	data.Filter = buildFilter(widgetID, state.SelectedCategory, labels)
	visible := state.Visible()
	data.Cards = make([]CardData, 0, len(visible))
	for _, c := range visible {
		data.Cards = append(data.Cards, BuildCard(widgetID, c, state.IsExpanded(c.ID), labels))
	}
	return data
}

func buildFilter(widgetID, selected string, labels content.Labels) FilterData {
	filter := FilterData{
		Action:      helpers.CategoryPath(widgetID),
		ClearAction: helpers.ClearPath(widgetID),
		Selected:    selected,
		Options:     make([]CategoryOption, 0, len(dex.Categories)+1),
	}
	filter.Options = append(filter.Options, CategoryOption{Code: "", Label: labels.AllTypes, Selected: selected == ""})
	for _, c := range dex.Categories {
		filter.Options = append(filter.Options, CategoryOption{
			Code:     c.Code,
			Label:    c.Label,
			Selected: strings.EqualFold(c.Code, selected),
		})
	}
	return filter
}

// BuildCard maps a creature and its expansion flag to a card.
func BuildCard(widgetID string, c dex.Creature, expanded bool, labels content.Labels) CardData {
	card := CardData{
		ID:        c.ID,
		Name:      helpers.Capitalize(c.DisplayName),
		ImageURL:  strings.TrimSpace(c.ImageURL),
		ImageAlt:  c.DisplayName,
		Types:     TypeLabels(c.Categories, labels),
		Expanded:  expanded,
		ToggleURL: helpers.TogglePath(widgetID, c.ID),
		Hint:      labels.ShowHint,
	}
	if !expanded {
		return card
	}

	card.Hint = labels.HideHint
	card.Detail = &DetailData{
		Height:         helpers.Tenths(c.HeightUnits) + " m",
		Weight:         helpers.Tenths(c.WeightUnits) + " kg",
		Abilities:      helpers.JoinCapitalized(c.Abilities),
		BaseExperience: missingValue,
	}
	if c.BaseExperience != nil {
		card.Detail.BaseExperience = strconv.Itoa(*c.BaseExperience)
	}
	return card
}

// TypeLabels translates category codes. Unknown codes are capitalized as-is.
func TypeLabels(categories []string, labels content.Labels) string {
	if len(categories) == 0 {
		return labels.UnknownType
	}
	out := make([]string, 0, len(categories))
	for _, code := range categories {
		if label, ok := dex.LookupCategory(code); ok {
			out = append(out, label)
			continue
		}
		out = append(out, helpers.Capitalize(code))
	}
	return strings.Join(out, ", ")
}
