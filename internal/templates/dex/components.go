package dex

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/dex-web/internal/content"
	"finitefield.org/dex-web/internal/templates/helpers"
	"finitefield.org/dex-web/internal/templates/layouts"
)

// WidgetElementID is the DOM id every fragment swap targets.
const WidgetElementID = "dex-widget"

const swapTarget = "#" + WidgetElementID

// Index renders the full page.
func Index(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		renderHeader(h, data.Summary, data.IntroHTML)
		if err := h.Err(); err != nil {
			return err
		}
		return Widget(data.Widget).Render(ctx, w)
	})
	return layouts.Base(data.Title, data.Lang, body)
}

// Launch renders the page that mounts a widget. htmx submits the form as soon
// as the page loads; without scripts the visitor presses the button.
func Launch(data LaunchData) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		renderHeader(h, data.Summary, data.IntroHTML)
		h.Open("section",
			"id", WidgetElementID,
			"class", "pokemon-container",
			"data-mode", "idle",
		)
		h.Open("form",
			"class", "dex-launch",
			"method", "post",
			"action", data.Action,
			"hx-post", data.Action,
			"hx-trigger", "load, submit",
		)
		h.Element("button", data.Labels.Start, "type", "submit", "class", "buscador-iniciar")
		h.Close("form")
		h.Close("section")
		return h.Err()
	})
	return layouts.Base(data.Title, data.Lang, body)
}

func renderHeader(h *helpers.HTML, summary, introHTML string) {
	h.Raw(`<header class="page-header">`)
	if summary != "" {
		h.Element("p", summary, "class", "page-summary")
	}
	if introHTML != "" {
		h.Raw(`<div class="page-intro">`)
		h.Raw(introHTML)
		h.Raw(`</div>`)
	}
	h.Raw(`</header>`)
}

// Widget renders the swappable fragment in one of its three modes.
func Widget(data WidgetData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		switch {
		case data.Loading():
			h.Open("section",
				"id", WidgetElementID,
				"class", "pokemon-container",
				"data-mode", data.Mode,
				"hx-get", data.PollURL,
				"hx-trigger", "load delay:500ms",
				"hx-swap", "outerHTML",
			)
			h.Text(data.Labels.Loading)
			h.Close("section")
		case data.Failed():
			h.Open("section",
				"id", WidgetElementID,
				"class", "pokemon-container error",
				"data-mode", data.Mode,
			)
			h.Text(data.Labels.ErrorPrefix + " " + data.Error)
			h.Close("section")
		default:
			renderReady(h, data)
		}
		return h.Err()
	})
}

func renderReady(h *helpers.HTML, data WidgetData) {
	h.Open("section",
		"id", WidgetElementID,
		"class", "pokemon-container",
		"data-mode", data.Mode,
		"data-widget-id", data.ID,
	)
	h.Element("h2", data.Heading)
	renderFilter(h, data.Filter, data.Labels)

	h.Raw(`<div class="pokemon-list">`)
	if len(data.Cards) == 0 {
		h.Element("p", data.Labels.Empty, "class", "pokemon-empty")
	}
	for _, card := range data.Cards {
		renderCard(h, card, data.Labels)
	}
	h.Raw(`</div>`)
	h.Close("section")
}

func renderFilter(h *helpers.HTML, f FilterData, labels content.Labels) {
	h.Raw(`<div class="search-container">`)

	h.Open("form",
		"class", "buscador-form",
		"method", "post",
		"action", f.Action,
		"hx-post", f.Action,
		"hx-trigger", "change",
		"hx-target", swapTarget,
		"hx-swap", "outerHTML",
	)
	h.Open("select", "name", "category", "class", "buscador-select")
	for _, opt := range f.Options {
		if opt.Selected {
			h.Element("option", opt.Label, "value", opt.Code, "selected", "selected")
			continue
		}
		h.Element("option", opt.Label, "value", opt.Code)
	}
	h.Close("select")
	h.Raw(`<noscript><button type="submit">OK</button></noscript>`)
	h.Close("form")

	h.Open("form",
		"method", "post",
		"action", f.ClearAction,
		"hx-post", f.ClearAction,
		"hx-target", swapTarget,
		"hx-swap", "outerHTML",
	)
	h.Element("button", labels.Clear, "type", "submit", "class", "buscador-limpiar", "title", labels.ClearTitle)
	h.Close("form")

	h.Raw(`</div>`)
}

func renderCard(h *helpers.HTML, card CardData, labels content.Labels) {
	state := "collapsed"
	if card.Expanded {
		state = "expanded"
	}
	h.Open("article",
		"class", "pokemon-card",
		"data-creature-id", strconv.Itoa(card.ID),
		"data-state", state,
		"hx-post", card.ToggleURL,
		"hx-target", swapTarget,
		"hx-swap", "outerHTML",
	)
	h.Element("h3", card.Name)
	if card.HasImage() {
		h.Raw("<img")
		h.URLAttr("src", card.ImageURL)
		h.Attr("alt", card.ImageAlt)
		h.Raw(">")
	} else {
		h.Element("p", labels.NoImage, "class", "pokemon-noimage")
	}

	h.Raw(`<p class="pokemon-types">`)
	h.Element("strong", labels.Types)
	h.Text(" " + card.Types)
	h.Raw(`</p>`)

	if card.Detail != nil {
		h.Raw(`<div class="pokemon-detalles">`)
		detailRow(h, "pokemon-height", labels.Height, card.Detail.Height)
		detailRow(h, "pokemon-weight", labels.Weight, card.Detail.Weight)
		detailRow(h, "pokemon-abilities", labels.Abilities, card.Detail.Abilities)
		detailRow(h, "pokemon-experience", labels.BaseExperience, card.Detail.BaseExperience)
		h.Element("small", card.Hint, "class", "pokemon-hint")
		h.Raw(`</div>`)
	} else {
		h.Element("small", card.Hint, "class", "pokemon-hint")
	}

	h.Open("form", "method", "post", "action", card.ToggleURL, "class", "pokemon-card-fallback")
	h.Raw(`<noscript><button type="submit">`)
	h.Text(card.Hint)
	h.Raw(`</button></noscript>`)
	h.Close("form")

	h.Close("article")
}

func detailRow(h *helpers.HTML, class, label, value string) {
	h.Open("p", "class", class)
	h.Element("strong", label)
	h.Text(" " + value)
	h.Close("p")
}
