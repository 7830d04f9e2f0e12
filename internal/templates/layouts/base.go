package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/dex-web/internal/templates/helpers"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.3"

// Base wraps body in the HTML document shell.
func Base(title, lang string, body templ.Component) templ.Component {
	if lang == "" {
		lang = "es"
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw("<!DOCTYPE html>")
		h.Open("html", "lang", lang)
		h.Raw("<head>")
		h.Raw(`<meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Element("title", title)
		h.Raw(`<link rel="stylesheet" href="/public/static/dex.css">`)
		h.Open("script", "src", htmxScript, "defer", "defer")
		h.Close("script")
		h.Raw("</head>")
		h.Raw(`<body><main class="app">`)
		if err := h.Err(); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		h.Raw("</main></body></html>")
		return h.Err()
	})
}
