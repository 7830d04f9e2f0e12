package helpers

import (
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup to w and remembers the first write error.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps w.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes s unescaped.
func (h *HTML) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Text writes s HTML-escaped.
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (h *HTML) Attr(name, value string) {
	h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// URLAttr writes a URL attribute, replacing unsafe schemes.
func (h *HTML) URLAttr(name, value string) {
	h.Attr(name, string(templ.URL(value)))
}

// Open writes a start tag with attribute pairs.
func (h *HTML) Open(tag string, attrs ...string) {
	h.Raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		h.Attr(attrs[i], attrs[i+1])
	}
	h.Raw(">")
}

// Close writes an end tag.
func (h *HTML) Close(tag string) {
	h.Raw("</" + tag + ">")
}

// Element writes a start tag, escaped text and the end tag.
func (h *HTML) Element(tag, text string, attrs ...string) {
	h.Open(tag, attrs...)
	h.Text(text)
	h.Close(tag)
}

// Err returns the first write error.
func (h *HTML) Err() error {
	return h.err
}
