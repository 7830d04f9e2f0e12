package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidgetPageLoadsFromEmbeddedMarkdown(t *testing.T) {
	page, err := Get("widget", "es")
	require.NoError(t, err)

	require.Equal(t, "Busca tu Pokemon", page.Title)
	require.Equal(t, "es", page.Lang)
	require.Equal(t, DefaultLabels(), page.Labels)
	require.Contains(t, page.BodyHTML, "<strong>12 Pokémon</strong>")
	require.Contains(t, page.BodyHTML, `href="https://pokeapi.co/"`)
}

func TestGetUnknownPage(t *testing.T) {
	_, err := Get("missing", "es")
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = Get("../widget", "es")
	require.NoError(t, err, "path segments are stripped from slugs")
}

func TestParseSanitizesBodyAndFillsLabels(t *testing.T) {
	doc := strings.Join([]string{
		"---",
		"title: Prueba",
		"labels:",
		"  clear: Borrar",
		"---",
		"Hola <script>alert(1)</script> **mundo**",
	}, "\n")

	page, err := Parse("prueba", []byte(doc))
	require.NoError(t, err)
	require.Equal(t, "Prueba", page.Title)
	require.Equal(t, "Borrar", page.Labels.Clear)
	require.Equal(t, "Desconocido", page.Labels.UnknownType)
	require.NotContains(t, page.BodyHTML, "<script>")
	require.Contains(t, page.BodyHTML, "<strong>mundo</strong>")
}

func TestParseWithoutFrontMatter(t *testing.T) {
	page, err := Parse("plain", []byte("solo texto"))
	require.NoError(t, err)
	require.Equal(t, "", page.Title)
	require.Equal(t, "<p>solo texto</p>", page.BodyHTML)
	require.Equal(t, DefaultLabels(), page.Labels)
}

func TestParseRejectsBrokenFrontMatter(t *testing.T) {
	_, err := Parse("broken", []byte("---\ntitle: [unclosed\n---\nbody"))
	require.ErrorContains(t, err, "content: parse front matter broken")
}
