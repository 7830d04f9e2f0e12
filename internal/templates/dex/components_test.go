package dex

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/dex-web/internal/content"
	"finitefield.org/dex-web/internal/dex"
	"finitefield.org/dex-web/internal/widget"
)

func render(t *testing.T, data WidgetData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Widget(data).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestWidgetLoadingPollsItself(t *testing.T) {
	doc := render(t, BuildWidgetData("w1", "Busca tu Pokemon", widget.ViewState{Loading: true}, content.DefaultLabels()))

	section := doc.Find("#dex-widget")
	require.Equal(t, 1, section.Length())
	require.Equal(t, "Cargando Pokémon...", strings.TrimSpace(section.Text()))
	hxGet, _ := section.Attr("hx-get")
	require.Equal(t, "/w/w1", hxGet)
	trigger, _ := section.Attr("hx-trigger")
	require.Equal(t, "load delay:500ms", trigger)
}

func TestWidgetErrorShowsOnlyMessage(t *testing.T) {
	state := widget.ViewState{LoadError: `Error al cargar el Pokémon con ID 2: <Not Found>`}
	doc := render(t, BuildWidgetData("w1", "Busca tu Pokemon", state, content.DefaultLabels()))

	section := doc.Find("#dex-widget.error")
	require.Equal(t, "Error: Error al cargar el Pokémon con ID 2: <Not Found>", section.Text())
	require.Equal(t, 0, doc.Find(".pokemon-card").Length())
	require.Equal(t, 0, doc.Find("select").Length())
}

func TestWidgetReadyRendersCards(t *testing.T) {
	missing := dex.Creature{ID: 10, DisplayName: "caterpie", Categories: []string{"bug"}, Abilities: []string{"shield-dust"}, HeightUnits: 3, WeightUnits: 29}
	state := widget.ViewState{
		Creatures: []dex.Creature{pikachu(), missing},
		Expanded:  map[int]bool{10: true},
	}
	doc := render(t, BuildWidgetData("w1", "Busca tu Pokemon", state, content.DefaultLabels()))

	require.Equal(t, "Busca tu Pokemon", doc.Find("h2").Text())
	require.Equal(t, 19, doc.Find("select[name=category] option").Length())
	require.Equal(t, "Limpiar", doc.Find("button.buscador-limpiar").Text())

	cards := doc.Find("article.pokemon-card")
	require.Equal(t, 2, cards.Length())

	first := cards.Eq(0)
	require.Equal(t, "Pikachu", first.Find("h3").Text())
	src, _ := first.Find("img").Attr("src")
	require.Equal(t, "https://sprites.example/25.png", src)
	require.Equal(t, "Tipos: Eléctrico", first.Find(".pokemon-types").Text())
	require.Equal(t, 0, first.Find(".pokemon-detalles").Length())
	require.Equal(t, "(Haz clic para ver más info)", first.Find(".pokemon-hint").Text())

	second := cards.Eq(1)
	require.Equal(t, "(Sin imagen)", second.Find(".pokemon-noimage").Text())
	require.Equal(t, "Altura: 0.3 m", second.Find(".pokemon-height").Text())
	require.Equal(t, "Peso: 2.9 kg", second.Find(".pokemon-weight").Text())
	require.Equal(t, "Habilidades: Shield-dust", second.Find(".pokemon-abilities").Text())
	require.Equal(t, "Experiencia base: —", second.Find(".pokemon-experience").Text())
	require.Equal(t, "(Haz clic para ocultar info)", second.Find(".pokemon-hint").Text())
}

func TestWidgetReadyEmptyFilter(t *testing.T) {
	state := widget.ViewState{Creatures: []dex.Creature{pikachu()}, SelectedCategory: "dragon"}
	doc := render(t, BuildWidgetData("w1", "Busca tu Pokemon", state, content.DefaultLabels()))

	require.Equal(t, "No se encontraron Pokémon con ese tipo.", doc.Find(".pokemon-empty").Text())
	selected, _ := doc.Find("option[selected]").Attr("value")
	require.Equal(t, "dragon", selected)
}

func TestWidgetRejectsUnsafeImageURL(t *testing.T) {
	c := pikachu()
	c.ImageURL = "javascript:alert(1)"
	state := widget.ViewState{Creatures: []dex.Creature{c}}
	doc := render(t, BuildWidgetData("w1", "x", state, content.DefaultLabels()))

	src, _ := doc.Find("img").Attr("src")
	require.NotContains(t, src, "javascript")
}

func TestIndexWrapsWidgetInLayout(t *testing.T) {
	page := content.Widget()
	var buf bytes.Buffer
	require.NoError(t, Index(BuildPageData(page, "w1", widget.ViewState{Loading: true})).Render(context.Background(), &buf))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	require.Equal(t, "Busca tu Pokemon", doc.Find("title").Text())
	lang, _ := doc.Find("html").Attr("lang")
	require.Equal(t, "es", lang)
	require.Equal(t, 1, doc.Find(`link[href="/public/static/dex.css"]`).Length())
	require.Equal(t, 1, doc.Find("#dex-widget").Length())
	require.Equal(t, 1, doc.Find(".page-intro strong").Length())
}

func TestLaunchPostsMountForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Launch(BuildLaunchData(content.Widget())).Render(context.Background(), &buf))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	require.Equal(t, "Busca tu Pokemon", doc.Find("title").Text())

	section := doc.Find("#dex-widget")
	require.Equal(t, "idle", section.AttrOr("data-mode", ""))
	form := section.Find("form.dex-launch")
	require.Equal(t, "post", form.AttrOr("method", ""))
	require.Equal(t, "/", form.AttrOr("action", ""))
	require.Equal(t, "/", form.AttrOr("hx-post", ""))
	require.Contains(t, form.AttrOr("hx-trigger", ""), "load")
	require.Equal(t, "Buscar Pokémon", form.Find("button").Text())
	require.Equal(t, 0, doc.Find("article.pokemon-card").Length())
}
