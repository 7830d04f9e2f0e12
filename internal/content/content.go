// Package content loads the widget's page copy from embedded markdown files.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*.md
var pagesFS embed.FS

// ErrNotFound indicates no page exists for the slug and language.
var ErrNotFound = errors.New("content: page not found")

// Labels are the UI strings of the widget.
type Labels struct {
	Start          string `yaml:"start"`
	Loading        string `yaml:"loading"`
	ErrorPrefix    string `yaml:"error_prefix"`
	AllTypes       string `yaml:"all_types"`
	Clear          string `yaml:"clear"`
	ClearTitle     string `yaml:"clear_title"`
	Types          string `yaml:"types"`
	UnknownType    string `yaml:"unknown_type"`
	NoImage        string `yaml:"no_image"`
	Height         string `yaml:"height"`
	Weight         string `yaml:"weight"`
	Abilities      string `yaml:"abilities"`
	BaseExperience string `yaml:"base_experience"`
	ShowHint       string `yaml:"show_hint"`
	HideHint       string `yaml:"hide_hint"`
	Empty          string `yaml:"empty"`
}

// DefaultLabels returns the built-in Spanish strings.
func DefaultLabels() Labels {
	return Labels{
		Start:          "Buscar Pokémon",
		Loading:        "Cargando Pokémon...",
		ErrorPrefix:    "Error:",
		AllTypes:       "-- Todos los tipos --",
		Clear:          "Limpiar",
		ClearTitle:     "Limpiar selección",
		Types:          "Tipos:",
		UnknownType:    "Desconocido",
		NoImage:        "(Sin imagen)",
		Height:         "Altura:",
		Weight:         "Peso:",
		Abilities:      "Habilidades:",
		BaseExperience: "Experiencia base:",
		ShowHint:       "(Haz clic para ver más info)",
		HideHint:       "(Haz clic para ocultar info)",
		Empty:          "No se encontraron Pokémon con ese tipo.",
	}
}

// merge fills blank fields of l from fallback.
func (l Labels) merge(fallback Labels) Labels {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return strings.TrimSpace(v)
	}
	return Labels{
		Start:          pick(l.Start, fallback.Start),
		Loading:        pick(l.Loading, fallback.Loading),
		ErrorPrefix:    pick(l.ErrorPrefix, fallback.ErrorPrefix),
		AllTypes:       pick(l.AllTypes, fallback.AllTypes),
		Clear:          pick(l.Clear, fallback.Clear),
		ClearTitle:     pick(l.ClearTitle, fallback.ClearTitle),
		Types:          pick(l.Types, fallback.Types),
		UnknownType:    pick(l.UnknownType, fallback.UnknownType),
		NoImage:        pick(l.NoImage, fallback.NoImage),
		Height:         pick(l.Height, fallback.Height),
		Weight:         pick(l.Weight, fallback.Weight),
		Abilities:      pick(l.Abilities, fallback.Abilities),
		BaseExperience: pick(l.BaseExperience, fallback.BaseExperience),
		ShowHint:       pick(l.ShowHint, fallback.ShowHint),
		HideHint:       pick(l.HideHint, fallback.HideHint),
		Empty:          pick(l.Empty, fallback.Empty),
	}
}

// Page is a rendered copy page.
type Page struct {
	Slug     string
	Lang     string
	Title    string
	Summary  string
	BodyHTML string
	Labels   Labels
}

type frontMatter struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Lang    string `yaml:"lang"`
	Labels  Labels `yaml:"labels"`
}

var (
	policy   = bluemonday.UGCPolicy()
	markdown = goldmark.New()

	cacheMu sync.RWMutex
	cache   = map[string]Page{}
)

// Get returns the embedded page for slug and lang. Parsed pages are cached.
func Get(slug, lang string) (Page, error) {
	key := sanitizeSlug(slug) + "." + sanitizeSlug(lang)

	cacheMu.RLock()
	page, ok := cache[key]
	cacheMu.RUnlock()
	if ok {
		return page, nil
	}

	data, err := fs.ReadFile(pagesFS, "pages/"+key+".md")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("content: read %s: %w", key, err)
	}
	page, err = Parse(slug, data)
	if err != nil {
		return Page{}, err
	}
	if page.Lang == "" {
		page.Lang = lang
	}

	cacheMu.Lock()
	cache[key] = page
	cacheMu.Unlock()
	return page, nil
}

// Widget returns the Spanish widget page, falling back to built-in labels
// when the page cannot be loaded.
func Widget() Page {
	page, err := Get("widget", "es")
	if err != nil {
		return Page{Slug: "widget", Lang: "es", Title: "Busca tu Pokemon", Labels: DefaultLabels()}
	}
	return page
}

// Parse decodes a markdown document with optional YAML front matter.
func Parse(slug string, data []byte) (Page, error) {
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", slug, err)
	}

	return Page{
		Slug:     slug,
		Lang:     strings.TrimSpace(front.Lang),
		Title:    strings.TrimSpace(front.Title),
		Summary:  strings.TrimSpace(front.Summary),
		BodyHTML: strings.TrimSpace(policy.Sanitize(buf.String())),
		Labels:   front.Labels.merge(DefaultLabels()),
	}, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func sanitizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
