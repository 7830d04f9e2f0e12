package ui

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/dex-web/internal/content"
	"finitefield.org/dex-web/internal/dex"
	custommw "finitefield.org/dex-web/internal/httpserver/middleware"
	"finitefield.org/dex-web/internal/platform/observability"
	"finitefield.org/dex-web/internal/platform/requestctx"
	dextpl "finitefield.org/dex-web/internal/templates/dex"
	"finitefield.org/dex-web/internal/templates/helpers"
	"finitefield.org/dex-web/internal/widget"
)

type instanceContextKey struct{}

// Dependencies collects the services required by the UI handlers.
type Dependencies struct {
	Widgets *widget.Store
	Page    *content.Page
}

// Handlers exposes the widget page, its fragment and its interactions.
type Handlers struct {
	widgets *widget.Store
	page    content.Page
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	page := content.Widget()
	if deps.Page != nil {
		page = *deps.Page
	}
	return &Handlers{
		widgets: deps.Widgets,
		page:    page,
	}
}

// Launch serves the page whose form mounts a widget. Nothing is fetched
// until that form is posted.
func (h *Handlers) Launch(w http.ResponseWriter, r *http.Request) {
	templ.Handler(dextpl.Launch(dextpl.BuildLaunchData(h.page))).ServeHTTP(w, r)
}

// Mount creates a widget and sends the browser to its page.
func (h *Handlers) Mount(w http.ResponseWriter, r *http.Request) {
	if h.widgets == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	inst, err := h.widgets.Mount(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("mount widget failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	target := helpers.WidgetPath(inst.ID())
	if custommw.HTMXInfoFromContext(r.Context()).IsHTMX {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// LoadWidget resolves {widgetID} and stores the instance on the request context.
func (h *Handlers) LoadWidget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.widgets == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		id := chi.URLParam(r, "widgetID")
		inst, err := h.widgets.Get(id)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		ctx := requestctx.WithLogger(r.Context(), requestctx.Logger(r.Context()).With(zap.String("widget_id", inst.ID())))
		ctx = context.WithValue(ctx, instanceContextKey{}, inst)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func instanceFromContext(ctx context.Context) *widget.Instance {
	inst, _ := ctx.Value(instanceContextKey{}).(*widget.Instance)
	return inst
}

// Widget renders the full page, or the fragment for htmx polling.
func (h *Handlers) Widget(w http.ResponseWriter, r *http.Request) {
	inst := instanceFromContext(r.Context())
	h.render(w, r, inst.ID(), inst.Snapshot())
}

// SelectCategory applies the category selector.
func (h *Handlers) SelectCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	code := strings.TrimSpace(r.PostForm.Get("category"))
	if code != "" && !dex.IsKnownCategory(code) {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	inst := instanceFromContext(r.Context())
	state, err := inst.SelectCategory(code)
	h.respond(w, r, inst, state, err)
}

// ClearCategory resets the filter to all categories.
func (h *Handlers) ClearCategory(w http.ResponseWriter, r *http.Request) {
	inst := instanceFromContext(r.Context())
	state, err := inst.ClearCategory()
	h.respond(w, r, inst, state, err)
}

// ToggleCard flips one card between collapsed and expanded.
func (h *Handlers) ToggleCard(w http.ResponseWriter, r *http.Request) {
	creatureID, err := strconv.Atoi(chi.URLParam(r, "creatureID"))
	if err != nil || creatureID <= 0 {
		http.Error(w, "invalid creature id", http.StatusBadRequest)
		return
	}
	inst := instanceFromContext(r.Context())
	state, err := inst.Toggle(creatureID)
	h.respond(w, r, inst, state, err)
}

// Unmount discards the widget and cancels its fetch.
func (h *Handlers) Unmount(w http.ResponseWriter, r *http.Request) {
	inst := instanceFromContext(r.Context())
	if err := h.widgets.Unmount(inst.ID()); err != nil && !errors.Is(err, widget.ErrNotFound) {
		observability.FromContext(r.Context()).Error("unmount widget failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, inst *widget.Instance, state widget.ViewState, err error) {
	switch {
	case err == nil:
	case errors.Is(err, widget.ErrNotReady):
		http.Error(w, "widget is not ready", http.StatusConflict)
		return
	case errors.Is(err, widget.ErrUnknownCreature):
		http.Error(w, "creature not in this batch", http.StatusNotFound)
		return
	case errors.Is(err, widget.ErrClosed):
		http.NotFound(w, r)
		return
	default:
		observability.FromContext(r.Context()).Error("widget update failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !custommw.WantsFragment(r.Context()) {
		http.Redirect(w, r, helpers.WidgetPath(inst.ID()), http.StatusSeeOther)
		return
	}
	h.render(w, r, inst.ID(), state)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, widgetID string, state widget.ViewState) {
	var component templ.Component
	if custommw.WantsFragment(r.Context()) {
		component = dextpl.Widget(dextpl.BuildWidgetData(widgetID, h.page.Title, state, h.page.Labels))
	} else {
		component = dextpl.Index(dextpl.BuildPageData(h.page, widgetID, state))
	}
	templ.Handler(component).ServeHTTP(w, r)
}
