package dex

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/dex-web/internal/pokeapi"
)

const instrumentationName = "finitefield.org/dex-web/internal/dex"

var tracer = otel.Tracer(instrumentationName)

// DefaultLocale is the language code whose species name replaces the canonical name.
const DefaultLocale = "es"

// Causes shown when a primary record fails without an HTTP status.
const (
	causeMalformed   = "respuesta inválida"
	causeTimeout     = "tiempo de espera agotado"
	causeUnreachable = "sin respuesta del servidor"
)

// RecordSource retrieves the two records merged into a Creature.
// *pokeapi.Client satisfies it.
type RecordSource interface {
	GetPokemon(ctx context.Context, id int) (*pokeapi.Pokemon, error)
	GetSpecies(ctx context.Context, id int) (*pokeapi.Species, error)
}

// FetchFailure aborts a batch when a primary record cannot be retrieved.
type FetchFailure struct {
	ID     int
	Status string
	Err    error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("Error al cargar el Pokémon con ID %d: %s", f.ID, f.Status)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// Enricher turns ids into creatures. The zero concurrency fetches sequentially.
type Enricher struct {
	source      RecordSource
	locale      string
	concurrency int
	logger      *zap.Logger

	meter          metric.Meter
	latency        metric.Float64Histogram
	latencyEnabled bool
}

// EnricherOption customises an Enricher.
type EnricherOption func(*Enricher)

// WithLocale selects the species name language, e.g. "es".
func WithLocale(locale string) EnricherOption {
	return func(e *Enricher) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			e.locale = trimmed
		}
	}
}

// WithConcurrency bounds the number of creatures fetched in parallel.
// Values below 2 keep fetching strictly sequential.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		e.concurrency = n
	}
}

// WithLogger attaches a logger for absorbed localization failures.
func WithLogger(logger *zap.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMeter records fetch latency on meter instead of the global meter provider.
func WithMeter(meter metric.Meter) EnricherOption {
	return func(e *Enricher) {
		if meter != nil {
			e.meter = meter
		}
	}
}

// NewEnricher constructs an Enricher reading from source.
func NewEnricher(source RecordSource, opts ...EnricherOption) (*Enricher, error) {
	if source == nil {
		return nil, errors.New("dex: record source is required")
	}
	e := &Enricher{
		source:      source,
		locale:      DefaultLocale,
		concurrency: 1,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.meter == nil {
		e.meter = otel.GetMeterProvider().Meter(instrumentationName)
	}

	latency, err := e.meter.Float64Histogram(
		"dex.fetch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of upstream creature record requests"),
	)
	if err != nil {
		e.logger.Warn("dex: unable to register latency metric", zap.Error(err))
	} else {
		e.latency = latency
		e.latencyEnabled = true
	}
	return e, nil
}

// Enrich fetches every id and returns creatures in id order. Any primary
// failure aborts the whole batch and no creatures are returned.
func (e *Enricher) Enrich(ctx context.Context, ids []int) ([]Creature, error) {
	ctx, span := tracer.Start(ctx, "dex.Enrich", trace.WithAttributes(
		attribute.Int("dex.batch_size", len(ids)),
		attribute.Int("dex.concurrency", e.concurrency),
	))
	defer span.End()

	var (
		creatures []Creature
		err       error
	)
	if e.concurrency > 1 {
		creatures, err = e.enrichConcurrently(ctx, ids)
	} else {
		creatures, err = e.enrichSequentially(ctx, ids)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return creatures, nil
}

func (e *Enricher) enrichSequentially(ctx context.Context, ids []int) ([]Creature, error) {
	out := make([]Creature, 0, len(ids))
	for _, id := range ids {
		creature, err := e.enrichOne(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, creature)
	}
	return out, nil
}

func (e *Enricher) enrichConcurrently(ctx context.Context, ids []int) ([]Creature, error) {
	out := make([]Creature, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			creature, err := e.enrichOne(gctx, id)
			if err != nil {
				return err
			}
			out[i] = creature
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enricher) enrichOne(ctx context.Context, id int) (Creature, error) {
	ctx, span := tracer.Start(ctx, "dex.enrichOne", trace.WithAttributes(attribute.Int("dex.creature_id", id)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return Creature{}, fmt.Errorf("dex: fetch creature %d: %w", id, err)
	}

	start := time.Now()
	primary, err := e.source.GetPokemon(ctx, id)
	e.recordLatency(ctx, "pokemon", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return Creature{}, fmt.Errorf("dex: fetch creature %d: %w", id, err)
		}
		return Creature{}, newFetchFailure(id, err)
	}
	if primary == nil {
		return Creature{}, &FetchFailure{ID: id, Status: causeMalformed, Err: errors.New("dex: empty primary record")}
	}

	creature := fromRecord(id, primary)
	source := "canonical"
	if name, ok := e.localizedName(ctx, id); ok {
		creature.DisplayName = name
		source = "species"
	}
	e.logger.Debug("creature name resolved",
		zap.Int("creature_id", creature.ID),
		zap.String("source", source),
	)
	if strings.TrimSpace(creature.DisplayName) == "" {
		creature.DisplayName = fmt.Sprintf("#%d", creature.ID)
	}
	span.SetAttributes(attribute.String("dex.display_name", creature.DisplayName))
	return creature, nil
}

// localizedName reports false for any species outcome without a usable name.
func (e *Enricher) localizedName(ctx context.Context, id int) (string, bool) {
	start := time.Now()
	species, err := e.source.GetSpecies(ctx, id)
	e.recordLatency(ctx, "species", time.Since(start), err)
	if err != nil {
		return "", false
	}
	return species.NameFor(e.locale)
}

func (e *Enricher) recordLatency(ctx context.Context, endpoint string, d time.Duration, err error) {
	if !e.latencyEnabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.latency.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	))
}

// newFetchFailure maps a primary record error to the message shown to users.
// The original error stays reachable through Unwrap.
func newFetchFailure(id int, err error) *FetchFailure {
	var statusErr *pokeapi.StatusError
	var netErr net.Error
	cause := causeUnreachable
	switch {
	case errors.As(err, &statusErr):
		cause = statusErr.StatusText()
	case errors.Is(err, pokeapi.ErrMalformedResponse):
		cause = causeMalformed
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		cause = causeTimeout
	}
	return &FetchFailure{ID: id, Status: cause, Err: err}
}

func fromRecord(id int, p *pokeapi.Pokemon) Creature {
	if p.ID > 0 {
		id = p.ID
	}
	c := Creature{
		ID:             id,
		DisplayName:    p.Name,
		CanonicalName:  p.Name,
		Categories:     make([]string, 0, len(p.Types)),
		HeightUnits:    p.Height,
		WeightUnits:    p.Weight,
		Abilities:      make([]string, 0, len(p.Abilities)),
		BaseExperience: p.BaseExperience,
	}
	if p.Sprites.FrontDefault != nil {
		c.ImageURL = *p.Sprites.FrontDefault
	}
	for _, slot := range p.Types {
		c.Categories = append(c.Categories, slot.Type.Name)
	}
	for _, slot := range p.Abilities {
		c.Abilities = append(c.Abilities, slot.Ability.Name)
	}
	return c
}
