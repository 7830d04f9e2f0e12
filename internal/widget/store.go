package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"finitefield.org/dex-web/internal/dex"
)

const meterName = "finitefield.org/dex-web/internal/widget"

// DefaultIdleTTL is how long an untouched widget stays mounted.
const DefaultIdleTTL = 30 * time.Minute

// Loader runs one fetch cycle. *dex.Fetcher satisfies it.
type Loader interface {
	Load(ctx context.Context) ([]dex.Creature, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]dex.Creature, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) ([]dex.Creature, error) {
	return f(ctx)
}

// Store keeps mounted widgets in memory.
type Store struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	logger *zap.Logger

	meter        metric.Meter
	loads        metric.Int64Counter
	loadsEnabled bool

	mu        sync.Mutex
	instances map[string]*Instance
	wg        sync.WaitGroup
}

// Option customises a Store.
type Option func(*Store)

// WithIdleTTL sets the idle expiry; non-positive values keep the default.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides ULID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMeter records load outcomes on meter instead of the global meter provider.
func WithMeter(meter metric.Meter) Option {
	return func(s *Store) {
		if meter != nil {
			s.meter = meter
		}
	}
}

// NewStore constructs an empty store whose widgets load through loader.
func NewStore(loader Loader, opts ...Option) (*Store, error) {
	if loader == nil {
		return nil, errors.New("widget: loader is required")
	}
	s := &Store{
		loader:    loader,
		ttl:       DefaultIdleTTL,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return ulid.Make().String() },
		logger:    zap.NewNop(),
		instances: make(map[string]*Instance),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.meter == nil {
		s.meter = otel.GetMeterProvider().Meter(meterName)
	}

	loads, err := s.meter.Int64Counter(
		"dex.widget.loads",
		metric.WithDescription("Count of completed widget fetch cycles by outcome"),
	)
	if err != nil {
		s.logger.Warn("widget: unable to register load metric", zap.Error(err))
	} else {
		s.loads = loads
		s.loadsEnabled = true
	}
	return s, nil
}

// Mount creates a widget in the loading phase and starts its fetch cycle.
// The cycle outlives ctx's cancellation but keeps its values; it stops when
// the widget is unmounted.
func (s *Store) Mount(ctx context.Context) (*Instance, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	inst := newInstance(s.newID(), s.now())

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	inst.cancel = cancel

	s.mu.Lock()
	if _, exists := s.instances[inst.id]; exists {
		s.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("widget: duplicate id %q", inst.id)
	}
	s.instances[inst.id] = inst
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(fetchCtx, inst)

	s.logger.Debug("widget mounted", zap.String("widget_id", inst.id))
	return inst, nil
}

func (s *Store) run(ctx context.Context, inst *Instance) {
	defer s.wg.Done()
	defer close(inst.done)

	creatures, err := s.safeLoad(ctx)
	if !inst.complete(creatures, err) {
		s.logger.Debug("discarded late fetch result", zap.String("widget_id", inst.id))
		return
	}
	if err != nil {
		s.recordLoad(ctx, "error")
		fields := []zap.Field{zap.String("widget_id", inst.id), zap.Error(err)}
		var failure *dex.FetchFailure
		if errors.As(err, &failure) && failure.Err != nil {
			fields = append(fields, zap.NamedError("cause", failure.Err))
		}
		s.logger.Warn("widget load failed", fields...)
		return
	}
	s.recordLoad(ctx, "ready")
	s.logger.Info("widget loaded",
		zap.String("widget_id", inst.id),
		zap.Int("creatures", len(creatures)),
	)
}

func (s *Store) recordLoad(ctx context.Context, outcome string) {
	if !s.loadsEnabled {
		return
	}
	s.loads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Store) safeLoad(ctx context.Context) (creatures []dex.Creature, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			creatures = nil
			err = fmt.Errorf("widget: loader panic: %v", rec)
		}
	}()
	return s.loader.Load(ctx)
}

// Get returns the widget and marks it as recently used.
func (s *Store) Get(id string) (*Instance, error) {
	s.mu.Lock()
	inst, ok := s.instances[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	inst.touch(s.now())
	return inst, nil
}

// Unmount removes the widget and cancels its fetch cycle.
func (s *Store) Unmount(id string) error {
	s.mu.Lock()
	inst, ok := s.instances[id]
	delete(s.instances, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	inst.close()
	s.logger.Debug("widget unmounted", zap.String("widget_id", id))
	return nil
}

// Sweep unmounts widgets idle for at least the TTL and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	var expired []*Instance
	s.mu.Lock()
	for id, inst := range s.instances {
		if inst.idleSince(now) < s.ttl {
			continue
		}
		delete(s.instances, id)
		expired = append(expired, inst)
	}
	s.mu.Unlock()

	for _, inst := range expired {
		inst.close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.Sweep(s.now()); removed > 0 {
				s.logger.Info("expired idle widgets", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Len reports the number of mounted widgets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

// Close unmounts every widget and waits for their fetch cycles to return.
func (s *Store) Close() {
	s.mu.Lock()
	all := make([]*Instance, 0, len(s.instances))
	for id, inst := range s.instances {
		all = append(all, inst)
		delete(s.instances, id)
	}
	s.mu.Unlock()

	for _, inst := range all {
		inst.close()
	}
	s.wg.Wait()
}
