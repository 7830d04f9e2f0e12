package widget

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/dex-web/internal/dex"
	"finitefield.org/dex-web/internal/testutil/metrictest"
)

func creatures() []dex.Creature {
	exp := 112
	return []dex.Creature{
		{ID: 25, DisplayName: "pikachu", Categories: []string{"electric"}, HeightUnits: 4, WeightUnits: 60, BaseExperience: &exp},
		{ID: 4, DisplayName: "charmander", Categories: []string{"fire"}, HeightUnits: 6, WeightUnits: 85},
		{ID: 6, DisplayName: "charizard", Categories: []string{"fire", "flying"}, HeightUnits: 17, WeightUnits: 905},
	}
}

func readyLoader() Loader {
	return LoaderFunc(func(context.Context) ([]dex.Creature, error) {
		return creatures(), nil
	})
}

func mountReady(t *testing.T, store *Store) *Instance {
	t.Helper()
	inst, err := store.Mount(context.Background())
	require.NoError(t, err)
	waitDone(t, inst)
	return inst
}

func waitDone(t *testing.T, inst *Instance) {
	t.Helper()
	select {
	case <-inst.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("fetch cycle did not finish")
	}
}

func TestMountStartsLoadingThenReady(t *testing.T) {
	release := make(chan struct{})
	store, err := NewStore(LoaderFunc(func(ctx context.Context) ([]dex.Creature, error) {
		<-release
		return creatures(), nil
	}))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	inst, err := store.Mount(context.Background())
	require.NoError(t, err)

	state := inst.Snapshot()
	require.Equal(t, PhaseLoading, state.Phase())
	require.Empty(t, state.Creatures)

	_, err = inst.Toggle(25)
	require.ErrorIs(t, err, ErrNotReady)

	close(release)
	waitDone(t, inst)

	state = inst.Snapshot()
	require.Equal(t, PhaseReady, state.Phase())
	require.Len(t, state.Creatures, 3)
	require.Empty(t, state.Expanded)
}

func TestMountSurvivesRequestCancellation(t *testing.T) {
	store, err := NewStore(LoaderFunc(func(ctx context.Context) ([]dex.Creature, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return creatures(), nil
	}))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	inst, err := store.Mount(reqCtx)
	require.NoError(t, err)
	waitDone(t, inst)
	require.Equal(t, PhaseReady, inst.Snapshot().Phase())
}

func TestLoadErrorIsTerminal(t *testing.T) {
	failure := &dex.FetchFailure{ID: 2, Status: "Not Found"}
	store, err := NewStore(LoaderFunc(func(context.Context) ([]dex.Creature, error) {
		return nil, failure
	}))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	inst := mountReady(t, store)
	state := inst.Snapshot()
	require.Equal(t, PhaseError, state.Phase())
	require.Equal(t, "Error al cargar el Pokémon con ID 2: Not Found", state.LoadError)
	require.Empty(t, state.Creatures)

	require.False(t, inst.complete(creatures(), nil))
	require.Equal(t, PhaseError, inst.Snapshot().Phase())

	_, err = inst.SelectCategory("fire")
	require.ErrorIs(t, err, ErrNotReady)
}

func TestLoaderPanicBecomesLoadError(t *testing.T) {
	store, err := NewStore(LoaderFunc(func(context.Context) ([]dex.Creature, error) {
		panic("unexpected shape")
	}))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	inst := mountReady(t, store)
	state := inst.Snapshot()
	require.Equal(t, PhaseError, state.Phase())
	require.Contains(t, state.LoadError, "unexpected shape")
}

func TestToggleIsIdempotentUnderDoubleToggle(t *testing.T) {
	store, err := NewStore(readyLoader())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	inst := mountReady(t, store)

	state, err := inst.Toggle(25)
	require.NoError(t, err)
	require.True(t, state.IsExpanded(25))
	require.False(t, state.IsExpanded(4))

	state, err = inst.Toggle(25)
	require.NoError(t, err)
	require.False(t, state.IsExpanded(25))
	require.Empty(t, state.Expanded)

	_, err = inst.Toggle(999)
	require.ErrorIs(t, err, ErrUnknownCreature)
}

func TestSelectAndClearCategory(t *testing.T) {
	store, err := NewStore(readyLoader())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	inst := mountReady(t, store)

	state, err := inst.SelectCategory(" FIRE ")
	require.NoError(t, err)
	require.Equal(t, "fire", state.SelectedCategory)
	require.Len(t, state.Visible(), 2)

	state, err = inst.ClearCategory()
	require.NoError(t, err)
	require.Equal(t, "", state.SelectedCategory)
	require.Len(t, state.Visible(), 3)
}

func TestSnapshotIsIsolated(t *testing.T) {
	store, err := NewStore(readyLoader())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	inst := mountReady(t, store)

	snap := inst.Snapshot()
	snap.Expanded[25] = true
	snap.Creatures[0].DisplayName = "mutated"

	fresh := inst.Snapshot()
	require.False(t, fresh.IsExpanded(25))
	require.Equal(t, "pikachu", fresh.Creatures[0].DisplayName)
}

func TestUnmountCancelsAndIgnoresLateCompletion(t *testing.T) {
	started := make(chan struct{})
	var sawCancel atomic.Bool
	store, err := NewStore(LoaderFunc(func(ctx context.Context) ([]dex.Creature, error) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return creatures(), nil
	}))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	inst, err := store.Mount(context.Background())
	require.NoError(t, err)
	<-started

	require.NoError(t, store.Unmount(inst.ID()))
	waitDone(t, inst)
	require.True(t, sawCancel.Load())

	state := inst.Snapshot()
	require.Equal(t, PhaseLoading, state.Phase())
	require.Empty(t, state.Creatures)

	_, err = inst.Toggle(25)
	require.ErrorIs(t, err, ErrClosed)

	_, err = store.Get(inst.ID())
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Unmount(inst.ID()), ErrNotFound)
}

func TestLoadOutcomesAreCounted(t *testing.T) {
	reader := metrictest.New(t)
	core, logs := observer.New(zapcore.WarnLevel)
	cause := errors.New("pokeapi: request failed: dial tcp: no route to host")

	var calls atomic.Int32
	block := make(chan struct{})
	store, err := NewStore(LoaderFunc(func(ctx context.Context) ([]dex.Creature, error) {
		switch calls.Add(1) {
		case 1:
			return creatures(), nil
		case 2:
			return nil, &dex.FetchFailure{ID: 9, Status: "sin respuesta del servidor", Err: cause}
		default:
			<-block
			return creatures(), nil
		}
	}), WithMeter(reader.Meter("test")), WithLogger(zap.New(core)))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	mountReady(t, store)
	mountReady(t, store)

	late, err := store.Mount(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Unmount(late.ID()))
	close(block)
	waitDone(t, late)

	counts := reader.CounterValues(t, "dex.widget.loads", attribute.Key("outcome"))
	require.Equal(t, map[string]int64{"ready": 1, "error": 1}, counts)

	failed := logs.FilterMessage("widget load failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	require.Equal(t, "Error al cargar el Pokémon con ID 9: sin respuesta del servidor", fields["error"])
	require.Equal(t, cause.Error(), fields["cause"])
}

func TestSweepRemovesIdleWidgets(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var seq atomic.Int64
	store, err := NewStore(readyLoader(),
		WithIdleTTL(10*time.Minute),
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "w" + string(rune('a'+seq.Add(1))) }),
	)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	stale := mountReady(t, store)
	now = now.Add(8 * time.Minute)
	fresh := mountReady(t, store)
	require.Equal(t, 2, store.Len())

	now = now.Add(3 * time.Minute)
	require.Equal(t, 1, store.Sweep(now))

	_, err = store.Get(stale.ID())
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(fresh.ID())
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	require.Equal(t, 0, store.Sweep(now), "Get refreshes the idle timer")
}

func TestRunStopsWithContext(t *testing.T) {
	store, err := NewStore(readyLoader(), WithIdleTTL(time.Nanosecond))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	mountReady(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewStoreRequiresLoader(t *testing.T) {
	_, err := NewStore(nil)
	require.Error(t, err)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "loading", PhaseLoading.String())
	require.Equal(t, "error", PhaseError.String())
	require.Equal(t, "ready", PhaseReady.String())
}
