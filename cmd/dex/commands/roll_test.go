package commands

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/dex-web/internal/pokeapi/pokeapitest"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRollPrintsTwelveCards(t *testing.T) {
	fake := pokeapitest.NewServer(t)
	t.Setenv("DEX_API_BASE_URL", fake.URL)
	t.Setenv("DEX_LOG_LEVEL", "error")

	out, err := runRoot(t, "roll", "--env-file", "", "--concurrency", "4")
	require.NoError(t, err)
	require.Contains(t, out, "Busca tu Pokemon")
	require.Equal(t, 12, strings.Count(out, "Tipos:"))
	require.Equal(t, 24, countPrefix(fake.Requests(), "/pokemon"))
}

func TestRollRejectsUnknownType(t *testing.T) {
	t.Setenv("DEX_LOG_LEVEL", "error")

	_, err := runRoot(t, "roll", "--env-file", "", "--type", "stellar")
	require.ErrorContains(t, err, `unknown category "stellar"`)
}

func TestRollSurfacesFetchFailure(t *testing.T) {
	opts := make([]pokeapitest.Option, 0, 898)
	for id := 1; id <= 898; id++ {
		opts = append(opts, pokeapitest.WithPokemonStatus(id, http.StatusServiceUnavailable))
	}
	fake := pokeapitest.NewServer(t, opts...)
	t.Setenv("DEX_API_BASE_URL", fake.URL)
	t.Setenv("DEX_LOG_LEVEL", "error")

	out, err := runRoot(t, "roll", "--env-file", "")
	require.Error(t, err)
	require.Contains(t, out, "Error: Error al cargar el Pokémon con ID")
	require.Contains(t, out, "Service Unavailable")
	require.Equal(t, 0, strings.Count(out, "Tipos:"))
}

func countPrefix(values []string, prefix string) int {
	n := 0
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			n++
		}
	}
	return n
}
