package commands

import (
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/dex-web/internal/dex"
	"finitefield.org/dex-web/internal/platform/config"
	"finitefield.org/dex-web/internal/pokeapi"
)

// buildFetcher wires the PokeAPI client, sampler and enricher from config.
func buildFetcher(cfg config.Config, logger *zap.Logger, concurrency int) (*dex.Fetcher, error) {
	client, err := pokeapi.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		return nil, err
	}
	sampler, err := dex.NewSampler()
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = cfg.FetchConcurrency
	}
	enricher, err := dex.NewEnricher(client,
		dex.WithLocale(cfg.NameLocale),
		dex.WithConcurrency(concurrency),
		dex.WithLogger(logger.Named("dex")),
	)
	if err != nil {
		return nil, err
	}
	return dex.NewFetcher(sampler, enricher)
}
