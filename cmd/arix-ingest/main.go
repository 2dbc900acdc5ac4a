// arix-ingest loads flattened company financial data into the vector
// store. Usage: arix-ingest VIC [HPG FPT ...]
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/iqx-labs/arix/internal/app"
	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/services/ingest"
)

func main() {
	tickers := os.Args[1:]
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: arix-ingest <TICKER1> [TICKER2] ...")
		fmt.Fprintln(os.Stderr, "Example: arix-ingest VIC HPG FPT")
		os.Exit(1)
	}

	configPath := os.Getenv("ARIX_CONFIG")
	config, err := common.LoadConfig(configPath, "arix.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	a, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize app")
	}

	svc := ingest.NewService(
		a.Statements,
		a.Embeddings,
		a.VectorStore,
		config.Clients.Qdrant.Collection,
		config.Clients.Qdrant.VectorSize,
		logger,
	)

	logger.Info().
		Str("tickers", strings.Join(tickers, ", ")).
		Str("collection", config.Clients.Qdrant.Collection).
		Msg("Starting financial data ingestion")

	ctx := context.Background()
	total := 0
	for i, ticker := range tickers {
		// The first ticker rebuilds the collection; the rest append.
		recreate := i == 0
		n, err := svc.IngestTicker(ctx, ticker, recreate)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Ingestion failed")
			os.Exit(1)
		}
		total += n
	}

	logger.Info().Int("points", total).Int("tickers", len(tickers)).Msg("Ingestion finished")
}
