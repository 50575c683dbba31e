package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	engine "github.com/rxtech-lab/sentiment-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/sentiment-backtest/internal/datasource"
	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/strategy"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
)

// backtestAction loads the run config, wires the CSV data sources and the
// trade journal, runs the backtest and writes one result file per symbol.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataDir := cmd.String("data")
	resultsDir := cmd.String("results")

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg, err := engine.ParseRunConfig(raw)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	journal, err := engine.NewTradeJournal(appLogger)
	if err != nil {
		return err
	}
	defer journal.Close()

	var bar *progressbar.ProgressBar
	progress := func(completed, total int) {
		if bar == nil || bar.GetMax() != total {
			bar = progressbar.Default(int64(total))
		}
		bar.Set(completed) //nolint:errcheck
	}

	runner, err := engine.NewRunner(
		cfg,
		datasource.NewCSVBarSource(dataDir, appLogger),
		appLogger,
		engine.WithSentimentSource(datasource.NewCSVSentimentSource(dataDir, appLogger)),
		engine.WithJournal(journal),
		engine.WithProgress(progress),
	)
	if err != nil {
		return err
	}

	results, err := runner.Run()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	failed := 0
	for _, result := range results {
		path := filepath.Join(resultsDir, fmt.Sprintf("%s_%s.yaml", result.Symbol, result.ID))
		if err := types.WriteBacktestResult(path, result); err != nil {
			return err
		}

		if result.Status == types.RunStatusFailed {
			failed++
			log.Printf("%s: FAILED (%s)", result.Symbol, result.Error)
			continue
		}
		log.Printf("%s: final value %.2f, return %.4f%%, trades %d (%s)",
			result.Symbol, result.FinalValue, result.Metrics.TotalReturn,
			result.Metrics.TotalTrades, path)
	}

	if err := journal.Write(resultsDir); err != nil {
		return err
	}

	if failed == len(results) {
		return fmt.Errorf("all %d symbols failed", failed)
	}
	return nil
}

// schemaAction prints the strategy parameter JSON schema for editor support.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	cfg := strategy.DefaultConfig()
	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}
	fmt.Println(schema)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run sentiment-aware trading strategy backtests over daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML run configuration",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Directory holding <SYMBOL>.csv bars and <SYMBOL>_sentiment.csv scores",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Directory for result YAML files and the Parquet journal",
				Value:   "results",
			},
		},
		Action: backtestAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the strategy parameter JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
