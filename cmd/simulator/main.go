/*
main.go - Command-line simulation runner

PURPOSE:
  Runs one net-worth simulation from a JSON config file and prints the
  projected balances. This is the batch counterpart of cmd/server.

COMMAND-LINE FLAGS:
  -config    Path to the simulation config (default: simulator.json)
  -variance  Enable random rate/amount variance
  -seed      Variance seed; 0 picks one from the clock
  -db        SQLite path to persist the run (empty disables)
  -trace     Log every dispatched event

EXAMPLES:
  # Deterministic projection
  ./simulator -config=household.json

  # A reproducible noisy run, persisted for later inspection
  ./simulator -config=household.json -variance -seed=42 -db=runs.db

SEE ALSO:
  - factory/config.go: Config file schema
  - engine/loop.go: The simulation itself
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/warp/networth-engine/engine"
	"github.com/warp/networth-engine/factory"
	"github.com/warp/networth-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "simulator.json", "simulation config file")
	variance := flag.Bool("variance", false, "enable random variance")
	seed := flag.Int64("seed", 0, "variance seed (0 picks one from the clock)")
	dbPath := flag.String("db", "", "SQLite path to persist the run (empty disables)")
	trace := flag.Bool("trace", false, "log every dispatched event")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *trace {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log, *configPath, *variance, *seed, *dbPath); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
}

func run(log *logrus.Logger, configPath string, variance bool, seed int64, dbPath string) error {
	ledger, err := factory.NewLedgerFactory(log).LoadFile(configPath)
	if err != nil {
		return err
	}

	// Ctrl-C aborts a long projection cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := engine.NewSimulator(ledger, engine.SimulationOptions{
		Variance:    variance,
		Seed:        seed,
		RecordDaily: dbPath != "",
		Logger:      log,
	})
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	printResult(result)

	if dbPath != "" {
		store, err := sqlite.New(dbPath)
		if err != nil {
			return fmt.Errorf("opening run store: %w", err)
		}
		defer store.Close()
		runID, err := store.SaveRun(ctx, result)
		if err != nil {
			return fmt.Errorf("persisting run: %w", err)
		}
		log.WithFields(logrus.Fields{"run_id": runID, "db": dbPath}).Info("Run persisted")
	}
	return nil
}

func printResult(result *engine.Result) {
	w := os.Stdout
	fmt.Fprintf(w, "Simulated %s through %s", result.Start, result.End)
	if result.Variance {
		fmt.Fprintf(w, " (variance seed %d)", result.Seed)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, b := range result.Balances {
		fmt.Fprintf(w, "  %-20s %15s\n", b.Name, b.Value.StringFixed(2))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-20s %15s\n", "assets", result.Assets.StringFixed(2))
	fmt.Fprintf(w, "  %-20s %15s\n", "debt", result.Debt.StringFixed(2))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "You are worth: %s\n", result.Worth.StringFixed(2))
}
