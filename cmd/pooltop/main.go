// pooltop is an interactive terminal monitor for the dbpool connection pool.
//
// It runs a synthetic worker fleet against a pool and renders live pool
// statistics, so the capacity ceiling, eviction sweeps, and backpressure
// behavior can be watched in real time. The connection factory is guarded
// by a circuit breaker and a dial rate limiter, the same wiring a real
// deployment would use.
//
// Usage:
//
//	pooltop [flags]
//
// Flags:
//
//	-config string
//	    Path to configuration file (default "~/.dbpool/config.toml")
//	-workers int
//	    Number of synthetic workers to run (default 8)
//	-churn duration
//	    Mean interval between a worker closing its connection (default 3s)
//	-version
//	    Print version and exit
//
// Logging verbosity is controlled by the DEBUG_I2P environment variable.
//
// See https://github.com/go-i2p/dbpool for more information.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-i2p/dbpool/lib/config"
	"github.com/go-i2p/dbpool/lib/metrics"
	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/go-i2p/dbpool/lib/ratelimit"
	"github.com/go-i2p/dbpool/lib/resilience"
	"github.com/go-i2p/dbpool/lib/testutil"
	"github.com/go-i2p/dbpool/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	defaultConfigPath := filepath.Join(homeDir, ".dbpool", "config.toml")

	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	workers := flag.Int("workers", 8, "Number of synthetic workers to run")
	churn := flag.Duration("churn", 3*time.Second, "Mean interval between a worker closing its connection")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pooltop - Interactive connection pool monitor\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  pooltop [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("pooltop version %s\n", version.Full())
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	// Synthetic backend: fake connections with a breaker and a dial rate
	// limiter in front, the same factory chain a real deployment wires up.
	var dials int32
	breaker := resilience.NewBreaker("pooltop", resilience.DefaultBreakerConfig())
	limiter := ratelimit.New(20, 10)
	factory := limiter.Limit(breaker.Guard(testutil.Factory(&dials)))

	p := pool.NewWithConfig(factory, cfg.PoolSettings())

	if cfg.Metrics.Enabled {
		metrics.RecordStartTime()
		go serveMetrics(cfg.Metrics.Listen)
	}

	w := newWorkload(p, *workers, *churn)
	w.Start()
	defer w.Stop()

	model := newModel(p, w)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}

	return 0
}

// serveMetrics exposes the Prometheus endpoint on its own listener.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "Metrics server error: %v\n", err)
	}
}
