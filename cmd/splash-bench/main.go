// splash-bench builds a synthetic pairwise model, schedules it with the
// splash scheduler, and runs residual belief propagation to quiescence.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-splash/pkg/bp"
	"github.com/dd0wney/cluso-splash/pkg/engine"
	"github.com/dd0wney/cluso-splash/pkg/graph"
	"github.com/dd0wney/cluso-splash/pkg/logging"
	"github.com/dd0wney/cluso-splash/pkg/metrics"
	"github.com/dd0wney/cluso-splash/pkg/scheduler"
)

func main() {
	var (
		configFile = flag.String("config", "", "YAML configuration file")
		ncpus      = flag.Int("ncpus", 0, "Worker count (overrides config)")
		splashSize = flag.Int("splash-size", 0, "Splash work budget (overrides config)")
	)
	flag.Parse()

	logger := logging.DefaultLogger().With(logging.Component("splash-bench"))

	cfg := DefaultConfig()
	if *configFile != "" {
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			logger.Error("failed to load config", logging.Error(err))
			os.Exit(1)
		}
		cfg = loaded
	}
	if *ncpus > 0 {
		cfg.NCPUs = *ncpus
	}
	if *splashSize > 0 {
		cfg.SplashSize = *splashSize
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", logging.Error(err))
		os.Exit(1)
	}

	g := buildGraph(cfg)
	logger.Info("graph built",
		logging.String("topology", cfg.Graph.Topology),
		logging.Count(g.NumVertices()),
		logging.Int("edges", g.NumEdges()))

	model := bp.New(g, checkerboardPotentials(g.NumVertices()), cfg.Coupling, cfg.Tolerance)

	reg := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	sched := scheduler.New(g, cfg.NCPUs)
	sched.SetSplashSize(cfg.SplashSize)
	sched.SetMonitor(metrics.NewSchedulerMonitor(reg))
	sched.AddTaskToAll(model.Fn(), cfg.InitialPriority)

	eng := engine.New(sched, reg)
	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := eng.Run(ctx); err != nil {
		logger.Error("run did not finish", logging.Error(err))
		os.Exit(1)
	}
	elapsed := time.Since(start)

	logger.Info("converged",
		logging.String("run_id", eng.RunID()),
		logging.Uint64("updates", eng.UpdatesApplied()),
		logging.Latency(elapsed),
		logging.Float64("updates_per_second",
			float64(eng.UpdatesApplied())/elapsed.Seconds()))

	b := model.Belief(0)
	fmt.Printf("belief(0) = [%.4f %.4f]\n", b[0], b[1])
}

func buildGraph(cfg *Config) *graph.Graph {
	switch cfg.Graph.Topology {
	case "chain":
		return graph.BidirectionalChain(cfg.Graph.Length)
	default:
		return graph.Grid(cfg.Graph.Rows, cfg.Graph.Cols)
	}
}

// checkerboardPotentials biases alternating vertices toward opposite states,
// giving the propagation something to reconcile.
func checkerboardPotentials(n int) [][2]float64 {
	pots := make([][2]float64, n)
	for v := range pots {
		if v%2 == 0 {
			pots[v] = [2]float64{0.7, 0.3}
		} else {
			pots[v] = [2]float64{0.4, 0.6}
		}
	}
	return pots
}

func serveMetrics(addr string, reg *metrics.Registry, logger logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	logger.Info("serving metrics", logging.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", logging.Error(err))
	}
}
