// Command openpass is the simulation kernel's command-line launcher: it
// resolves an experiment configuration and a pre-parsed scenery file, runs
// every invocation of the experiment, and writes a post-run summary to the
// results directory. Flag handling uses the standard flag package.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/openpass-sim/kernel/internal/binding"
	"github.com/openpass-sim/kernel/internal/config"
	"github.com/openpass-sim/kernel/internal/datastore"
	"github.com/openpass-sim/kernel/internal/datastore/sqlitesink"
	"github.com/openpass-sim/kernel/internal/orchestrator"
	"github.com/openpass-sim/kernel/internal/orchestrator/report"
	"github.com/openpass-sim/kernel/internal/world"

	// Blank-imported for their static-registry init() side effects.
	_ "github.com/openpass-sim/kernel/internal/components/driverreaction"
	_ "github.com/openpass-sim/kernel/internal/components/trajectoryfollower"
	_ "github.com/openpass-sim/kernel/internal/networks/observation/grpcstream"
	_ "github.com/openpass-sim/kernel/internal/stochastics"
)

var (
	configPath  = flag.String("config", "config/experiment.json", "Path to the experiment config (JSON or YAML)")
	sceneryPath = flag.String("scenery", "", "Path to the pre-parsed scenery JSON file (overrides scenario.sceneryPath from config)")
	resultsDir  = flag.String("results", "results", "Directory to write the run summary and charts to")
	dbPath      = flag.String("db", "", "Optional SQLite file to durably snapshot the data store into after every invocation")
	grpcListen  = flag.String("observation-listen", "", "Optional address to serve the grpcstream observation service on (e.g. :9090)")
	htmlReport  = flag.Bool("html-report", false, "Also write an HTML bar-chart report alongside summary.json")
	pngReport   = flag.Bool("png-report", false, "Also write a PNG line-chart report alongside summary.json")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

// run maps the experiment outcome to the exit code: 0 only if every invocation
// and the terminal FinalizeAll succeeded.
func run() int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("openpass: %v", err)
		return 1
	}

	scenery := *sceneryPath
	if scenery == "" {
		scenery = cfg.Scenario.SceneryPath
	}
	if scenery == "" {
		log.Printf("openpass: no scenery path given (set -scenery or scenario.sceneryPath)")
		return 1
	}

	raw, err := world.LoadScenery(scenery)
	if err != nil {
		log.Printf("openpass: %v", err)
		return 1
	}
	w, err := world.NewWorld(raw)
	if err != nil {
		log.Printf("openpass: build world: %v", err)
		return 1
	}

	registry := binding.NewRegistry()
	defer registry.UnloadAll()

	store := datastore.New()
	orch := orchestrator.New(cfg, registry, w, store)

	var grpcServer *grpc.Server
	var listener net.Listener
	if *grpcListen != "" {
		grpcServer = grpc.NewServer()
		listener, err = net.Listen("tcp", *grpcListen)
		if err != nil {
			log.Printf("openpass: listen %s: %v", *grpcListen, err)
			return 1
		}
		go func() {
			log.Printf("openpass: serving observation stream on %s", *grpcListen)
			if err := grpcServer.Serve(listener); err != nil {
				log.Printf("openpass: grpc server stopped: %v", err)
			}
		}()
		defer grpcServer.GracefulStop()
		orch.WithObservationCollaborators(grpcServer)
	}

	if *dbPath != "" {
		sink, err := sqlitesink.Open(*dbPath)
		if err != nil {
			log.Printf("openpass: %v", err)
			return 1
		}
		defer sink.Close()
		orch.WithSink(sink)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	success, results, err := orch.Run(ctx)
	if err != nil {
		log.Printf("openpass: %v", err)
		return 1
	}

	summary := report.Build(success, results)
	summaryPath, err := report.WriteJSON(summary, *resultsDir)
	if err != nil {
		log.Printf("openpass: %v", err)
		return 1
	}
	log.Printf("openpass: wrote summary to %s", summaryPath)

	if *htmlReport {
		if path, err := report.WriteHTML(summary, *resultsDir); err != nil {
			log.Printf("openpass: html report: %v", err)
		} else {
			log.Printf("openpass: wrote HTML report to %s", path)
		}
	}
	if *pngReport {
		if path, err := report.WritePNG(summary, *resultsDir); err != nil {
			log.Printf("openpass: png report: %v", err)
		} else {
			log.Printf("openpass: wrote PNG report to %s", path)
		}
	}

	for _, r := range results {
		fmt.Printf("invocation %d: seed=%d agents=%d events=%d endCondition=%v abort=%v\n",
			r.Invocation, r.Seed, r.AgentCount, r.EventCount, r.IsEndCondition, r.AbortKind)
	}

	if !success {
		return 1
	}
	return 0
}
