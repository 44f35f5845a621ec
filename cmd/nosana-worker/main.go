// Command nosana-worker runs the worker node daemon: it authenticates to
// a Nosana market, enters the queue, executes assigned jobs, and posts
// results back on chain. See internal/worker for the state machine and
// internal/health for the startup gate.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nosana-node/worker/internal/config"
	"github.com/nosana-node/worker/internal/flow"
	"github.com/nosana-node/worker/internal/health"
	"github.com/nosana-node/worker/internal/idl"
	"github.com/nosana-node/worker/internal/ipfs"
	"github.com/nosana-node/worker/internal/logging"
	"github.com/nosana-node/worker/internal/rpcclient"
	"github.com/nosana-node/worker/internal/secrets"
	"github.com/nosana-node/worker/internal/worker"
)

func main() {
	logging.Init()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		if err := runCommand(); err != nil {
			log.Fatalf("[ERROR] %v", err)
		}
	case "health":
		if err := healthCommand(); err != nil {
			log.Fatalf("[ERROR] %v", err)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: nosana-worker <run|health>")
}

func bootstrap() (*config.EnvInputs, *config.NodeConfig, *rpcclient.Client, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, nil, nil, err
	}

	signer, err := env.Signer()
	if err != nil {
		return nil, nil, nil, err
	}

	market, err := env.MarketPubkey()
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.NewNodeConfig(signer, market, env.Network)
	if err != nil {
		return nil, nil, nil, err
	}

	rpcURL := env.RPCURL
	if rpcURL == "" {
		if env.Network == "mainnet" {
			rpcURL = "https://api.mainnet-beta.solana.com"
		} else {
			rpcURL = "https://api.devnet.solana.com"
		}
	}
	rpc := rpcclient.New(rpcURL)

	return env, cfg, rpc, nil
}

func healthCommand() error {
	env, cfg, rpc, err := bootstrap()
	if err != nil {
		return err
	}

	report, err := health.RunCheck(context.Background(), rpc, cfg, env.SecretsEndpoint != "")
	if err != nil {
		return fmt.Errorf("health command: %w", err)
	}

	health.PrintBanner(cfg, report)
	if err := report.Gate(); err != nil {
		return err
	}
	return nil
}

func runCommand() error {
	env, cfg, rpc, err := bootstrap()
	if err != nil {
		return err
	}

	report, err := health.RunCheck(context.Background(), rpc, cfg, env.SecretsEndpoint != "")
	if err != nil {
		return fmt.Errorf("run command: health check: %w", err)
	}
	health.PrintBanner(cfg, report)

	if !env.StartJobLoop {
		log.Printf("[INFO] NOSANA_START_JOB_LOOP is false, exiting after health check")
		return nil
	}

	if err := report.Gate(); err != nil {
		log.Printf("[WARN] %v - process stays up for diagnostics, work loop will not start", err)
		waitForShutdown()
		return nil
	}

	secretsClient := secrets.New(env.SecretsEndpoint, cfg.Signer)
	if env.SecretsEndpoint != "" {
		if err := secretsClient.Login(context.Background(), ""); err != nil {
			log.Printf("[WARN] secrets login failed: %v", err)
		}
	}

	ipfsClient := ipfs.New(env.IPFSURL)
	idlCache := idl.NewCache()

	flowStore, err := flow.NewFileStore("./flows")
	if err != nil {
		return fmt.Errorf("run command: %w", err)
	}
	flowEngine := flow.NewHTTPEngine(os.Getenv("NOSANA_FLOW_ENGINE_URL"))

	pollDelay := time.Duration(env.PollDelayMs) * time.Millisecond
	controller := worker.New(cfg, rpc, idlCache, ipfsClient, flowEngine, flowStore, pollDelay)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exit := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[INFO] received signal %v, shutting down", sig)
		close(exit)
		cancel()
	}()

	controller.Run(ctx, exit)
	return nil
}

// waitForShutdown keeps the process alive after a failed health gate,
// per §7: "HealthGate at startup disables the loop (process stays up for
// diagnostics)". It returns on SIGINT/SIGTERM.
func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("[INFO] received signal %v, exiting", sig)
}
