package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacokyle01/analysis-bridge/src/config"
	"github.com/jacokyle01/analysis-bridge/src/engine"
	"github.com/jacokyle01/analysis-bridge/src/models"
	"github.com/jacokyle01/analysis-bridge/src/observability"
	"github.com/jacokyle01/analysis-bridge/src/primaryserver"
	"github.com/jacokyle01/analysis-bridge/src/session"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  bridge server [flags] [port]       - Run the analysis server")
	fmt.Println("  bridge analyze [flags] [fen]       - Analyse one position and print events")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "server":
		err = runServer(os.Args[2:])
	case "analyze":
		err = runAnalyze(os.Args[2:])
	default:
		fmt.Println("Unknown command:", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(path, enginePath, level string, pretty bool) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if enginePath != "" {
		cfg.Session.EnginePath = enginePath
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if pretty {
		cfg.Log.Pretty = true
	}
	return &cfg, nil
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "path to JSON config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	enginePath := fs.String("engine", "", "engine executable (overrides config)")
	level := fs.String("log-level", "", "log level")
	pretty := fs.Bool("pretty", false, "human readable logs")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *enginePath, *level, *pretty)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if fs.NArg() > 0 {
		cfg.Server.Addr = ":" + fs.Arg(0)
	}

	log, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		return err
	}

	if path, err := engine.Locate(cfg.Session.EnginePath); err != nil {
		log.Warn().Err(err).Msg("no engine found yet; analysis requests will fail until one is installed")
	} else {
		log.Info().Str("engine", path).Msg("using engine")
	}

	manager := session.NewManager(
		cfg.Session,
		engine.ExecSpawner{Path: cfg.Session.EnginePath, Log: log},
		log,
		observability.NewZerologObserver(log),
	)
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := primaryserver.NewServer(manager, cfg.Server.AllowedOrigins, log)
	return srv.StartServer(ctx, cfg.Server.Addr)
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "path to JSON config file")
	enginePath := fs.String("engine", "", "engine executable (overrides config)")
	depth := fs.Int("depth", models.DefaultDepth, "search depth")
	multiPV := fs.Int("multipv", models.DefaultMultiPV, "number of lines")
	timeLimit := fs.Int("time", models.DefaultTimeLimitMS, "search time in milliseconds")
	level := fs.String("log-level", "warn", "log level")
	pretty := fs.Bool("pretty", false, "human readable logs")
	fs.Parse(args)

	fen := startFEN
	if fs.NArg() > 0 {
		fen = fs.Arg(0)
	}

	cfg, err := loadConfig(*configPath, *enginePath, *level, *pretty)
	if err != nil {
		return err
	}
	log, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		return err
	}

	manager := session.NewManager(cfg.Session, engine.ExecSpawner{Path: cfg.Session.EnginePath, Log: log}, log, nil)
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := newConsoleChannel(os.Stdout)
	analysisCfg := models.AnalysisConfig{FEN: fen, Depth: *depth, MultiPV: *multiPV, TimeLimit: *timeLimit}
	if err := manager.Start("cli", analysisCfg, out); err != nil {
		return err
	}

	select {
	case <-out.Done():
	case <-ctx.Done():
		manager.Cancel("cli")
	}
	return out.Err()
}
