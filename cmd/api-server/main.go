package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/blobstore"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/database"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/env"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/panel"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/version"
)

var _cfgFile = flag.String("cfg", "", "path to config file")

func main() {
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

type config struct {
	httpHost string
	httpPort int
	db       struct {
		dsn         string
		automigrate bool
	}
	intake struct {
		secret string
	}
	dataDir string
}

type application struct {
	config config
	db     *database.DB
	logger *slog.Logger
	hub    *panel.Hub
	blobs  *blobstore.Store
	wg     sync.WaitGroup
}

func run(logger *slog.Logger) error {
	var cfg config

	if *_cfgFile != "" {
		err := env.Load(*_cfgFile)
		if err != nil {
			return err
		}
	}

	cfg.httpHost = env.GetString("HTTP_HOST", "localhost")
	cfg.httpPort = env.GetInt("HTTP_PORT", 8080)
	cfg.db.dsn = env.GetString("DB_DSN", "postgres:postgres@localhost:5432/postgres")
	cfg.db.automigrate = env.GetBool("DB_AUTOMIGRATE", true)
	cfg.intake.secret = env.GetString("INTAKE_API_SECRET", "")
	cfg.dataDir = env.GetString("DATA_DIR", "./data")

	showVersion := flag.Bool("version", false, "display version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	if cfg.intake.secret == "" {
		logger.Warn("INTAKE_API_SECRET is empty; intake endpoints will refuse all requests")
	}

	db, err := database.New(cfg.db.dsn, cfg.db.automigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	blobs, err := blobstore.New(logger, cfg.dataDir)
	if err != nil {
		return err
	}

	app := &application{
		config: cfg,
		db:     db,
		logger: logger,
		hub:    panel.NewHub(logger),
		blobs:  blobs,
	}

	return app.serveHTTP()
}

func (app *application) backgroundTask(fn func() error) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if rec := recover(); rec != nil {
				app.logger.Error("background task panic", "error", fmt.Sprintf("%v", rec))
			}
		}()

		if err := fn(); err != nil {
			app.logger.Error("background task failed", "error", err.Error())
		}
	}()
}
