package main

import (
	"crypto/sha256"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/handlers"
	"SweetDelights/internal/server"
	"SweetDelights/internal/sessions"
	"SweetDelights/internal/storage"
)

const sessionSweepInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.InsecureSecret() {
		logger.Warn("SESSION_SECRET is not set; using the development default")
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	disk, err := storage.NewDisk(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return err
	}

	client, err := backend.New(store, store, disk)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sess := sessions.New(cfg.SessionDir, cfg.SessionSecret, cfg.SessionTTL, cfg.HTTPS)
	h, err := handlers.New(client, sess, logger,
		handlers.Options{MaxUploadBytes: cfg.MaxUploadBytes(), Location: loc},
	)
	if err != nil {
		return err
	}

	csrfKey := sha256.Sum256([]byte("csrf:" + cfg.SessionSecret))
	router, err := server.NewRouter(h, server.Options{
		Logger:          logger,
		UploadDir:       cfg.UploadDir,
		UploadURLPrefix: cfg.UploadURLPrefix,
		CSRFKey:         csrfKey[:],
		Secure:          cfg.HTTPS,
	})
	if err != nil {
		return err
	}

	logger.Info("starting", zap.String("addr", cfg.Addr()), zap.String("db", cfg.Target()))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg.Addr(), router, logger)
	})
	g.Go(func() error {
		return sess.RunSweeper(gctx, sessionSweepInterval, logger)
	})
	return g.Wait()
}
