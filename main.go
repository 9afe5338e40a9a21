package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"marquee/api"
	"marquee/internal/database"
	"marquee/services/channels"
	"marquee/services/intro"
	"marquee/services/library"
	"marquee/services/metadata"
	"marquee/services/prequeue"
	"marquee/services/preroll"
	"marquee/services/settings"
	"marquee/services/trailers"
	"marquee/utils"
)

const (
	metadataTTLHours    = 6
	refreshInterval     = 12 * time.Hour
	trailersPerCategory = 30
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		addr     string
		dataDir  string
		tmdbKey  string
		language string
		logFile  string
	)
	flag.StringVar(&addr, "addr", getenv("MARQUEE_ADDR", ":7474"), "listen address")
	flag.StringVar(&dataDir, "data", getenv("MARQUEE_DATA_DIR", "./data"), "data directory")
	flag.StringVar(&tmdbKey, "tmdb-key", os.Getenv("TMDB_API_KEY"), "TMDB API key")
	flag.StringVar(&language, "language", getenv("MARQUEE_LANGUAGE", "en-US"), "TMDB language")
	flag.StringVar(&logFile, "log-file", os.Getenv("MARQUEE_LOG_FILE"), "log file (rotated); empty logs to stdout only")
	flag.Parse()

	if logFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}))
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(dataDir, "marquee.db")})
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	settingsSvc, err := settings.NewService(dataDir)
	if err != nil {
		log.Fatalf("init settings: %v", err)
	}

	librarySvc := library.NewService(db.Items)
	metadataSvc := metadata.NewService(tmdbKey, language, dataDir, metadataTTLHours)
	channelsSvc := channels.NewService(metadataSvc, settingsSvc)

	prequeueMgr, err := prequeue.NewManager(afero.NewOsFs(), filepath.Join(dataDir, "trailers"), nil)
	if err != nil {
		log.Fatalf("init prequeue: %v", err)
	}
	defer prequeueMgr.Stop()

	rng := utils.NewLockedRand()
	introSvc := intro.NewService(
		settingsSvc,
		librarySvc,
		preroll.NewSelector(librarySvc, rng),
		trailers.NewSelector(metadataSvc, librarySvc, rng),
		rng,
	)

	router := utils.NewRouter()
	router.Use(api.RequestLogger())
	registerRoutes(router, introSvc, librarySvc, metadataSvc, channelsSvc, prequeueMgr, settingsSvc)

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	if tmdbKey != "" {
		go refreshLoop(refreshCtx, metadataSvc)
	} else {
		log.Printf("[main] no TMDB API key configured, trailer refresh disabled")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-done
	log.Printf("[main] shutdown signal received")
	stopRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] graceful shutdown failed: %v", err)
		srv.Close()
	}
	log.Printf("[main] server stopped")
}

// refreshLoop keeps the trailer metadata cache warm: one refresh at boot,
// then on a fixed interval.
func refreshLoop(ctx context.Context, svc *metadata.Service) {
	refresh := func() {
		refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		if err := svc.Refresh(refreshCtx, trailersPerCategory); err != nil {
			log.Printf("[main] trailer refresh failed: %v", err)
		}
	}
	refresh()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}
