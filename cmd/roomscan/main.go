package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/roomscan/internal/config"
	"github.com/banshee-data/roomscan/internal/db"
	"github.com/banshee-data/roomscan/internal/scanner"
	"github.com/banshee-data/roomscan/internal/scene"
	"github.com/banshee-data/roomscan/internal/version"
	"github.com/banshee-data/roomscan/internal/xr"
)

var (
	configPath  = flag.String("config", "", "Path to a scan config JSON file (defaults apply when empty)")
	fixturePath = flag.String("fixture", "", "Path to a runtime fixture JSON file")
	disableXR   = flag.Bool("disable-xr", false, "Run without a runtime; the probe reports unsupported")
	dbPath      = flag.String("db", "", "SQLite file to record cycle outcomes in (disabled when empty)")
	listen      = flag.String("listen", "", "Serve /debug/ admin routes on this address until interrupted")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// connect returns the runtime handles for a cycle.
func connect(fixture string, disabled bool) (scene.Handles, error) {
	if disabled {
		return scene.Handles{Connection: xr.Disabled{}}, nil
	}
	if fixture == "" {
		return scene.Handles{}, fmt.Errorf("a runtime fixture is required (use -fixture or -disable-xr)")
	}
	f, err := xr.LoadFixture(fixture)
	if err != nil {
		return scene.Handles{}, err
	}
	rt, err := f.Runtime()
	if err != nil {
		return scene.Handles{}, fmt.Errorf("invalid fixture %s: %w", fixture, err)
	}
	return scene.Handles{
		Connection:     rt,
		System:         rt.System,
		Session:        rt.Session,
		ReferenceSpace: f.ReferenceSpace,
	}, nil
}

func loadConfig(path string) (*config.ScanConfig, error) {
	if path == "" {
		return config.EmptyScanConfig(), nil
	}
	return config.LoadScanConfig(path)
}

func writeReport(w io.Writer, rep *scanner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	handles, err := connect(*fixturePath, *disableXR)
	if err != nil {
		log.Fatalf("failed to connect to runtime: %v", err)
	}

	opts := scanner.OptionsFromConfig(cfg)
	var store *db.DB
	if *dbPath != "" {
		store, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer store.Close()
		opts.Recorder = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sc := scanner.New(opts)
	rep, _, err := sc.Trigger(ctx, handles)
	if err != nil {
		log.Printf("query cycle failed: %v", err)
	}
	if rep != nil {
		if werr := writeReport(os.Stdout, rep); werr != nil {
			log.Printf("failed to write report: %v", werr)
		}
	}

	if *listen == "" {
		if err != nil {
			os.Exit(1)
		}
		return
	}

	mux := http.NewServeMux()
	sc.AttachAdminRoutes(mux)
	if store != nil {
		if err := store.AttachAdminRoutes(mux); err != nil {
			log.Fatalf("failed to attach db admin routes: %v", err)
		}
	}
	serve(ctx, *listen, mux)
}

// serve runs an HTTP server on addr until ctx is done.
func serve(ctx context.Context, addr string, h http.Handler) {
	server := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()
	log.Printf("serving admin routes on %s", addr)

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}
