package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"movieflex/api"
	"movieflex/config"
	"movieflex/handlers"
	"movieflex/services/catalog"
	"movieflex/services/metadata"
	"movieflex/services/pages"
	"movieflex/services/search"
	"movieflex/views"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configFlag := flag.String("config", "", "path to settings file (.json or .toml)")
	flag.Parse()

	fmt.Println("🎬 MovieFlex Starting...")

	// Determine config path (flag, env or default)
	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("MOVIEFLEX_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	metadataService := metadata.NewService(metadata.Config{
		APIKey:         settings.Metadata.TMDBAPIKey,
		Language:       settings.Metadata.Language,
		ImageBaseURL:   settings.Images.BaseURL,
		PlaceholderURL: settings.Images.PlaceholderURL,
		Timeout:        settings.Metadata.Timeout(),
	}, nil)
	if !metadataService.Configured() {
		fmt.Printf("⚠️  No TMDB API key configured; set metadata.tmdbApiKey in %s or TMDB_API_KEY\n", cfgManager.Path())
	}
	log.Printf("[main] metadata language %s", metadataService.Language())

	// Eager views are parsed here; a broken one stops start-up.
	renderer, err := views.New(settings.Theme)
	if err != nil {
		log.Fatalf("failed to prepare views: %v", err)
	}

	registry := pages.NewRegistry(metadataService, settings.Pages.MaxInstances, settings.Pages.TTL())
	feeds := catalog.NewService(metadataService)
	searcher := search.NewService(metadataService)

	r := api.NewRouter()
	api.Register(r,
		handlers.NewSiteHandler(renderer, feeds, searcher, registry),
		handlers.NewMetadataHandler(feeds, searcher, registry),
		registry.Len,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: settings.Metadata.Timeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Abandon whatever detail pages are still loading.
	log.Printf("🧹 Closing %d open page(s)...", registry.Len())
	registry.CloseAll()

	log.Println("✅ Shutdown complete")
}
