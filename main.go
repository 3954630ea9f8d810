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
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"reeltrack/api"
	"reeltrack/config"
	"reeltrack/handlers"
	"reeltrack/internal/database"
	"reeltrack/services/accounts"
	"reeltrack/services/catalog"
	"reeltrack/services/library"
	"reeltrack/services/recommend"
	"reeltrack/services/sessions"
	"reeltrack/utils"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🎬 reeltrack starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("REELTRACK_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	// Apply port override if specified
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Generate a session secret on first run and persist it so tokens
	// survive restarts.
	settings.Auth.SessionSecret = strings.TrimSpace(settings.Auth.SessionSecret)
	if settings.Auth.SessionSecret == "" {
		secret, err := utils.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("failed to generate session secret: %v", err)
		}
		settings.Auth.SessionSecret = secret
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist session secret: %v", err)
		}
		fmt.Println("🔑 Generated new session secret")
	}

	if settings.Catalog.TMDBAPIKey == "" {
		log.Printf("warning: no TMDB API key configured; catalog search and recommendations will fail")
	}

	// Open the database and apply migrations
	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Services
	accountsSvc := accounts.NewService(db)
	sessionsSvc, err := sessions.NewService(
		settings.Auth.SessionSecret,
		time.Duration(settings.Auth.TokenTTLMinutes)*time.Minute,
	)
	if err != nil {
		log.Fatalf("failed to initialise sessions: %v", err)
	}
	librarySvc := library.NewService(db)
	catalogClient := catalog.NewClient(settings.Catalog.TMDBAPIKey, settings.Catalog.Language, nil)
	recommendSvc := recommend.NewService(librarySvc, catalogClient)

	// Handlers
	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc)
	libraryHandler := handlers.NewLibraryHandler(librarySvc)
	catalogHandler := handlers.NewCatalogHandler(catalogClient, recommendSvc)
	imageHandler := handlers.NewImageHandler(filepath.Dir(settings.Database.Path))

	r := mux.NewRouter()
	api.Register(r, authHandler, libraryHandler, catalogHandler, imageHandler, sessionsSvc)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	log.Println("✅ Shutdown complete")
}
