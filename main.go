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

	"github.com/gorilla/mux"
	"github.com/sethvargo/go-password/password"
	"gopkg.in/natefinch/lumberjack.v2"

	"watchdeck/api"
	"watchdeck/config"
	"watchdeck/handlers"
	"watchdeck/internal/database"
	"watchdeck/services/accounts"
	authsvc "watchdeck/services/auth"
	"watchdeck/services/metadata"
	"watchdeck/services/users"
	"watchdeck/services/watchlist"
)

const defaultAdminEmail = "admin@localhost"

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configFlag := flag.String("config", "", "path to settings file")
	flag.Parse()

	fmt.Println("watchdeck starting...")

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("WATCHDECK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

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

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Mint a token-signing secret on first boot and persist it so sessions
	// survive restarts.
	if settings.Auth.Secret == "" {
		secret, err := password.Generate(48, 12, 0, false, true)
		if err != nil {
			log.Fatalf("failed to generate auth secret: %v", err)
		}
		settings.Auth.Secret = secret
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist auth secret: %v", err)
		}
	}

	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	accountsSvc := accounts.NewService(db)
	usersSvc := users.NewService(db)
	watchlistSvc := watchlist.NewService(db)
	metadataSvc := metadata.NewService(
		settings.Metadata.TMDBAPIKey,
		settings.Metadata.Language,
		settings.Metadata.Region,
		nil,
	)
	if !metadataSvc.Configured() {
		log.Println("Warning: TMDB API key not configured; search and details will be unavailable")
	}

	// First boot: create the admin account with a generated password and
	// print it once. It is never persisted in plaintext.
	ctx := context.Background()
	if n, err := accountsSvc.Count(ctx); err != nil {
		log.Fatalf("failed to count accounts: %v", err)
	} else if n == 0 {
		adminPassword, err := password.Generate(16, 4, 0, false, false)
		if err != nil {
			log.Fatalf("failed to generate admin password: %v", err)
		}
		if _, err := accountsSvc.Create(ctx, defaultAdminEmail, adminPassword, true); err != nil {
			log.Fatalf("failed to create admin account: %v", err)
		}
		fmt.Println("============================================")
		fmt.Printf("  Admin account created: %s\n", defaultAdminEmail)
		fmt.Printf("  Password: %s\n", adminPassword)
		fmt.Println("  Change it after first login.")
		fmt.Println("============================================")
	}

	authService := authsvc.New(settings.Auth, settings.Server.BaseURL, accountsSvc)

	watchlistHandler := handlers.NewWatchlistHandler(watchlistSvc)
	watchlistHandler.SetUserMirror(usersSvc)
	metadataHandler := handlers.NewMetadataHandler(metadataSvc)
	usersHandler := handlers.NewUsersHandler(usersSvc)

	r := mux.NewRouter()
	api.Register(r, authService, watchlistHandler, metadataHandler, usersHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
