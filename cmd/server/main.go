package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"frontier-realm/server/config"
	"frontier-realm/server/handlers"
	"frontier-realm/server/logger"
	"frontier-realm/server/messages"
	"frontier-realm/server/persistence"
	"frontier-realm/server/scene"
	"frontier-realm/server/services"
	"frontier-realm/server/worldgen"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		return true
	},
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load config.")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.Log.WithField("component", "main")

	// Initialize diagnostics storage
	db, err := persistence.Open(cfg.Persistence.Type, cfg.Persistence.File, cfg.Persistence.DSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize persistence.")
	}
	defer db.Close()
	log.WithField("type", cfg.Persistence.Type).Info("Persistence initialized.")

	world, err := worldgen.Generate(cfg.World, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to generate world.")
	}

	validator, err := messages.NewValidator()
	if err != nil {
		log.WithError(err).Fatal("Failed to compile message schema.")
	}

	// Initialize services
	factory := scene.NewHeadless()
	worldService := services.NewWorldService(world, factory, db, cfg.WorldServiceConfig())
	playerService := services.NewPlayerService(worldService)
	clientManager := handlers.NewClientManager()
	worldService.SetBroadcaster(clientManager)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("Failed to upgrade connection.")
			return
		}
		defer conn.Close()

		handlers.HandleClientConnection(conn, validator, playerService, worldService, clientManager)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(worldService.Stats()); err != nil {
			log.WithError(err).Warn("Failed to write stats.")
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := worldService.Run(ctx); err != nil {
			log.WithError(err).Error("World maintenance stopped.")
		}
	}()

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"session": worldService.SessionID(),
		}).Info("Server starting.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed.")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown did not complete.")
	}
	if err := worldService.Close(); err != nil {
		log.WithError(err).Warn("Failed to record session end.")
	}
}
