package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logging"
	"gitlab.com/dirk.krummacker/contacts-api/internal/service"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8080 DBDRIVER=mongo MONGO_URI=mongodb://localhost:27017 GIN_MODE=release GIN_LOGGING=OFF go run main.go
// > PORT=8080 DBDRIVER=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("could not load configuration", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile, gin.Mode() == gin.DebugMode)
	if err != nil {
		fmt.Println("could not create logger", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("service stopped", zap.Error(err))
	}
}

// run serves the REST API until SIGINT or SIGTERM is received.
func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	contacts, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := contacts.Close(context.Background()); err != nil {
			log.Error("Could not close the database", zap.Error(err))
		}
	}()

	router := service.SetupHttpRouter(contacts, log, service.Options{
		RequestLogging:    cfg.RequestLogging(),
		Metrics:           true,
		MissingNameStatus: cfg.MissingNameStatus,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.Int("port", cfg.Port), zap.String("dbdriver", cfg.DBDriver))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server shutdown completed")
	return nil
}
