package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms-service/internal/factory"
	"lms-service/internal/handler"
	"lms-service/internal/util"
)

func main() {
	// Initialize factory (which loads config and initializes all clients)
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	cfg := f.Config()
	router := setupRouter(f)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		var err error
		if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			util.Fatal("Server failed to start", util.ErrorField(err))
		}
	}()

	util.Info("Server started successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.CertFile != ""),
		util.String("address", server.Addr),
	)

	waitForShutdown(f, server)
}

// setupRouter creates the HTTP router with all handlers using Chi
func setupRouter(f *factory.Factory) http.Handler {
	services := f.ServiceFactory()
	sessions := services.SessionService()

	authHandler := handler.NewAuthHandler(services.AuthService(), sessions, f.Config())
	catalogHandler := handler.NewCatalogHandler(services.CatalogService(), services.CategoryService())
	enrollmentHandler := handler.NewEnrollmentHandler(services.EnrollmentService(), services.MeetingService(), sessions)
	paymentHandler := handler.NewPaymentHandler(services.PaymentService(), sessions)
	adminHandler := handler.NewAdminHandler(
		services.CatalogService(),
		services.CategoryService(),
		services.EnrollmentService(),
		services.PaymentService(),
		services.AdminService(),
		services.ExportService(),
		sessions,
	)

	return handler.NewRouter(authHandler, catalogHandler, enrollmentHandler,
		paymentHandler, adminHandler, f, util.Get())
}

func waitForShutdown(f *factory.Factory, server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	util.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		util.Error("Server forced to shutdown", util.ErrorField(err))
	}

	if err := f.Close(); err != nil {
		util.Error("Error closing factory", util.ErrorField(err))
	}
	util.Sync()

	util.Info("Server exited")
}
