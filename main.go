// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"go-propmarket/config"
	"go-propmarket/controllers"
	"go-propmarket/gateway"
	"go-propmarket/repository"
	"go-propmarket/routes"
	"go-propmarket/services"
	"go-propmarket/utils"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found. Proceeding with environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx := context.Background()

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.Mongo.URI)
	if err != nil {
		log.WithError(err).Fatal("connect to mongo")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("mongo disconnect")
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	// Repositories for the order flow
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	orderRepo, err := repository.NewOrderRepository(indexCtx, db)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("init order repository")
	}
	propertyRepo := repository.NewPropertyRepository(db)
	userRepo := repository.NewUserRepository(db)

	// External collaborators
	razorpayClient := gateway.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Timeout)
	imageStore, err := utils.NewCloudinaryStore(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
	if err != nil {
		log.WithError(err).Fatal("init image store")
	}
	var mailer controllers.Mailer
	if cfg.Postmark.ServerToken != "" {
		mailer = utils.NewEmailService(cfg.Postmark.ServerToken, cfg.Postmark.Sender)
	}

	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	orderService := services.NewOrderService(orderRepo, propertyRepo, userRepo, razorpayClient, cfg.Razorpay.WebhookSecret, cfg.Razorpay.Currency, log)

	// Controllers
	userController := controllers.NewUserController(db, tokens, log)
	propertyController := controllers.NewPropertyController(db, imageStore, log)
	wishlistController := controllers.NewWishlistController(db, log)
	orderController := controllers.NewOrderController(orderService, userRepo, mailer, cfg.Razorpay.KeyID, log)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, tokens, userController, propertyController, wishlistController, orderController)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.HTTP.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      corsHandler,
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	}

	go func() {
		log.WithField("port", cfg.HTTP.Port).Info("server is running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}
