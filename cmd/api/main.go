package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"

	_ "github.com/jackc/pgx/v5/stdlib"

	"sce-storefront/internal/email"
	"sce-storefront/internal/handlers"
	"sce-storefront/internal/middleware"
	"sce-storefront/internal/payments"
	"sce-storefront/internal/store"
	ws "sce-storefront/internal/websocket"
)

// This struct will hold our loaded configuration
type Config struct {
	DSN             string `mapstructure:"DSN"`
	JwtSecret       string `mapstructure:"JWT_SECRET"`
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	BaseURL         string `mapstructure:"BASE_URL"`
	Port            string `mapstructure:"PORT"`
	EmailSMTPHost   string `mapstructure:"EMAIL_SMTP_HOST"`
	EmailSMTPPort   int    `mapstructure:"EMAIL_SMTP_PORT"`
	EmailUser       string `mapstructure:"EMAIL_USER"`
	EmailPassword   string `mapstructure:"EMAIL_PASSWORD"`
}

// loadConfig reads config.env from the working directory, with environment
// variables taking precedence.
func loadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("EMAIL_SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("EMAIL_SMTP_PORT", 587)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

func main() {
	log.Println("Starting storefront server...")

	// Load Configuration
	config, err := loadConfig()
	if err != nil {
		log.Fatal("cannot load config:", err)
	}
	if config.DSN == "" {
		log.Fatal("DSN is required")
	}
	if config.JwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if config.StripeSecretKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required")
	}

	// Connect to the Database
	db, err := sqlx.Connect("pgx", config.DSN)
	if err != nil {
		log.Fatal("cannot connect to database:", err)
	}
	defer db.Close()
	log.Println("Successfully connected to PostgreSQL!")

	// Stores
	items := store.NewItemDB(db)
	options := store.NewDonationOptionDB(db)
	purchases := store.NewPurchaseDB(db)
	users := store.NewUserDB(db)

	// Payment gateway and mailer
	gateway := payments.NewStripeGateway(config.StripeSecretKey)
	mailer := email.NewMailer(config.EmailSMTPHost, config.EmailSMTPPort, config.EmailUser, config.EmailPassword)

	// Start the admin alert hub
	hub := ws.NewHub()
	go hub.Run()

	// Set up our Gin router
	r := gin.Default()
	r.Use(cors.Default())

	// Simple test route
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Create handler instances
	authHandler := handlers.NewAuthHandler(users, mailer, config.JwtSecret, config.BaseURL)
	itemHandler := handlers.NewItemHandler(items)
	optionHandler := handlers.NewDonationOptionHandler(options)
	purchaseHandler := handlers.NewPurchaseHandler(purchases)
	checkoutHandler := handlers.NewCheckoutHandler(gateway, config.BaseURL)
	successHandler := handlers.NewSuccessHandler(purchases, items, gateway, hub)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// The provider redirects the donor's browser here after payment.
	r.GET("/success", successHandler.Show)

	// All API routes under /api
	api := r.Group("/api")
	{
		// Auth endpoints
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/reset-password", authHandler.RequestPasswordReset)
			auth.POST("/reset-password/confirm", authHandler.ConfirmPasswordReset)
		}

		// Public storefront endpoints
		api.GET("/items", itemHandler.List)
		api.GET("/donation-options", optionHandler.List)
		api.POST("/checkout-sessions", checkoutHandler.CreateSession)

		// Admin endpoints, guarded by a server-issued token
		admin := api.Group("/")
		admin.Use(middleware.AuthMiddleware(config.JwtSecret))
		{
			admin.POST("/items", itemHandler.Create)
			admin.PUT("/items/:id", itemHandler.Update)
			admin.DELETE("/items/:id", itemHandler.Delete)
			admin.POST("/items/:id/decrement", itemHandler.Decrement)

			admin.PUT("/donation-options", optionHandler.Replace)

			admin.GET("/purchases", purchaseHandler.List)
			admin.GET("/purchases/export", purchaseHandler.Export)

			admin.GET("/ws", wsHandler.ServeWs)
		}
	}

	// Start the server
	log.Println("Server starting on port " + config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatal("could not start server:", err)
	}
}
