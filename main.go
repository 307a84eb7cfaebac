package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	a, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	if a.mq != nil {
		if err := a.mq.ConsumeProductEvents(rabbitmq.LogProductEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	log.Printf("Starting server on %s (storage: %s, auth: %t)", cfg.AppPort, cfg.DBDriver, cfg.AuthEnabled)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := a.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// application is the wired process: HTTP app plus the resources it owns.
type application struct {
	app *fiber.App
	db  *gorm.DB
	mq  *rabbitmq.Client
}

// newApplication composes repositories, services and handlers from cfg.
func newApplication(cfg *config.Config) (*application, error) {
	a := &application{}

	var (
		productRepo repositories.ProductRepository
		userRepo    repositories.UserRepository
	)
	switch cfg.DBDriver {
	case config.DriverMemory:
		productRepo = repositories.NewMemoryProductRepository()
		userRepo = repositories.NewMemoryUserRepository()
	default:
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mq = mqClient
		publisher = mqClient
	}

	if cfg.SeedProducts {
		seedProducts(productRepo)
	}

	productService := services.NewProductService(productRepo, publisher)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)

	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	if cfg.AuthEnabled {
		productHandler.RegisterRoutes(api, middleware.AuthRequired(authService))
	} else {
		productHandler.RegisterRoutes(api)
	}

	app.Get("/health", a.handleHealth)

	a.app = app
	return a, nil
}

func (a *application) handleHealth(c *fiber.Ctx) error {
	dbStatus := "memory"
	if a.db != nil {
		dbStatus = "connected"
		if err := database.Ping(a.db); err != nil {
			dbStatus = "unreachable"
		}
	}

	events := "disabled"
	if a.mq != nil {
		events = "connected"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": dbStatus,
		"events":   events,
	})
}

// Close releases the database and broker connections.
func (a *application) Close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// seedProducts adds demo products when the catalog is empty.
func seedProducts(repo repositories.ProductRepository) {
	existing, err := repo.FindAll()
	if err != nil {
		log.Printf("Skipping seed, could not list products: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Price: 1200.00, Stock: 10},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: 75.00, Stock: 25},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: 25.00, Stock: 50},
	}
	for i := range products {
		if err := repo.Save(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %d)", products[i].Name, products[i].ID)
	}
}
