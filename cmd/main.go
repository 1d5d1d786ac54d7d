package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"cafe-order-service/internal/api"
	"cafe-order-service/internal/config"
	"cafe-order-service/internal/consumer"
	"cafe-order-service/internal/repository"
	"cafe-order-service/internal/service"
	"cafe-order-service/migrations"
)

func connectDBEnv() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "3306")
	user := getEnv("DB_USER", "root")
	pass := getEnv("DB_PASS", "")
	dbname := getEnv("DB_NAME", "cafe")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, dbname, host, port, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", dbname, host, port, err)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	db, err := connectDBEnv()
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrate(db, 3); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})

	jwtSecret := []byte(getEnv("JWT_SECRET", "secret"))

	kafkaWriter := config.NewKafkaWriter("order-topic")
	kafkaReader := config.NewKafkaReader("order-topic", "notification-group")

	orderRepo := repository.NewOrderRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	userRepo := repository.NewUserRepository(db)

	carts := service.NewCartStore()
	idempotency := service.NewRedisIdempotencyStore(rdb)

	orderService := service.NewOrderService(orderRepo, promoRepo, menuRepo, rewardRepo, carts, idempotency, kafkaWriter, service.DefaultPricingConfig())
	menuService := service.NewMenuService(menuRepo)
	promoService := service.NewPromoService(promoRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo)
	rewardService := service.NewRewardService(rewardRepo)
	userService := service.NewUserService(userRepo, rdb, jwtSecret)

	orderHandler := api.NewOrderHandler(orderService)
	cartHandler := api.NewCartHandler(carts, menuRepo)
	menuHandler := api.NewMenuHandler(menuService)
	promoHandler := api.NewPromoHandler(promoService)
	favoriteHandler := api.NewFavoriteHandler(favoriteService)
	userHandler := api.NewUserHandler(userService, rewardService)

	notifications := consumer.NewNotificationConsumer(kafkaReader, rdb)
	go notifications.Start(context.Background())

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/api/users/register", userHandler.Register)
	e.POST("/api/users/login", userHandler.Login)
	e.GET("/api/users/validate", userHandler.ValidateSession)
	e.GET("/api/menu", menuHandler.ListMenu)

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "cafe-order-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	auth := e.Group("/api", api.NewJWTMiddleware(jwtSecret))

	auth.POST("/cart/add", cartHandler.AddItem)
	auth.POST("/add-to-cart", cartHandler.AddToCartLegacy)
	auth.GET("/cart", cartHandler.GetCart)
	auth.PUT("/cart/:itemId", cartHandler.SetQuantity)
	auth.DELETE("/cart/:itemId", cartHandler.RemoveItem)
	auth.POST("/cart/checkout", orderHandler.Checkout)

	auth.GET("/order/my-orders/:userId", orderHandler.MyOrders)
	auth.GET("/order/:orderId", orderHandler.GetOrder)
	auth.POST("/order/update-order/:orderId", orderHandler.UpdateOrder)
	auth.DELETE("/order/delete/:orderId", orderHandler.DeleteOrder)

	auth.POST("/favorite/add", favoriteHandler.Toggle)
	auth.DELETE("/favorites/remove", favoriteHandler.Remove)
	auth.GET("/favorite/user-favorites", favoriteHandler.List)
	auth.POST("/favorite/merge", favoriteHandler.Merge)

	auth.GET("/users/me", userHandler.Me)
	auth.GET("/rewards/balance", userHandler.RewardBalance)

	auth.POST("/staff/create-promo", promoHandler.CreatePromo, api.RequireStaff)
	auth.GET("/staff/get-all-promo", promoHandler.ListPromos, api.RequireStaff)
	auth.POST("/staff/create-menu", menuHandler.CreateMenuItem, api.RequireStaff)

	e.Logger.Fatal(e.Start(":" + getEnv("PORT", "8082")))
}
