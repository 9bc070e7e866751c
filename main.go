package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clothfit/internal/auth"
	"clothfit/internal/catalog"
	"clothfit/internal/config"
	"clothfit/internal/handlers"
	"clothfit/internal/kvstore"
	"clothfit/internal/logger"
	"clothfit/internal/middleware"
	"clothfit/internal/session"
)

func main() {
	config.Load()
	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Log.Sync()

	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		logger.Log.Fatal("store unavailable", zap.String("backend", config.AppEnv.StoreBackend), zap.Error(err))
	}

	cat, err := catalog.LoadFile(config.AppEnv.CatalogPath)
	if err != nil {
		logger.Log.Fatal("catalog load failed", zap.String("path", config.AppEnv.CatalogPath), zap.Error(err))
	}
	logger.Log.Info("catalog loaded", zap.Int("products", cat.Len()))

	pricing := session.Pricing{
		ShippingFee:  config.AppEnv.ShippingFee,
		ExchangeRate: config.AppEnv.ExchangeRate,
	}
	sessions := session.NewRegistry(cat, store, pricing, config.AppEnv.PageSize)
	go sweepSessions(sessions, config.AppEnv.SessionIdleTTL)

	authSvc := auth.NewService(store, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.DemoOTP)
	checkoutHandlers := handlers.NewCheckoutHandlers(sessions)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(middleware.Session())

	r.GET("/", handlers.Home(cat))
	r.GET("/products", handlers.GetProducts(cat, sessions))
	r.GET("/products/:id", handlers.GetProduct(cat))
	r.GET("/categories", handlers.GetCategories(cat))

	r.GET("/cart", handlers.GetCart(sessions))
	r.POST("/cart/items", handlers.AddCartItem(sessions))
	r.PUT("/cart/items", handlers.UpdateCartItem(sessions))
	r.DELETE("/cart/items", handlers.RemoveCartLine(sessions))
	r.DELETE("/cart/items/:id", handlers.RemoveCartProduct(sessions))

	r.GET("/wishlist", handlers.GetWishlist(sessions))
	r.POST("/wishlist/:id/toggle", handlers.ToggleWishlist(sessions))

	co := r.Group("/checkout")
	co.Use(middleware.RequireSession())
	{
		co.POST("", checkoutHandlers.Begin())
		co.PUT("/shipping", checkoutHandlers.SetShipping())
		co.PUT("/payment", checkoutHandlers.SetPayment())
		co.POST("/step/:step", checkoutHandlers.GoToStep())
		co.GET("/review", checkoutHandlers.Review())
		co.POST("/order", checkoutHandlers.PlaceOrder())
		co.DELETE("", checkoutHandlers.Close())
	}

	r.POST("/auth/register", handlers.Register(authSvc))
	r.POST("/auth/register/verify", handlers.RegisterVerify(authSvc))
	r.POST("/auth/login", handlers.Login(authSvc))
	r.POST("/auth/login/verify", handlers.LoginVerify(authSvc))
	r.POST("/auth/logout", handlers.Logout(authSvc))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(authSvc))

	logger.Log.Info("listening", zap.String("port", config.AppEnv.Port))
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}

// sweepSessions periodically drops sessions that carried no request for
// maxIdle. Their cart and wishlist stay in the store and rehydrate on the
// next request with the same cookie.
func sweepSessions(r *session.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if n := r.Sweep(maxIdle); n > 0 {
			logger.Log.Info("idle sessions evicted", zap.Int("count", n))
		}
	}
}

func openStore(ctx context.Context) (kvstore.Store, error) {
	switch config.AppEnv.StoreBackend {
	case "mongo":
		client, err := kvstore.ConnectMongo(ctx, config.AppEnv.MongoURI)
		if err != nil {
			return nil, err
		}
		store := kvstore.NewMongoStore(client.Database(config.AppEnv.DBName))
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Log.Warn("kv index warning", zap.Error(err))
		}
		return store, nil
	case "memory":
		return kvstore.NewMemoryStore(), nil
	default:
		client, err := kvstore.ConnectRedis(ctx, config.AppEnv.RedisAddr)
		if err != nil {
			return nil, err
		}
		return kvstore.NewRedisStore(client, 0), nil
	}
}
