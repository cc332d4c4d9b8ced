package httpserver

import (
	"log"
	"time"

	"storefront-bff/internal/cartsync"
	orderrepo "storefront-bff/internal/repository/order"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Deps carries the collaborators the routes need.
type Deps struct {
	Carts          *cartsync.Manager
	Orders         orderrepo.Repository
	JWTSecret      []byte
	AllowedOrigins []string
	DB             *pgxpool.Pool
	Redis          *redis.Client
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB, deps.Redis))

	cart := router.Group("/cart", deviceMiddleware())
	{
		cart.GET("", getCartHandler(deps.Carts))
		cart.POST("/lines", addLineHandler(deps.Carts))
		cart.PATCH("/lines", updateLineHandler(deps.Carts))
		cart.DELETE("/lines", removeLineHandler(deps.Carts))
	}

	account := router.Group("/account", authMiddleware(deps.JWTSecret))
	{
		account.GET("/orders", listOrdersHandler(deps.Orders))
		account.GET("/orders/:orderId", getOrderHandler(deps.Orders))
	}

	return router, nil
}
