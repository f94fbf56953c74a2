package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	cartrepo "ando-storefront/internal/repository/cart"
	discountrepo "ando-storefront/internal/repository/discount"
	favoritesrepo "ando-storefront/internal/repository/favorites"
	orderrepo "ando-storefront/internal/repository/order"
	promorepo "ando-storefront/internal/repository/promo"
	customersvc "ando-storefront/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderCompletedPublisher is the eventing dependency of checkout; nil
// disables publishing.
type OrderCompletedPublisher interface {
	PublishOrderCompleted(ctx context.Context, orderID, userID, discountID, promoID string) error
}

// Deps carries everything the routes need.
type Deps struct {
	CustomerSvc   *customersvc.Service
	CartRepo      cartrepo.Repository
	FavoritesRepo favoritesrepo.Repository
	DiscountRepo  discountrepo.Repository
	PromoRepo     promorepo.Repository
	OrderRepo     orderrepo.Repository
	Publisher     OrderCompletedPublisher
	RetryAttempts int
	RetryBackoff  time.Duration
	DeliveryFee   int64
}

func (d Deps) validate() error {
	if d.CustomerSvc == nil || d.CartRepo == nil || d.FavoritesRepo == nil ||
		d.DiscountRepo == nil || d.PromoRepo == nil || d.OrderRepo == nil {
		return errors.New("httpserver: missing dependencies")
	}
	return nil
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", sessionHeader)
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, sessionHeader)
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	registry := newSessionRegistry(newDeviceSessionFactory(deps, logger), logger)
	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/", sessionMiddleware(registry))
	{
		api.POST("/signup", h.signup)
		api.POST("/login", h.login)

		api.GET("/me/cart", h.getCart)
		api.DELETE("/me/cart", h.clearCart)
		api.POST("/me/cart/items", h.addCartItem)
		// Variant keys contain slashes, so the item routes take a catch-all.
		api.PATCH("/me/cart/items/*variantKey", h.updateCartItem)
		api.DELETE("/me/cart/items/*variantKey", h.removeCartItem)

		api.GET("/me/favorites", h.listFavorites)
		api.POST("/me/favorites/toggle", h.toggleFavorite)

		api.GET("/me/discounts", h.listDiscounts)

		api.POST("/checkout/promo", h.applyPromo)
		api.DELETE("/checkout/promo", h.removePromo)
		api.POST("/checkout/summary", h.summarize)
		api.POST("/checkout/complete", h.completeOrder)
	}

	return router, nil
}
