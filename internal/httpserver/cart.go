package httpserver

import (
	"errors"
	"net/http"

	"storefront-bff/internal/cartsync"
	"storefront-bff/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	deviceCookie    = "device_token"
	deviceCookieAge = 365 * 24 * 60 * 60
	deviceCtxKey    = "deviceID"
)

// deviceMiddleware gives every visitor a stable device token so the same
// browser resumes the same cart across sessions.
func deviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(deviceCookie)
		if err != nil || token == "" {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(deviceCookie, token, deviceCookieAge, "/", "", false, true)
		}
		c.Set(deviceCtxKey, token)
		c.Next()
	}
}

func deviceID(c *gin.Context) string {
	return c.GetString(deviceCtxKey)
}

type addLineRequest struct {
	VariantID string          `json:"variantId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	Snapshot  domain.Snapshot `json:"snapshot"`
}

type updateLineRequest struct {
	VariantID string `json:"variantId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type removeLineRequest struct {
	VariantID string `json:"variantId" binding:"required"`
}

func getCartHandler(carts *cartsync.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := carts.StoreFor(deviceID(c))
		cart, err := store.EnsureHydrated(c.Request.Context())
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

func addLineHandler(carts *cartsync.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
			return
		}
		store := carts.StoreFor(deviceID(c))
		if _, err := store.EnsureHydrated(c.Request.Context()); err != nil {
			writeCartError(c, err)
			return
		}
		cart, err := store.AddItem(c.Request.Context(), req.VariantID, req.Quantity, req.Snapshot)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

func updateLineHandler(carts *cartsync.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
			return
		}
		store := carts.StoreFor(deviceID(c))
		if _, err := store.EnsureHydrated(c.Request.Context()); err != nil {
			writeCartError(c, err)
			return
		}
		cart, err := store.UpdateQuantity(c.Request.Context(), req.VariantID, req.Quantity)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

func removeLineHandler(carts *cartsync.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req removeLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
			return
		}
		store := carts.StoreFor(deviceID(c))
		if _, err := store.EnsureHydrated(c.Request.Context()); err != nil {
			writeCartError(c, err)
			return
		}
		cart, err := store.RemoveItem(c.Request.Context(), req.VariantID)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

// writeCartError maps store failures onto storefront-friendly statuses.
// Platform rejection messages pass through verbatim; transport details do
// not leak to the browser.
func writeCartError(c *gin.Context, err error) {
	var pe *domain.PlatformError
	var te *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"code": "busy", "message": "an update for this item is still in progress"})
	case errors.Is(err, cartsync.ErrInvalidVariant), errors.Is(err, cartsync.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "no such cart line"})
	case errors.As(err, &pe):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "rejected", "message": pe.Message})
	case errors.As(err, &te):
		c.JSON(http.StatusBadGateway, gin.H{"code": "unavailable", "message": "cart service unreachable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": "internal error"})
	}
}
