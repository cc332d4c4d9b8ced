package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-bff/internal/domain"
	orderrepo "storefront-bff/internal/repository/order"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler(orders orderrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		results, err := orders.ListByCustomer(c.Request.Context(), customerID(c), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": "internal error"})
			return
		}
		if results == nil {
			results = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": results})
	}
}

func getOrderHandler(orders orderrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.GetByID(c.Request.Context(), customerID(c), c.Param("orderId"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
