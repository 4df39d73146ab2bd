package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/storage"
)

// ListProducts handles GET /api/v1/products - the active catalog with price tiers and options
func ListProducts(c *gin.Context) {
	products, err := storage.NewProductStore(config.GetDB()).ListProducts(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	productID, err := paramID(c, "id", "INVALID_PRODUCT_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := storage.NewProductStore(config.GetDB()).GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	// Retired products stay readable through orders, not the storefront
	if !product.Active {
		respondError(c, apperrors.NotFound("PRODUCT_NOT_FOUND", "Product not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}
