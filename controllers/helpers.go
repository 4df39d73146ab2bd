package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/artwork"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/orders"
	"github.com/kendall-kelly/printshop-api/pricing"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/storage"
)

// respondError writes the error envelope for err. Unclassified errors are logged and
// reported as internal errors without their details.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		log.Printf("Unexpected error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		appErr = apperrors.Internal("Something went wrong", err)
	}
	if appErr.Kind == apperrors.KindInternal || appErr.Kind == apperrors.KindUpstream {
		log.Printf("%s on %s %s: %v", appErr.Code, c.Request.Method, c.FullPath(), appErr)
	}

	c.JSON(appErr.Kind.HTTPStatus(), gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// currentUser loads the profile of the authenticated caller
func currentUser(c *gin.Context) (*models.User, error) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, apperrors.Unauthenticated("Could not extract user information")
	}

	var user models.User
	if err := config.GetDB().WithContext(c.Request.Context()).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		}
		return nil, apperrors.Internal("Failed to load user profile", err)
	}
	return &user, nil
}

func actorOf(user *models.User) artwork.Actor {
	return artwork.Actor{UserID: user.ID, IsAdmin: user.IsAdmin()}
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name, code string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidInput(code, "Invalid "+name+" parameter")
	}
	return uint(id), nil
}

// newArtworkMachine wires the artwork state machine for one request
func newArtworkMachine() *artwork.Machine {
	db := config.GetDB()
	cfg := config.GetConfig()
	return artwork.NewMachine(
		storage.NewOrderStore(db),
		services.GetArtworkStorage(),
		services.NotifierFor(db),
		artwork.Options{
			UploadTimeout:      cfg.UploadTimeout,
			AllowAdminApproval: cfg.AllowAdminApproval,
		},
	)
}

// newOrderService wires the order service for one request
func newOrderService() *orders.Service {
	db := config.GetDB()
	cfg := config.GetConfig()
	return orders.NewService(
		storage.NewOrderStore(db),
		storage.NewProductStore(db),
		services.NotifierFor(db),
		pricing.Rates{
			TaxRate:               cfg.TaxRate,
			ShippingFlatRate:      cfg.ShippingFlatRate,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
		},
	)
}
