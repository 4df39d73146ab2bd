package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/middleware"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/services"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// isDuplicate recognises unique constraint failures (works with both PostgreSQL and SQLite)
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique")
}

// CreateUser handles POST /api/v1/users - creates a new user from Auth0 userinfo
// This endpoint requires authentication and fetches user data from Auth0's /userinfo endpoint
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, apperrors.Unauthenticated("Could not extract user ID from token"))
		return
	}
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindUnauthenticated, "MISSING_TOKEN", "Access token not found"))
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	switch {
	case errors.Is(err, services.ErrTokenRejected):
		respondError(c, apperrors.New(apperrors.KindUnauthenticated, "INVALID_TOKEN", "Auth0 did not accept the access token"))
		return
	case err != nil:
		log.Printf("Failed to fetch Auth0 userinfo for %s: %v", auth0ID, err)
		respondError(c, apperrors.Upstream("AUTH0_ERROR", "Failed to fetch user information from Auth0", err))
		return
	}

	if userInfo.Sub != "" && userInfo.Sub != auth0ID {
		respondError(c, apperrors.Forbidden("The profile returned by Auth0 belongs to another user"))
		return
	}
	if userInfo.Email == "" {
		respondError(c, apperrors.InvalidInput("MISSING_EMAIL", "Email not provided by Auth0"))
		return
	}
	if userInfo.Name == "" {
		respondError(c, apperrors.InvalidInput("MISSING_NAME", "Name not provided by Auth0"))
		return
	}

	// The role claim is only read once, when the profile is created
	role := models.RoleCustomer
	if claimed := middleware.GetRole(c); claimed != "" {
		role = claimed
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    role,
	}

	db := config.GetDB()
	if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			respondError(c, apperrors.Conflict("USER_EXISTS", "A user with this Auth0 ID or email already exists"))
			return
		}
		respondError(c, apperrors.Internal("Failed to create user", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's profile
func UpdateMyProfile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	// Update fields if provided
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}

	// If no fields to update, return current user
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Model(user).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			respondError(c, apperrors.Conflict("EMAIL_EXISTS", "A user with this email already exists"))
			return
		}
		respondError(c, apperrors.Internal("Failed to update user profile", err))
		return
	}

	// Fetch updated user to return
	if err := db.First(user, user.ID).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to fetch updated profile", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
