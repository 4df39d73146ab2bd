package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/storage"
)

// CreateDesign handles POST /api/v1/designs - stores a standalone design from a multipart upload
func CreateDesign(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, apperrors.InvalidInput("INVALID_UPLOAD", "Could not read the uploaded file"))
		return
	}

	design, err := newArtworkMachine().CreateDesign(c.Request.Context(), actorOf(user), c.PostForm("name"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    design,
	})
}

// ListMyDesigns handles GET /api/v1/designs - the caller's design library
func ListMyDesigns(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	designs, err := storage.NewOrderStore(config.GetDB()).ListDesigns(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Preview URLs are presigned per request
	if files := services.GetArtworkStorage(); files != nil {
		for i := range designs {
			if !designs[i].HasFile() {
				continue
			}
			if url, err := files.ArtworkURL(ctx, designs[i].FileKey); err == nil {
				designs[i].PreviewURL = url
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    designs,
	})
}

// DeleteDesign handles DELETE /api/v1/designs/:id - removes an unlinked design and its file
func DeleteDesign(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	designID, err := paramID(c, "id", "INVALID_DESIGN_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := newArtworkMachine().DeleteDesign(c.Request.Context(), designID, actorOf(user)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Design deleted",
	})
}
