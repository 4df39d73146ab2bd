package controllers

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/utils"
)

// GetUploadedArtwork handles GET /api/v1/uploads/:filename - artwork kept by the local storage backend.
// ?download=<name> sends it as an attachment under that name.
func GetUploadedArtwork(c *gin.Context) {
	key := c.Param("filename")

	// Only names minted by utils.NewStorageKey are joined onto the upload directory
	if !utils.IsStorageKey(key) {
		respondError(c, apperrors.InvalidInput("INVALID_FILENAME", "Invalid filename"))
		return
	}

	path := filepath.Join(utils.UploadDir, key)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(c, apperrors.NotFound("FILE_NOT_FOUND", "Artwork not found"))
			return
		}
		respondError(c, apperrors.Internal("Failed to read artwork", err))
		return
	}

	if download := c.Query("download"); download != "" {
		c.FileAttachment(path, filepath.Base(download))
		return
	}

	contentType, _ := utils.ArtworkContentType(key)
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.File(path)
}
