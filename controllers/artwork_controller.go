package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/apperrors"
)

const (
	ActionApprove         = "approve"
	ActionLink            = "link"
	ActionStartReview     = "start_review"
	ActionRequestApproval = "request_approval"
)

// ArtworkActionRequest represents the request body for PUT .../artwork
type ArtworkActionRequest struct {
	Action   string `json:"action" binding:"required,oneof=approve link start_review request_approval"`
	DesignID uint   `json:"design_id"`
}

// RevisionRequest represents the request body for requesting artwork changes
type RevisionRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// itemParams parses the order and item ids of an item route
func itemParams(c *gin.Context) (orderID, itemID uint, err error) {
	if orderID, err = paramID(c, "id", "INVALID_ORDER_ID"); err != nil {
		return 0, 0, err
	}
	if itemID, err = paramID(c, "itemId", "INVALID_ITEM_ID"); err != nil {
		return 0, 0, err
	}
	return orderID, itemID, nil
}

// GetOrderArtwork handles GET /api/v1/orders/:id/artwork - per-item artwork and the order's artwork status
func GetOrderArtwork(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, err := paramID(c, "id", "INVALID_ORDER_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := newArtworkMachine().Summary(c.Request.Context(), orderID, actorOf(user))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// UploadItemArtwork handles POST /api/v1/orders/:id/items/:itemId/artwork - multipart upload of the item's artwork
func UploadItemArtwork(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, itemID, err := itemParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// A missing part is reported by the machine once the caller is authorized
	file, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, apperrors.InvalidInput("INVALID_UPLOAD", "Could not read the uploaded file"))
		return
	}

	ref, err := newArtworkMachine().UploadArtwork(c.Request.Context(), orderID, itemID, actorOf(user), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Artwork uploaded",
		"data":    ref,
	})
}

// UpdateItemArtwork handles PUT /api/v1/orders/:id/items/:itemId/artwork - approve, link or advance review
func UpdateItemArtwork(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, itemID, err := itemParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req ArtworkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	machine := newArtworkMachine()
	ctx := c.Request.Context()
	actor := actorOf(user)

	var (
		data    interface{}
		message string
	)
	switch req.Action {
	case ActionApprove:
		data, err = machine.Approve(ctx, orderID, itemID, actor)
		message = "Artwork approved"
	case ActionLink:
		data, err = machine.LinkExistingDesign(ctx, orderID, itemID, actor, req.DesignID)
		message = "Design linked"
	case ActionStartReview:
		data, err = machine.StartReview(ctx, orderID, itemID, actor)
		message = "Review started"
	case ActionRequestApproval:
		data, err = machine.RequestApproval(ctx, orderID, itemID, actor)
		message = "Approval requested"
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// RequestItemRevision handles POST /api/v1/orders/:id/items/:itemId/artwork/revision - admin asks for changes
func RequestItemRevision(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, itemID, err := itemParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := newArtworkMachine().RequestRevision(c.Request.Context(), orderID, itemID, actorOf(user), req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Revision requested",
	})
}

// UnlinkItemArtwork handles DELETE /api/v1/orders/:id/items/:itemId/artwork - detaches the item's design
func UnlinkItemArtwork(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, itemID, err := itemParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := newArtworkMachine().UnlinkArtwork(c.Request.Context(), orderID, itemID, actorOf(user))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Artwork unlinked",
		"data": gin.H{
			"artwork_status": status,
		},
	})
}
