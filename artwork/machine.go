// Package artwork implements the per-item artwork lifecycle of an order and the
// order-level status derived from it.
//
// Every mutating operation checks the actor, then runs as one transaction that locks the
// order row, re-reads the item, writes the design and link, and recomputes the order's
// artwork status. Notifications are sent after commit and never fail the operation.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/notify"
	"github.com/kendall-kelly/printshop-api/utils"
)

const cleanupTimeout = 30 * time.Second

// Options tunes the machine.
type Options struct {
	// UploadTimeout bounds the file storage call of an upload. Zero means no bound.
	UploadTimeout time.Duration
	// AllowAdminApproval lets admins approve on a customer's behalf (phone orders).
	AllowAdminApproval bool
	Clock              func() time.Time
}

// Machine applies artwork transitions.
type Machine struct {
	store    Store
	files    FileStore
	notifier notify.Notifier
	opts     Options
}

// DesignRef identifies the design an operation produced.
type DesignRef struct {
	DesignID      uint                 `json:"design_id"`
	ArtworkURL    string               `json:"artwork_url,omitempty"`
	ItemState     ItemState            `json:"item_state,omitempty"`
	ArtworkStatus models.ArtworkStatus `json:"artwork_status,omitempty"`
}

// ApprovalResult is the outcome of an approval.
type ApprovalResult struct {
	Approved         bool                 `json:"approved"`
	AllItemsApproved bool                 `json:"all_items_approved"`
	ArtworkStatus    models.ArtworkStatus `json:"artwork_status"`
}

// ItemArtwork is the artwork view of one order item.
type ItemArtwork struct {
	ItemID      uint           `json:"item_id"`
	ProductID   uint           `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	State       ItemState      `json:"state"`
	Design      *models.Design `json:"design,omitempty"`
}

// OrderArtwork is the artwork view of an order with a freshly computed status.
type OrderArtwork struct {
	Order            *models.Order        `json:"order"`
	Items            []ItemArtwork        `json:"items"`
	ArtworkStatus    models.ArtworkStatus `json:"artwork_status"`
	AllItemsApproved bool                 `json:"all_items_approved"`
}

// NewMachine creates a machine over store, files and notifier.
func NewMachine(store Store, files FileStore, notifier notify.Notifier, opts Options) *Machine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Machine{
		store:    store,
		files:    files,
		notifier: notifier,
		opts:     opts,
	}
}

type access int

const (
	ownerOrAdmin access = iota
	ownerOnly
	adminOnly
)

// authorize checks the actor against the order and returns it.
func (m *Machine) authorize(ctx context.Context, orderID uint, actor Actor, need access) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated("Authentication required")
	}

	order, err := m.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch need {
	case adminOnly:
		if !actor.IsAdmin {
			return nil, apperrors.Forbidden("Only admins can perform this action")
		}
	case ownerOnly:
		if !order.IsOwnedBy(actor.UserID) && !(actor.IsAdmin && m.opts.AllowAdminApproval) {
			return nil, apperrors.Forbidden("Only the order owner can approve artwork")
		}
	default:
		if !actor.IsAdmin && !order.IsOwnedBy(actor.UserID) {
			return nil, apperrors.Forbidden("You do not have permission to change this order")
		}
	}
	return order, nil
}

// authorizeItem checks the actor and that the item belongs to the order.
func (m *Machine) authorizeItem(ctx context.Context, orderID, itemID uint, actor Actor, need access) (*models.Order, *models.OrderItem, error) {
	order, err := m.authorize(ctx, orderID, actor, need)
	if err != nil {
		return nil, nil, err
	}
	item, err := m.store.GetItem(ctx, orderID, itemID)
	if err != nil {
		return nil, nil, err
	}
	return order, item, nil
}

// lockItem re-reads order and item inside the transaction. Rows that disappeared since
// authorization are a conflict.
func (m *Machine) lockItem(ctx context.Context, orderID, itemID uint) (*models.Order, *models.OrderItem, error) {
	order, err := m.store.LockOrder(ctx, orderID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, nil, apperrors.Conflict("ORDER_CHANGED", "Order was removed while the request was in flight")
		}
		return nil, nil, err
	}
	item, err := m.store.GetItem(ctx, orderID, itemID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, nil, apperrors.Conflict("ORDER_ITEM_CHANGED", "Order item was removed while the request was in flight")
		}
		return nil, nil, err
	}
	return order, item, nil
}

func requireEditable(order *models.Order) error {
	if !order.Status.AcceptsArtworkChanges() {
		return apperrors.InvalidState("ORDER_LOCKED",
			fmt.Sprintf("Artwork can no longer be changed on a %s order", order.Status))
	}
	return nil
}

// UploadArtwork stores file and links it to the item, replacing the file of an already
// linked design. Admin uploads go straight to customer approval; customer uploads wait
// for review and notify the admin inbox.
func (m *Machine) UploadArtwork(ctx context.Context, orderID, itemID uint, actor Actor, file *multipart.FileHeader) (DesignRef, error) {
	order, _, err := m.authorizeItem(ctx, orderID, itemID, actor, ownerOrAdmin)
	if err != nil {
		return DesignRef{}, err
	}
	if file == nil {
		return DesignRef{}, apperrors.InvalidInput("MISSING_FILE", "An artwork file is required")
	}
	if err := requireEditable(order); err != nil {
		return DesignRef{}, err
	}

	key, err := m.storeFile(ctx, file)
	if err != nil {
		return DesignRef{}, err
	}

	provenance, approval := models.ProvenanceCustomer, models.ApprovalSubmitted
	if actor.IsAdmin {
		provenance, approval = models.ProvenanceAdmin, models.ApprovalAwaitingApproval
	}

	var (
		ref           DesignRef
		replacedKey   string
		notifications []notify.Notification
	)
	err = m.store.RunInTx(ctx, func(ctx context.Context) error {
		order, item, err := m.lockItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if err := requireEditable(order); err != nil {
			return err
		}

		design := item.Design
		if design == nil {
			customerID := order.CustomerID
			design = &models.Design{Name: file.Filename, OwnerID: &customerID}
		} else {
			replacedKey = design.FileKey
		}
		design.Provenance = provenance
		design.ApprovalState = approval
		design.FileKey = key
		design.FileName = file.Filename
		design.ContentType = contentTypeOf(file)
		design.FileSize = file.Size
		design.ApprovedAt = nil
		design.ApprovedByID = nil
		if err := m.store.SaveDesign(ctx, design); err != nil {
			return err
		}

		if item.DesignID == nil || *item.DesignID != design.ID {
			if err := m.store.UpdateItemDesignLink(ctx, item.ID, &design.ID); err != nil {
				return err
			}
		}

		status, err := m.store.RecomputeAndPersistArtworkStatus(ctx, order.ID)
		if err != nil {
			return err
		}

		ref = DesignRef{DesignID: design.ID, ItemState: designState(*design), ArtworkStatus: status}
		if !actor.IsAdmin {
			notifications = append(notifications, notify.Notification{
				Kind:       notify.KindArtworkUploaded,
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Payload: map[string]interface{}{
					"order_number":  order.OrderNumber,
					"order_item_id": item.ID,
					"design_id":     design.ID,
				},
			})
		}
		return nil
	})
	if err != nil {
		m.discardFile(ctx, key)
		return DesignRef{}, err
	}

	if replacedKey != "" && replacedKey != key {
		m.discardFile(ctx, replacedKey)
	}
	ref.ArtworkURL = m.artworkURL(ctx, key)
	notify.Dispatch(ctx, m.notifier, notifications)
	return ref, nil
}

// Approve records the order owner's sign-off on the item's design. The admin inbox hears
// about it once the whole order becomes approved.
func (m *Machine) Approve(ctx context.Context, orderID, itemID uint, actor Actor) (ApprovalResult, error) {
	order, item, err := m.authorizeItem(ctx, orderID, itemID, actor, ownerOnly)
	if err != nil {
		return ApprovalResult{}, err
	}
	if err := checkApprovable(order, item); err != nil {
		return ApprovalResult{}, err
	}

	var (
		result        ApprovalResult
		notifications []notify.Notification
	)
	err = m.store.RunInTx(ctx, func(ctx context.Context) error {
		order, item, err := m.lockItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if err := checkApprovable(order, item); err != nil {
			return err
		}

		items, err := m.store.GetItemsForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		before := Aggregate(items)

		now := m.opts.Clock()
		approverID := actor.UserID
		design := item.Design
		design.ApprovalState = models.ApprovalApproved
		design.ApprovedAt = &now
		design.ApprovedByID = &approverID
		if err := m.store.SaveDesign(ctx, design); err != nil {
			return err
		}

		status, err := m.store.RecomputeAndPersistArtworkStatus(ctx, order.ID)
		if err != nil {
			return err
		}

		result = ApprovalResult{
			Approved:         true,
			AllItemsApproved: status == models.ArtworkApproved,
			ArtworkStatus:    status,
		}
		if result.AllItemsApproved && before != models.ArtworkApproved {
			notifications = append(notifications, notify.Notification{
				Kind:       notify.KindArtworkApproved,
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Payload: map[string]interface{}{
					"order_number": order.OrderNumber,
					"approved_by":  actor.UserID,
				},
			})
		}
		return nil
	})
	if err != nil {
		return ApprovalResult{}, err
	}

	notify.Dispatch(ctx, m.notifier, notifications)
	return result, nil
}

// checkApprovable rejects approval of missing or placeholder artwork and of orders that
// are past review.
func checkApprovable(order *models.Order, item *models.OrderItem) error {
	if item.DesignID == nil || item.Design == nil {
		return apperrors.InvalidState("NO_ARTWORK", "No artwork to approve")
	}
	if !item.Design.HasFile() {
		return apperrors.InvalidState("ARTWORK_NOT_READY", "Artwork has not been supplied for review yet")
	}
	return requireEditable(order)
}

// RequestRevision flags the item's artwork with the admin's notes. Items without a design
// get a flagged placeholder so the request is visible to the customer.
func (m *Machine) RequestRevision(ctx context.Context, orderID, itemID uint, actor Actor, notes string) error {
	if _, _, err := m.authorizeItem(ctx, orderID, itemID, actor, adminOnly); err != nil {
		return err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return apperrors.InvalidInput("MISSING_NOTES", "Revision notes are required")
	}

	var notifications []notify.Notification
	err := m.store.RunInTx(ctx, func(ctx context.Context) error {
		order, item, err := m.lockItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}

		now := m.opts.Clock()
		design := item.Design
		if design == nil {
			customerID := order.CustomerID
			design = &models.Design{
				Name:       "Revision request",
				OwnerID:    &customerID,
				Provenance: models.ProvenanceAdmin,
			}
		}
		design.ApprovalState = models.ApprovalFlagged
		design.ApprovedAt = nil
		design.ApprovedByID = nil
		design.RevisionNotes = appendNote(design.RevisionNotes, now, notes)
		if err := m.store.SaveDesign(ctx, design); err != nil {
			return err
		}
		if item.DesignID == nil || *item.DesignID != design.ID {
			if err := m.store.UpdateItemDesignLink(ctx, item.ID, &design.ID); err != nil {
				return err
			}
		}

		revisedItem := item.ID
		if err := m.store.AppendMessage(ctx, &models.Message{
			OrderID:     order.ID,
			OrderItemID: &revisedItem,
			SenderID:    actor.UserID,
			Text:        fmt.Sprintf("Changes requested for %s: %s", item.ProductName, notes),
		}); err != nil {
			return err
		}

		if _, err := m.store.RecomputeAndPersistArtworkStatus(ctx, order.ID); err != nil {
			return err
		}

		notifications = append(notifications, notify.Notification{
			Kind:       notify.KindArtworkChangesRequested,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Payload: map[string]interface{}{
				"order_number":  order.OrderNumber,
				"order_item_id": item.ID,
				"design_id":     design.ID,
				"notes":         notes,
			},
		})
		return nil
	})
	if err != nil {
		return err
	}

	notify.Dispatch(ctx, m.notifier, notifications)
	return nil
}

func appendNote(existing string, at time.Time, note string) string {
	entry := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), note)
	if existing == "" {
		return entry
	}
	return existing + "\n" + entry
}

// LinkExistingDesign attaches a design made elsewhere (the design editor) to the item.
// The design must be unowned or the actor's own; admins may also link the order
// customer's designs.
func (m *Machine) LinkExistingDesign(ctx context.Context, orderID, itemID uint, actor Actor, designID uint) (DesignRef, error) {
	order, _, err := m.authorizeItem(ctx, orderID, itemID, actor, ownerOrAdmin)
	if err != nil {
		return DesignRef{}, err
	}
	if designID == 0 {
		return DesignRef{}, apperrors.InvalidInput("MISSING_DESIGN_ID", "A design id is required")
	}
	if err := requireEditable(order); err != nil {
		return DesignRef{}, err
	}

	var (
		ref           DesignRef
		notifications []notify.Notification
	)
	err = m.store.RunInTx(ctx, func(ctx context.Context) error {
		order, item, err := m.lockItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if err := requireEditable(order); err != nil {
			return err
		}

		design, err := m.store.GetDesign(ctx, designID)
		if err != nil {
			return err
		}
		if !mayLink(actor, order, design) {
			return apperrors.Forbidden("You cannot link a design you do not own")
		}
		if !design.HasFile() {
			return apperrors.InvalidInput("EMPTY_DESIGN", "The design has no artwork file")
		}
		linked, err := m.store.IsDesignLinked(ctx, design.ID, item.ID)
		if err != nil {
			return err
		}
		if linked {
			return apperrors.Conflict("DESIGN_ALREADY_LINKED", "The design is already linked to another order item")
		}

		if design.OwnerID == nil {
			customerID := order.CustomerID
			design.OwnerID = &customerID
		}
		design.Provenance = models.ProvenanceCustomer
		design.ApprovalState = models.ApprovalSubmitted
		design.ApprovedAt = nil
		design.ApprovedByID = nil
		if err := m.store.SaveDesign(ctx, design); err != nil {
			return err
		}
		if err := m.store.UpdateItemDesignLink(ctx, item.ID, &design.ID); err != nil {
			return err
		}

		status, err := m.store.RecomputeAndPersistArtworkStatus(ctx, order.ID)
		if err != nil {
			return err
		}

		ref = DesignRef{DesignID: design.ID, ItemState: designState(*design), ArtworkStatus: status}
		if !actor.IsAdmin {
			notifications = append(notifications, notify.Notification{
				Kind:       notify.KindArtworkUploaded,
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Payload: map[string]interface{}{
					"order_number":  order.OrderNumber,
					"order_item_id": item.ID,
					"design_id":     design.ID,
				},
			})
		}
		ref.ArtworkURL = design.FileKey
		return nil
	})
	if err != nil {
		return DesignRef{}, err
	}

	ref.ArtworkURL = m.artworkURL(ctx, ref.ArtworkURL)
	notify.Dispatch(ctx, m.notifier, notifications)
	return ref, nil
}

func mayLink(actor Actor, order *models.Order, design *models.Design) bool {
	if design.OwnerID == nil || *design.OwnerID == actor.UserID {
		return true
	}
	return actor.IsAdmin && *design.OwnerID == order.CustomerID
}

// UnlinkArtwork detaches the item's design. The design row is kept so it can be linked
// again.
func (m *Machine) UnlinkArtwork(ctx context.Context, orderID, itemID uint, actor Actor) (models.ArtworkStatus, error) {
	order, _, err := m.authorizeItem(ctx, orderID, itemID, actor, ownerOrAdmin)
	if err != nil {
		return "", err
	}
	if err := requireEditable(order); err != nil {
		return "", err
	}

	var status models.ArtworkStatus
	err = m.store.RunInTx(ctx, func(ctx context.Context) error {
		order, item, err := m.lockItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if err := requireEditable(order); err != nil {
			return err
		}
		if item.DesignID != nil {
			if err := m.store.UpdateItemDesignLink(ctx, item.ID, nil); err != nil {
				return err
			}
		}
		status, err = m.store.RecomputeAndPersistArtworkStatus(ctx, order.ID)
		return err
	})
	return status, err
}

// StartReview marks a customer upload as being checked by the print team.
func (m *Machine) StartReview(ctx context.Context, orderID, itemID uint, actor Actor) (DesignRef, error) {
	return m.advance(ctx, orderID, itemID, actor, models.ApprovalInReview,
		[]ItemState{StateCustomerUploaded}, notify.Kind(""))
}

// RequestApproval sends reviewed customer artwork to the customer for sign-off.
func (m *Machine) RequestApproval(ctx context.Context, orderID, itemID uint, actor Actor) (DesignRef, error) {
	return m.advance(ctx, orderID, itemID, actor, models.ApprovalAwaitingApproval,
		[]ItemState{StateCustomerUploaded, StateAdminReviewing}, notify.KindArtworkProofReady)
}

// advance moves an item forward on the admin side of the review cycle.
func (m *Machine) advance(ctx context.Context, orderID, itemID uint, actor Actor, to models.DesignApproval, from []ItemState, kind notify.Kind) (DesignRef, error) {
	order, _, err := m.authorizeItem(ctx, orderID, itemID, actor, adminOnly)
	if err != nil {
		return DesignRef{}, err
	}
	if err := requireEditable(order); err != nil {
		return DesignRef{}, err
	}

	var (
		ref           DesignRef
		notifications []notify.Notification
	)
	err = m.store.RunInTx(ctx, func(ctx context.Context) error {
		order, item, err := m.lockItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if err := requireEditable(order); err != nil {
			return err
		}

		current := StateOf(*item)
		if !containsState(from, current) {
			return apperrors.InvalidState("INVALID_ARTWORK_TRANSITION",
				fmt.Sprintf("Artwork in state %s cannot move to %s", current, to))
		}

		design := item.Design
		design.ApprovalState = to
		if err := m.store.SaveDesign(ctx, design); err != nil {
			return err
		}
		status, err := m.store.RecomputeAndPersistArtworkStatus(ctx, order.ID)
		if err != nil {
			return err
		}

		ref = DesignRef{DesignID: design.ID, ItemState: designState(*design), ArtworkStatus: status}
		if kind != "" {
			notifications = append(notifications, notify.Notification{
				Kind:       kind,
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				Payload: map[string]interface{}{
					"order_number":  order.OrderNumber,
					"order_item_id": item.ID,
					"design_id":     design.ID,
				},
			})
		}
		return nil
	})
	if err != nil {
		return DesignRef{}, err
	}

	notify.Dispatch(ctx, m.notifier, notifications)
	return ref, nil
}

func containsState(states []ItemState, state ItemState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// CreateDesign stores a standalone design owned by the actor, ready to be linked later.
func (m *Machine) CreateDesign(ctx context.Context, actor Actor, name string, file *multipart.FileHeader) (*models.Design, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated("Authentication required")
	}
	if file == nil {
		return nil, apperrors.InvalidInput("MISSING_FILE", "An artwork file is required")
	}

	key, err := m.storeFile(ctx, file)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = file.Filename
	}
	ownerID := actor.UserID
	design := &models.Design{
		Name:          name,
		OwnerID:       &ownerID,
		Provenance:    models.ProvenanceCustomer,
		ApprovalState: models.ApprovalSubmitted,
		FileKey:       key,
		FileName:      file.Filename,
		ContentType:   contentTypeOf(file),
		FileSize:      file.Size,
	}
	if actor.IsAdmin {
		design.Provenance = models.ProvenanceAdmin
	}
	if err := m.store.SaveDesign(ctx, design); err != nil {
		m.discardFile(ctx, key)
		return nil, err
	}

	m.fillURLs(ctx, design)
	return design, nil
}

// DeleteDesign removes an unlinked design and its file.
func (m *Machine) DeleteDesign(ctx context.Context, designID uint, actor Actor) error {
	if !actor.Authenticated() {
		return apperrors.Unauthenticated("Authentication required")
	}

	var fileKey string
	err := m.store.RunInTx(ctx, func(ctx context.Context) error {
		design, err := m.store.GetDesign(ctx, designID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin && (design.OwnerID == nil || *design.OwnerID != actor.UserID) {
			return apperrors.Forbidden("You do not have permission to delete this design")
		}
		linked, err := m.store.IsDesignLinked(ctx, design.ID, 0)
		if err != nil {
			return err
		}
		if linked {
			return apperrors.Conflict("DESIGN_IN_USE", "Unlink the design from its order item before deleting it")
		}
		fileKey = design.FileKey
		return m.store.DeleteDesign(ctx, design.ID)
	})
	if err != nil {
		return err
	}

	m.discardFile(ctx, fileKey)
	return nil
}

// Summary returns the order with per-item artwork and a freshly computed status.
func (m *Machine) Summary(ctx context.Context, orderID uint, actor Actor) (*OrderArtwork, error) {
	order, err := m.authorize(ctx, orderID, actor, ownerOrAdmin)
	if err != nil {
		return nil, err
	}
	items, err := m.store.GetItemsForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary := &OrderArtwork{Order: order, Items: make([]ItemArtwork, 0, len(items))}
	for i := range items {
		item := items[i]
		if item.Design != nil {
			m.fillURLs(ctx, item.Design)
		}
		summary.Items = append(summary.Items, ItemArtwork{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			State:       StateOf(item),
			Design:      item.Design,
		})
	}
	summary.ArtworkStatus = Aggregate(items)
	summary.AllItemsApproved = summary.ArtworkStatus == models.ArtworkApproved
	return summary, nil
}

func (m *Machine) storeFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if m.files == nil {
		return "", apperrors.Upstream("STORAGE_UNAVAILABLE", "Artwork storage is not configured", nil)
	}

	uploadCtx := ctx
	if m.opts.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, m.opts.UploadTimeout)
		defer cancel()
	}

	key, err := m.files.StoreArtwork(uploadCtx, file)
	if err != nil {
		var validation *utils.FileUploadError
		if errors.As(err, &validation) {
			return "", apperrors.Wrap(apperrors.KindInvalidInput, validation.Code, validation.Message, err)
		}
		return "", apperrors.Upstream("STORAGE_ERROR", "Failed to store artwork file, please retry", err)
	}
	return key, nil
}

func contentTypeOf(file *multipart.FileHeader) string {
	if contentType, ok := utils.ArtworkContentType(file.Filename); ok {
		return contentType
	}
	return file.Header.Get("Content-Type")
}

// discardFile removes a stored file best effort; a leftover file is harmless.
func (m *Machine) discardFile(ctx context.Context, key string) {
	if key == "" || m.files == nil {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := m.files.DeleteArtwork(cleanupCtx, key); err != nil {
		log.Printf("artwork: failed to delete file %s: %v", key, err)
	}
}

func (m *Machine) artworkURL(ctx context.Context, key string) string {
	if key == "" || m.files == nil {
		return ""
	}
	url, err := m.files.ArtworkURL(ctx, key)
	if err != nil {
		log.Printf("artwork: failed to build URL for %s: %v", key, err)
		return ""
	}
	return url
}

func (m *Machine) fillURLs(ctx context.Context, design *models.Design) {
	if !design.HasFile() || m.files == nil {
		return
	}
	design.PreviewURL = m.artworkURL(ctx, design.FileKey)
	exportURL, err := m.files.DownloadURL(ctx, design.FileKey, design.FileName)
	if err != nil {
		log.Printf("artwork: failed to build download URL for %s: %v", design.FileKey, err)
		return
	}
	design.ExportURL = exportURL
}
