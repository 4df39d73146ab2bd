package artwork_test

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/artwork"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/notify"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/storage"
	"github.com/kendall-kelly/printshop-api/tests/testutil"
)

type MachineTestSuite struct {
	suite.Suite
	db       *gorm.DB
	store    *storage.OrderStore
	objects  *services.MockObjectStore
	notifier *services.RecordingNotifier
	machine  *artwork.Machine
	ctx      context.Context

	customer models.User
	other    models.User
	admin    models.User
	order    models.Order
	item     models.OrderItem
}

func TestMachineTestSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}

func (s *MachineTestSuite) SetupTest() {
	t := s.T()
	s.db = testutil.NewTestDB(t)
	s.store = storage.NewOrderStore(s.db)
	s.objects = services.NewMockObjectStore()
	s.notifier = services.NewRecordingNotifier()
	s.machine = s.newMachine(artwork.Options{})
	s.ctx = context.Background()

	s.customer = testutil.CreateUser(t, s.db, "auth0|customer", models.RoleCustomer)
	s.other = testutil.CreateUser(t, s.db, "auth0|other", models.RoleCustomer)
	s.admin = testutil.CreateUser(t, s.db, "auth0|admin", models.RoleAdmin)

	shirt := testutil.CreateProduct(t, s.db, "T-Shirt", "12.50")
	s.order = testutil.CreateOrder(t, s.db, s.customer, shirt)
	s.item = s.order.Items[0]
}

func (s *MachineTestSuite) newMachine(opts artwork.Options) *artwork.Machine {
	return artwork.NewMachine(s.store, services.NewArtworkStorage(s.objects), s.notifier, opts)
}

func (s *MachineTestSuite) actor(user models.User) artwork.Actor {
	return artwork.Actor{UserID: user.ID, IsAdmin: user.IsAdmin()}
}

func (s *MachineTestSuite) upload(actor artwork.Actor, itemID uint) artwork.DesignRef {
	ref, err := s.machine.UploadArtwork(s.ctx, s.order.ID, itemID, actor, testutil.NewFileHeader(s.T(), "logo.png", testutil.PNG))
	s.Require().NoError(err)
	return ref
}

func (s *MachineTestSuite) cachedStatus() models.ArtworkStatus {
	order, err := s.store.GetOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)
	return order.ArtworkStatus
}

func (s *MachineTestSuite) itemState(itemID uint) artwork.ItemState {
	item, err := s.store.GetItem(s.ctx, s.order.ID, itemID)
	s.Require().NoError(err)
	return artwork.StateOf(*item)
}

func (s *MachineTestSuite) addItem() models.OrderItem {
	item := models.OrderItem{
		OrderID:     s.order.ID,
		ProductID:   s.item.ProductID,
		ProductName: "Mug",
		Quantity:    1,
		UnitPrice:   s.item.UnitPrice,
		LineTotal:   s.item.UnitPrice,
	}
	s.Require().NoError(s.db.Create(&item).Error)
	return item
}

func (s *MachineTestSuite) requireKind(err error, kind apperrors.Kind) {
	s.Require().Error(err)
	s.Equal(kind, apperrors.KindOf(err), "unexpected error: %v", err)
}

// Customer upload with no prior design
func (s *MachineTestSuite) TestCustomerUploadCreatesDesign() {
	ref := s.upload(s.actor(s.customer), s.item.ID)

	s.NotZero(ref.DesignID)
	s.Contains(ref.ArtworkURL, "mock=true")
	s.Equal(models.ArtworkUploaded, ref.ArtworkStatus)

	summary, err := s.machine.Summary(s.ctx, s.order.ID, s.actor(s.customer))
	s.Require().NoError(err)
	s.Require().Len(summary.Items, 1)
	s.Equal(artwork.StateCustomerUploaded, summary.Items[0].State)
	s.Require().NotNil(summary.Items[0].Design)
	s.Equal(models.ProvenanceCustomer, summary.Items[0].Design.Provenance)
	s.Equal(models.ApprovalSubmitted, summary.Items[0].Design.ApprovalState)
	s.Equal(s.customer.ID, *summary.Items[0].Design.OwnerID)
	s.NotEmpty(summary.Items[0].Design.PreviewURL)
	s.NotEmpty(summary.Items[0].Design.ExportURL)
	s.Equal(models.ArtworkUploaded, summary.ArtworkStatus)
	s.Equal(models.ArtworkUploaded, s.cachedStatus())

	s.Equal([]notify.Kind{notify.KindArtworkUploaded}, s.notifier.Kinds())
	s.True(notify.KindArtworkUploaded.ForAdmin())
}

func (s *MachineTestSuite) TestAdminUploadAwaitsCustomerApproval() {
	ref := s.upload(s.actor(s.admin), s.item.ID)

	s.Equal(models.ArtworkPendingApproval, ref.ArtworkStatus)
	s.Equal(artwork.StatePendingApproval, ref.ItemState)

	design, err := s.store.GetDesign(s.ctx, ref.DesignID)
	s.Require().NoError(err)
	s.Equal(models.ProvenanceAdmin, design.Provenance)
	s.Equal(s.customer.ID, *design.OwnerID, "admin uploads belong to the order's customer")
	s.Empty(s.notifier.Sent(), "admin uploads notify nobody")
}

// Revision then re-upload
func (s *MachineTestSuite) TestRevisionThenReupload() {
	first := s.upload(s.actor(s.customer), s.item.ID)

	err := s.machine.RequestRevision(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin), "logo too small")
	s.Require().NoError(err)
	s.Equal(models.ArtworkRevisionRequested, s.cachedStatus())
	s.Equal(artwork.StateRevisionRequested, s.itemState(s.item.ID))

	design, err := s.store.GetDesign(s.ctx, first.DesignID)
	s.Require().NoError(err)
	s.Contains(design.RevisionNotes, "logo too small")

	var messages []models.Message
	s.Require().NoError(s.db.Where("order_id = ?", s.order.ID).Find(&messages).Error)
	s.Require().Len(messages, 1)
	s.Equal(s.admin.ID, messages[0].SenderID)
	s.Contains(messages[0].Text, "logo too small")

	second := s.upload(s.actor(s.customer), s.item.ID)
	s.Equal(first.DesignID, second.DesignID, "re-upload replaces the linked design's file")
	s.Equal(models.ArtworkUploaded, second.ArtworkStatus)
	s.Equal(models.ArtworkUploaded, s.cachedStatus())

	s.Len(s.objects.Objects(), 1, "replaced file is deleted after commit")
	s.Len(s.objects.Deleted(), 1)

	s.Equal([]notify.Kind{
		notify.KindArtworkUploaded,
		notify.KindArtworkChangesRequested,
		notify.KindArtworkUploaded,
	}, s.notifier.Kinds())
	s.Equal("logo too small", s.notifier.Sent()[1].Payload["notes"])
}

func (s *MachineTestSuite) TestRevisionWithoutDesignCreatesFlaggedPlaceholder() {
	err := s.machine.RequestRevision(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin), "please send vector art")
	s.Require().NoError(err)

	item, err := s.store.GetItem(s.ctx, s.order.ID, s.item.ID)
	s.Require().NoError(err)
	s.Require().NotNil(item.Design)
	s.False(item.Design.HasFile())
	s.Equal(models.ApprovalFlagged, item.Design.ApprovalState)
	s.Equal(models.ArtworkRevisionRequested, s.cachedStatus())

	// a placeholder cannot be approved
	_, err = s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindInvalidState)
}

func (s *MachineTestSuite) TestRevisionValidation() {
	err := s.machine.RequestRevision(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin), "   ")
	s.requireKind(err, apperrors.KindInvalidInput)

	err = s.machine.RequestRevision(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), "mine")
	s.requireKind(err, apperrors.KindForbidden)
}

// Approval of the only item
func (s *MachineTestSuite) TestApproveOnlyItem() {
	s.upload(s.actor(s.customer), s.item.ID)
	s.notifier.Reset()

	result, err := s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)

	s.True(result.Approved)
	s.True(result.AllItemsApproved)
	s.Equal(models.ArtworkApproved, result.ArtworkStatus)
	s.Equal(models.ArtworkApproved, s.cachedStatus())

	item, err := s.store.GetItem(s.ctx, s.order.ID, s.item.ID)
	s.Require().NoError(err)
	s.NotNil(item.Design.ApprovedAt)
	s.Equal(s.customer.ID, *item.Design.ApprovedByID)

	s.Require().Len(s.notifier.Sent(), 1)
	s.Equal(notify.KindArtworkApproved, s.notifier.Sent()[0].Kind)

	// approving again does not repeat the admin notification
	_, err = s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)
	s.Len(s.notifier.Sent(), 1)
}

// One approved item and one without artwork
func (s *MachineTestSuite) TestPartialApprovalIsNotApproved() {
	second := s.addItem()
	s.upload(s.actor(s.customer), s.item.ID)
	s.notifier.Reset()

	result, err := s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)

	s.False(result.AllItemsApproved)
	s.Equal(models.ArtworkAwaiting, result.ArtworkStatus, "reflects the item still missing artwork")
	s.Equal(artwork.StateNoArtwork, s.itemState(second.ID))
	s.Empty(s.notifier.Sent(), "no admin notification until every item is approved")
}

func (s *MachineTestSuite) TestApproveWithoutDesignFailsWithoutWrites() {
	before, err := s.store.GetOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)

	_, err = s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindInvalidState)

	after, err := s.store.GetOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)
	s.Equal(before.UpdatedAt, after.UpdatedAt)
	s.Equal(before.ArtworkStatus, after.ArtworkStatus)

	var designs int64
	s.db.Model(&models.Design{}).Count(&designs)
	s.Zero(designs)
}

func (s *MachineTestSuite) TestReplacingApprovedArtworkResetsApproval() {
	s.upload(s.actor(s.customer), s.item.ID)
	_, err := s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)
	s.Equal(models.ArtworkApproved, s.cachedStatus())

	ref := s.upload(s.actor(s.customer), s.item.ID)
	s.Equal(models.ArtworkUploaded, ref.ArtworkStatus)
	s.Equal(artwork.StateCustomerUploaded, s.itemState(s.item.ID))

	item, err := s.store.GetItem(s.ctx, s.order.ID, s.item.ID)
	s.Require().NoError(err)
	s.Nil(item.Design.ApprovedAt)

	ref = s.upload(s.actor(s.admin), s.item.ID)
	s.Equal(models.ArtworkPendingApproval, ref.ArtworkStatus)
}

func (s *MachineTestSuite) TestOutsiderGetsForbiddenAndNothingIsWritten() {
	s.upload(s.actor(s.customer), s.item.ID)
	before, err := s.store.GetOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)
	objectsBefore := len(s.objects.Objects())
	s.notifier.Reset()

	outsider := s.actor(s.other)
	file := testutil.NewFileHeader(s.T(), "evil.png", testutil.PNG)

	_, err = s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, outsider, file)
	s.requireKind(err, apperrors.KindForbidden)
	_, err = s.machine.Approve(s.ctx, s.order.ID, s.item.ID, outsider)
	s.requireKind(err, apperrors.KindForbidden)
	err = s.machine.RequestRevision(s.ctx, s.order.ID, s.item.ID, outsider, "nope")
	s.requireKind(err, apperrors.KindForbidden)
	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, s.item.ID, outsider, 1)
	s.requireKind(err, apperrors.KindForbidden)
	_, err = s.machine.UnlinkArtwork(s.ctx, s.order.ID, s.item.ID, outsider)
	s.requireKind(err, apperrors.KindForbidden)
	_, err = s.machine.StartReview(s.ctx, s.order.ID, s.item.ID, outsider)
	s.requireKind(err, apperrors.KindForbidden)
	_, err = s.machine.RequestApproval(s.ctx, s.order.ID, s.item.ID, outsider)
	s.requireKind(err, apperrors.KindForbidden)
	_, err = s.machine.Summary(s.ctx, s.order.ID, outsider)
	s.requireKind(err, apperrors.KindForbidden)

	after, err := s.store.GetOrder(s.ctx, s.order.ID)
	s.Require().NoError(err)
	s.Equal(before.UpdatedAt, after.UpdatedAt)
	s.Equal(before.ArtworkStatus, after.ArtworkStatus)
	s.Equal(artwork.StateCustomerUploaded, s.itemState(s.item.ID))
	s.Len(s.objects.Objects(), objectsBefore, "no file stored for a forbidden upload")
	s.Empty(s.notifier.Sent())

	var messages int64
	s.db.Model(&models.Message{}).Count(&messages)
	s.Zero(messages)
}

func (s *MachineTestSuite) TestAnonymousActor() {
	_, err := s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, artwork.Actor{}, nil)
	s.requireKind(err, apperrors.KindUnauthenticated)
	_, err = s.machine.Approve(s.ctx, s.order.ID, s.item.ID, artwork.Actor{})
	s.requireKind(err, apperrors.KindUnauthenticated)
	_, err = s.machine.CreateDesign(s.ctx, artwork.Actor{}, "x", nil)
	s.requireKind(err, apperrors.KindUnauthenticated)
}

func (s *MachineTestSuite) TestMissingOrderAndItem() {
	_, err := s.machine.Approve(s.ctx, 9999, s.item.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindNotFound)

	_, err = s.machine.Approve(s.ctx, s.order.ID, 9999, s.actor(s.customer))
	s.requireKind(err, apperrors.KindNotFound)

	// an item of another order is not found on this one
	otherOrder := testutil.CreateOrder(s.T(), s.db, s.customer, models.Product{ID: s.item.ProductID, Name: "Mug"})
	_, err = s.machine.UnlinkArtwork(s.ctx, s.order.ID, otherOrder.Items[0].ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindNotFound)
}

func (s *MachineTestSuite) TestAdminApprovalFlag() {
	s.upload(s.actor(s.customer), s.item.ID)

	_, err := s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin))
	s.requireKind(err, apperrors.KindForbidden)

	phoneOrders := s.newMachine(artwork.Options{AllowAdminApproval: true})
	result, err := phoneOrders.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.True(result.AllItemsApproved)

	item, err := s.store.GetItem(s.ctx, s.order.ID, s.item.ID)
	s.Require().NoError(err)
	s.Equal(s.admin.ID, *item.Design.ApprovedByID)
}

func (s *MachineTestSuite) TestUploadStorageFailureWritesNothing() {
	s.objects.FailUploads(errors.New("s3 unavailable"))

	_, err := s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), testutil.NewFileHeader(s.T(), "logo.png", testutil.PNG))
	s.requireKind(err, apperrors.KindUpstream)

	s.Equal(artwork.StateNoArtwork, s.itemState(s.item.ID))
	var designs int64
	s.db.Model(&models.Design{}).Count(&designs)
	s.Zero(designs)
	s.Empty(s.notifier.Sent())
}

// blockingObjects never finishes an upload before the context ends
type blockingObjects struct {
	*services.MockObjectStore
}

func (b blockingObjects) PutObject(ctx context.Context, key, contentType string, fileHeader *multipart.FileHeader) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *MachineTestSuite) TestUploadTimeout() {
	machine := artwork.NewMachine(s.store, services.NewArtworkStorage(blockingObjects{s.objects}), s.notifier,
		artwork.Options{UploadTimeout: 10 * time.Millisecond})

	_, err := machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), testutil.NewFileHeader(s.T(), "logo.png", testutil.PNG))
	s.requireKind(err, apperrors.KindUpstream)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Equal(artwork.StateNoArtwork, s.itemState(s.item.ID))
}

func (s *MachineTestSuite) TestUploadRejectsInvalidFile() {
	_, err := s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), testutil.NewFileHeader(s.T(), "notes.txt", []byte("hi")))
	s.requireKind(err, apperrors.KindInvalidInput)

	appErr, ok := apperrors.As(err)
	s.Require().True(ok)
	s.Equal("INVALID_FILE_FORMAT", appErr.Code)

	_, err = s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), nil)
	s.requireKind(err, apperrors.KindInvalidInput)
}

func (s *MachineTestSuite) TestNotifierFailureDoesNotFailTransition() {
	s.notifier.Fail(errors.New("mail server down"))

	ref := s.upload(s.actor(s.customer), s.item.ID)
	s.NotZero(ref.DesignID)
	s.Equal(models.ArtworkUploaded, s.cachedStatus())
	s.Len(s.notifier.Sent(), 1)
}

func (s *MachineTestSuite) TestLockedOrderRejectsChanges() {
	s.upload(s.actor(s.customer), s.item.ID)
	testutil.SetOrderStatus(s.T(), s.db, s.order.ID, models.OrderStatusProcessing)

	_, err := s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), testutil.NewFileHeader(s.T(), "logo.png", testutil.PNG))
	s.requireKind(err, apperrors.KindInvalidState)
	_, err = s.machine.Approve(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindInvalidState)
	_, err = s.machine.UnlinkArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindInvalidState)
	s.Len(s.objects.Objects(), 1, "no file stored for a rejected upload")
}

func (s *MachineTestSuite) TestReviewCycle() {
	s.upload(s.actor(s.customer), s.item.ID)
	s.notifier.Reset()

	ref, err := s.machine.StartReview(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.Equal(artwork.StateAdminReviewing, ref.ItemState)
	s.Equal(models.ArtworkInReview, s.cachedStatus())

	_, err = s.machine.StartReview(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin))
	s.requireKind(err, apperrors.KindInvalidState)

	ref, err = s.machine.RequestApproval(s.ctx, s.order.ID, s.item.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.Equal(artwork.StatePendingApproval, ref.ItemState)
	s.Equal(models.ArtworkPendingApproval, s.cachedStatus())
	s.Equal([]notify.Kind{notify.KindArtworkProofReady}, s.notifier.Kinds())

	_, err = s.machine.StartReview(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindForbidden)
}

func (s *MachineTestSuite) TestLinkAndUnlink() {
	design, err := s.machine.CreateDesign(s.ctx, s.actor(s.customer), "Team logo", testutil.NewFileHeader(s.T(), "team.svg", []byte("<svg/>")))
	s.Require().NoError(err)
	s.Equal("Team logo", design.Name)
	s.NotEmpty(design.PreviewURL)

	ref, err := s.machine.LinkExistingDesign(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), design.ID)
	s.Require().NoError(err)
	s.Equal(design.ID, ref.DesignID)
	s.Equal(models.ArtworkUploaded, ref.ArtworkStatus)
	s.NotEmpty(ref.ArtworkURL)

	// the same design cannot back a second item
	second := s.addItem()
	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, second.ID, s.actor(s.customer), design.ID)
	s.requireKind(err, apperrors.KindConflict)

	status, err := s.machine.UnlinkArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)
	s.Equal(models.ArtworkAwaiting, status)

	// idempotent, and the design survives
	_, err = s.machine.UnlinkArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)
	_, err = s.store.GetDesign(s.ctx, design.ID)
	s.Require().NoError(err)

	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, second.ID, s.actor(s.customer), design.ID)
	s.Require().NoError(err)
}

func (s *MachineTestSuite) TestLinkOwnershipRules() {
	foreign, err := s.machine.CreateDesign(s.ctx, s.actor(s.other), "Not yours", testutil.NewFileHeader(s.T(), "x.png", testutil.PNG))
	s.Require().NoError(err)
	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), foreign.ID)
	s.requireKind(err, apperrors.KindForbidden)

	unowned := models.Design{Name: "Editor export", FileKey: "editor.png", Provenance: models.ProvenanceCustomer, ApprovalState: models.ApprovalSubmitted}
	s.Require().NoError(s.db.Create(&unowned).Error)
	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), unowned.ID)
	s.Require().NoError(err)
	claimed, err := s.store.GetDesign(s.ctx, unowned.ID)
	s.Require().NoError(err)
	s.Equal(s.customer.ID, *claimed.OwnerID, "unowned designs are claimed for the order's customer")

	customers, err := s.machine.CreateDesign(s.ctx, s.actor(s.customer), "Customer art", testutil.NewFileHeader(s.T(), "c.png", testutil.PNG))
	s.Require().NoError(err)
	second := s.addItem()
	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, second.ID, s.actor(s.admin), customers.ID)
	s.Require().NoError(err, "admins may link the order customer's designs")

	empty := models.Design{Name: "Blank", OwnerID: &s.customer.ID}
	s.Require().NoError(s.db.Create(&empty).Error)
	third := s.addItem()
	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, third.ID, s.actor(s.customer), empty.ID)
	s.requireKind(err, apperrors.KindInvalidInput)

	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, third.ID, s.actor(s.customer), 9999)
	s.requireKind(err, apperrors.KindNotFound)
}

func (s *MachineTestSuite) TestDeleteDesign() {
	design, err := s.machine.CreateDesign(s.ctx, s.actor(s.customer), "", testutil.NewFileHeader(s.T(), "logo.png", testutil.PNG))
	s.Require().NoError(err)
	s.Equal("logo.png", design.Name, "name defaults to the filename")

	_, err = s.machine.LinkExistingDesign(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), design.ID)
	s.Require().NoError(err)

	err = s.machine.DeleteDesign(s.ctx, design.ID, s.actor(s.customer))
	s.requireKind(err, apperrors.KindConflict)

	err = s.machine.DeleteDesign(s.ctx, design.ID, s.actor(s.other))
	s.requireKind(err, apperrors.KindForbidden)

	_, err = s.machine.UnlinkArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer))
	s.Require().NoError(err)
	s.Require().NoError(s.machine.DeleteDesign(s.ctx, design.ID, s.actor(s.customer)))

	_, err = s.store.GetDesign(s.ctx, design.ID)
	s.requireKind(err, apperrors.KindNotFound)
	s.Empty(s.objects.Objects(), "the file goes with the design")
}

func (s *MachineTestSuite) TestConcurrentUploadsLeaveAValidDesign() {
	const uploads = 4
	files := make([]*multipart.FileHeader, uploads)
	for i := range files {
		files[i] = testutil.NewFileHeader(s.T(), "logo.png", testutil.PNG)
	}

	var wg sync.WaitGroup
	errs := make([]error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.machine.UploadArtwork(s.ctx, s.order.ID, s.item.ID, s.actor(s.customer), files[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}

	item, err := s.store.GetItem(s.ctx, s.order.ID, s.item.ID)
	s.Require().NoError(err)
	s.Require().NotNil(item.Design)
	s.True(s.objects.Exists(item.Design.FileKey), "the linked design points at a stored file")
	s.Len(s.objects.Objects(), 1, "every superseded upload was cleaned up")

	var designs int64
	s.db.Model(&models.Design{}).Count(&designs)
	s.EqualValues(1, designs)
}

func (s *MachineTestSuite) TestSummaryRecomputesInsteadOfTrustingCache() {
	s.upload(s.actor(s.customer), s.item.ID)
	s.Require().NoError(s.db.Model(&models.Order{}).Where("id = ?", s.order.ID).Update("artwork_status", models.ArtworkApproved).Error)

	summary, err := s.machine.Summary(s.ctx, s.order.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.Equal(models.ArtworkUploaded, summary.ArtworkStatus)
	s.False(summary.AllItemsApproved)

	changed, err := s.store.RecomputeAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, changed)
	s.Equal(models.ArtworkUploaded, s.cachedStatus())
}
