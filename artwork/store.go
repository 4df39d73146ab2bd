package artwork

import (
	"context"
	"mime/multipart"

	"github.com/kendall-kelly/printshop-api/models"
)

// Store is the persistence the state machine needs. Methods called inside RunInTx see the
// transaction through ctx. Missing rows are reported as apperrors NotFound.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrder(ctx context.Context, orderID uint) (*models.Order, error)
	// LockOrder reads the order and holds its row lock until the transaction ends.
	LockOrder(ctx context.Context, orderID uint) (*models.Order, error)
	GetItemsForOrder(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	GetItem(ctx context.Context, orderID, itemID uint) (*models.OrderItem, error)
	GetDesign(ctx context.Context, designID uint) (*models.Design, error)
	SaveDesign(ctx context.Context, design *models.Design) error
	DeleteDesign(ctx context.Context, designID uint) error
	IsDesignLinked(ctx context.Context, designID, exceptItemID uint) (bool, error)
	UpdateItemDesignLink(ctx context.Context, itemID uint, designID *uint) error
	RecomputeAndPersistArtworkStatus(ctx context.Context, orderID uint) (models.ArtworkStatus, error)
	AppendMessage(ctx context.Context, message *models.Message) error
}

// FileStore keeps artwork assets. StoreArtwork validates the file and returns its key;
// validation failures are *utils.FileUploadError.
type FileStore interface {
	StoreArtwork(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)
	ArtworkURL(ctx context.Context, key string) (string, error)
	DownloadURL(ctx context.Context, key, filename string) (string, error)
	DeleteArtwork(ctx context.Context, key string) error
}
