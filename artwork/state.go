package artwork

import "github.com/kendall-kelly/printshop-api/models"

// ItemState is the artwork lifecycle state of one order item.
type ItemState string

const (
	StateNoArtwork         ItemState = "no_artwork"
	StateCustomerUploaded  ItemState = "customer_uploaded"
	StateAdminReviewing    ItemState = "admin_reviewing"
	StatePendingApproval   ItemState = "pending_approval"
	StateApproved          ItemState = "approved"
	StateRevisionRequested ItemState = "revision_requested"
)

// workRemaining orders the non-terminal states; higher means further from approval.
var workRemaining = map[ItemState]int{
	StateNoArtwork:        4,
	StateCustomerUploaded: 3,
	StateAdminReviewing:   2,
	StatePendingApproval:  1,
}

var aggregateOf = map[ItemState]models.ArtworkStatus{
	StateNoArtwork:         models.ArtworkAwaiting,
	StateCustomerUploaded:  models.ArtworkUploaded,
	StateAdminReviewing:    models.ArtworkInReview,
	StatePendingApproval:   models.ArtworkPendingApproval,
	StateApproved:          models.ArtworkApproved,
	StateRevisionRequested: models.ArtworkRevisionRequested,
}

// StateOf derives the state of an item from its design link. The item's Design must be
// loaded when DesignID is set.
func StateOf(item models.OrderItem) ItemState {
	if item.DesignID == nil || item.Design == nil {
		return StateNoArtwork
	}
	return designState(*item.Design)
}

func designState(design models.Design) ItemState {
	if design.ApprovalState == models.ApprovalFlagged {
		return StateRevisionRequested
	}
	if !design.HasFile() {
		return StateNoArtwork
	}
	switch design.ApprovalState {
	case models.ApprovalApproved:
		return StateApproved
	case models.ApprovalAwaitingApproval:
		return StatePendingApproval
	case models.ApprovalInReview:
		return StateAdminReviewing
	default:
		return StateCustomerUploaded
	}
}

// AggregateStates folds item states into the order-level status: any revision request
// wins, every item approved gives approved, otherwise the state with the most work left.
// No items at all is never approved.
func AggregateStates(states []ItemState) models.ArtworkStatus {
	if len(states) == 0 {
		return models.ArtworkAwaiting
	}

	worst := StateApproved
	for _, state := range states {
		if state == StateRevisionRequested {
			return models.ArtworkRevisionRequested
		}
		if workRemaining[state] > workRemaining[worst] {
			worst = state
		}
	}
	return aggregateOf[worst]
}

// Aggregate computes the order-level status of items.
func Aggregate(items []models.OrderItem) models.ArtworkStatus {
	states := make([]ItemState, len(items))
	for i, item := range items {
		states[i] = StateOf(item)
	}
	return AggregateStates(states)
}
