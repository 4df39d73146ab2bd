package models

import "time"

// DesignProvenance records who supplied the artwork
type DesignProvenance string

const (
	ProvenanceCustomer DesignProvenance = "customer"
	ProvenanceAdmin    DesignProvenance = "admin"
)

// DesignApproval records where the artwork is in the review cycle
type DesignApproval string

const (
	ApprovalSubmitted        DesignApproval = "submitted"
	ApprovalInReview         DesignApproval = "in_review"
	ApprovalAwaitingApproval DesignApproval = "awaiting_approval"
	ApprovalApproved         DesignApproval = "approved"
	ApprovalFlagged          DesignApproval = "flagged"
)

// Design is one artwork asset. Provenance and approval live in their own columns;
// Name is free text and never interpreted.
type Design struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `json:"name"`
	OwnerID       *uint            `gorm:"index" json:"owner_id"` // nullable, customer who owns the design
	Provenance    DesignProvenance `gorm:"not null;default:'customer'" json:"provenance"`
	ApprovalState DesignApproval   `gorm:"not null;default:'submitted'" json:"approval_state"`
	FileKey       string           `json:"-"` // storage key, empty for placeholders
	FileName      string           `json:"file_name,omitempty"`
	ContentType   string           `json:"content_type,omitempty"`
	FileSize      int64            `json:"file_size,omitempty"`
	PreviewURL    string           `gorm:"-" json:"preview_url,omitempty"` // computed field, presigned preview URL
	ExportURL     string           `gorm:"-" json:"export_url,omitempty"`  // computed field, presigned download URL
	RevisionNotes string           `gorm:"type:text" json:"revision_notes,omitempty"`
	ApprovedAt    *time.Time       `json:"approved_at,omitempty"`
	ApprovedByID  *uint            `json:"approved_by_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Design model
func (Design) TableName() string {
	return "designs"
}

// HasFile reports whether an asset has been stored for the design
func (d Design) HasFile() bool {
	return d.FileKey != ""
}
