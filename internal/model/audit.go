package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreatePurchaseRequest  = "CREATE_PURCHASE_REQUEST"
	ActionSelectQuote            = "SELECT_QUOTE"
	ActionApprovePurchaseRequest = "APPROVE_PURCHASE_REQUEST"
	ActionRejectPurchaseRequest  = "REJECT_PURCHASE_REQUEST"
)

// AuditLog tracks Who, What, and When for every workflow transition
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string    `gorm:"type:varchar(255);index" json:"actor_id"` // approver or requester email
	ActorName  string    `gorm:"type:varchar(255)" json:"actor_name"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"` // purchase request id
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
