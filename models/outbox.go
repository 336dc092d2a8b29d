package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleEventRecord is the transactional outbox row for sale/order events.
// It is written inside the caller's transaction; publishing to Pub/Sub
// happens asynchronously after commit via the outbox dispatcher.
type SaleEventRecord struct {
	ID                  int                 `gorm:"primary_key" json:"id"`
	TransactionDateTime time.Time           `gorm:"not null" json:"transaction_date_time"`
	ReferenceId         int                 `gorm:"index;not null" json:"reference_id"`
	ReferenceType       EventReferenceType  `gorm:"size:20;index;not null" json:"reference_type"`
	Action              EventAction         `gorm:"size:20;not null" json:"action"`
	Payload             []byte              `gorm:"type:json" json:"payload"`
	PublishStatus       OutboxPublishStatus `gorm:"size:20;index;not null;default:'Pending'" json:"publish_status"`
	PublishAttempts     int                 `gorm:"default:0" json:"publish_attempts"`
	PublishedMessageId  *string             `gorm:"size:100;default:null" json:"published_message_id"`
	PublishedAt         *time.Time          `gorm:"default:null" json:"published_at"`
	NextAttemptAt       *time.Time          `gorm:"default:null" json:"next_attempt_at"`
	LockedAt            *time.Time          `gorm:"default:null" json:"locked_at"`
	LockedBy            *string             `gorm:"size:100;default:null" json:"locked_by"`
	LastError           *string             `gorm:"size:500;default:null" json:"last_error"`
	CorrelationId       string              `gorm:"size:50;index" json:"correlation_id"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// PublishSaleEvent writes the outbox record inside the caller's transaction
// but does NOT publish. The dispatcher picks it up after commit.
func PublishSaleEvent(ctx context.Context, tx *gorm.DB, transactionDateTime time.Time, refId int, refType EventReferenceType, obj interface{}, action EventAction) error {
	payload, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	record := SaleEventRecord{
		TransactionDateTime: transactionDateTime,
		ReferenceId:         refId,
		ReferenceType:       refType,
		Action:              action,
		Payload:             payload,
		PublishStatus:       OutboxPublishStatusPending,
		CorrelationId:       correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
