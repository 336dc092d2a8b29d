package workflow

import (
	"context"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReconcileBatchReservations releases lot reservations whose owning order is
// no longer alive. Normal flows release inside the order transaction; this
// sweep covers crash windows and manual DB surgery so a lot never stays
// blocked forever.
func ReconcileBatchReservations(ctx context.Context, db *gorm.DB, logger *logrus.Logger) (int64, error) {
	res := db.WithContext(ctx).
		Model(&models.ProductBatch{}).
		Where("is_sold = ? AND reserved_by_order_id IS NOT NULL", false).
		Where("reserved_by_order_id IN (?)",
			db.Model(&models.Order{}).
				Select("id").
				Where("current_status IN ?", []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled}),
		).
		Update("reserved_by_order_id", nil)
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 && logger != nil {
		logger.WithFields(logrus.Fields{
			"field":    "ReconcileBatchReservations",
			"released": res.RowsAffected,
		}).Warn("released lot reservations held by closed orders")
	}
	return res.RowsAffected, nil
}

// ReleaseExpiredOrderReservations cancels pending orders whose pickup date
// passed more than gracePeriod ago and frees their lots. The counter staff
// get the lot back on the shelf instead of chasing no-show customers.
func ReleaseExpiredOrderReservations(ctx context.Context, db *gorm.DB, logger *logrus.Logger, gracePeriod time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-gracePeriod)

	var stale []models.Order
	err := db.WithContext(ctx).
		Where("current_status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusReady}).
		Where("pickup_date IS NOT NULL AND pickup_date < ?", cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, order := range stale {
		if _, err := models.CancelOrder(ctx, order.ID); err != nil {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"field":    "ReleaseExpiredOrderReservations",
					"order_id": order.ID,
				}).Error("failed to cancel expired order: " + err.Error())
			}
			continue
		}
		cancelled++
	}

	if cancelled > 0 && logger != nil {
		logger.WithFields(logrus.Fields{
			"field":     "ReleaseExpiredOrderReservations",
			"cancelled": cancelled,
		}).Info("cancelled expired pickup orders")
	}
	return cancelled, nil
}
