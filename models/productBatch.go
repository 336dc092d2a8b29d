package models

import (
	"context"
	"errors"
	"strconv"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductBatch is one vacuum-packed lot: a physically pre-weighed package
// with its own weight and package price. It is sold as a single indivisible
// unit; once attached to a sale or order it never changes.
type ProductBatch struct {
	ID                int             `gorm:"primary_key" json:"id"`
	ProductId         int             `gorm:"index;not null" json:"product_id" binding:"required"`
	BatchNumber       string          `gorm:"size:50;not null" json:"batch_number" binding:"required"`
	ActualWeight      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"actual_weight"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	IsSold            *bool           `gorm:"not null;default:false" json:"is_sold"`
	ReservedByOrderId *int            `gorm:"index;default:null" json:"reserved_by_order_id"`
	PackedAt          *time.Time      `gorm:"default:null" json:"packed_at"`
	SoldAt            *time.Time      `gorm:"default:null" json:"sold_at"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *ProductBatch) Sold() bool {
	return b.IsSold != nil && *b.IsSold
}

func (b *ProductBatch) Reserved() bool {
	return b.ReservedByOrderId != nil && *b.ReservedByOrderId > 0
}

// Available reports whether the lot can still be picked, given the order (if
// any) the caller is working on: a lot reserved by that same order counts as
// available to it.
func (b *ProductBatch) Available(forOrderId int) bool {
	if b.Sold() {
		return false
	}
	if !b.Reserved() {
		return true
	}
	return forOrderId > 0 && *b.ReservedByOrderId == forOrderId
}

var (
	ErrBatchUnavailable = errors.New("batch already sold or reserved")
	ErrBatchImmutable   = errors.New("batch already sold; cannot be changed")
)

type NewProductBatch struct {
	ProductId    int             `json:"product_id" binding:"required"`
	BatchNumber  string          `json:"batch_number" binding:"required"`
	ActualWeight decimal.Decimal `json:"actual_weight" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	PackedAt     *time.Time      `json:"packed_at"`
}

func (input *NewProductBatch) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ProductBatch](ctx, id); err != nil {
			return err
		}
	}
	product, err := utils.FetchSingleModel[Product](ctx, input.ProductId)
	if err != nil {
		return errors.New("product not found")
	}
	if !product.IsBatched() {
		return errors.New("product is not batch tracked")
	}
	if input.ActualWeight.LessThanOrEqual(decimal.Zero) {
		return errors.New("actual weight must be positive")
	}
	if input.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("unit price must be positive")
	}
	return nil
}

func CreateProductBatch(ctx context.Context, input *NewProductBatch) (*ProductBatch, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	batch := ProductBatch{
		ProductId:    input.ProductId,
		BatchNumber:  input.BatchNumber,
		ActualWeight: input.ActualWeight,
		UnitPrice:    input.UnitPrice,
		PackedAt:     input.PackedAt,
	}
	if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func UpdateProductBatch(ctx context.Context, id int, input *NewProductBatch) (*ProductBatch, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	batch, err := utils.FetchSingleModel[ProductBatch](ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Sold() {
		return nil, ErrBatchImmutable
	}
	if batch.Reserved() {
		return nil, ErrBatchUnavailable
	}

	batch.ProductId = input.ProductId
	batch.BatchNumber = input.BatchNumber
	batch.ActualWeight = input.ActualWeight
	batch.UnitPrice = input.UnitPrice
	batch.PackedAt = input.PackedAt

	if err := db.WithContext(ctx).Save(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func DeleteProductBatch(ctx context.Context, id int) (*ProductBatch, error) {
	db := config.GetDB()

	batch, err := utils.FetchSingleModel[ProductBatch](ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Sold() {
		return nil, ErrBatchImmutable
	}
	if batch.Reserved() {
		return nil, ErrBatchUnavailable
	}

	if err := db.WithContext(ctx).Delete(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func GetProductBatch(ctx context.Context, id int) (*ProductBatch, error) {
	return utils.FetchSingleModel[ProductBatch](ctx, id)
}

// ListAvailableBatches returns the lots a cashier may still pick for a
// product: not sold, not reserved by another order, and not already in the
// current cart/order (excludeIds). forOrderId lets an order being edited see
// its own reservations.
func ListAvailableBatches(ctx context.Context, productId int, forOrderId int, excludeIds []int) ([]*ProductBatch, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).
		Where("product_id = ?", productId).
		Where("is_sold = ?", false)
	if forOrderId > 0 {
		query = query.Where("reserved_by_order_id IS NULL OR reserved_by_order_id = ?", forOrderId)
	} else {
		query = query.Where("reserved_by_order_id IS NULL")
	}
	if len(excludeIds) > 0 {
		query = query.Where("id NOT IN ?", utils.UniqueSlice(excludeIds))
	}

	var batches []*ProductBatch
	if err := query.Order("packed_at asc, id asc").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// ListProductBatches is the flat listing for the batch admin screen.
func ListProductBatches(ctx context.Context, productId int, includeSold bool) ([]*ProductBatch, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).Model(&ProductBatch{})
	if productId > 0 {
		query = query.Where("product_id = ?", productId)
	}
	if !includeSold {
		query = query.Where("is_sold = ?", false)
	}

	var batches []*ProductBatch
	if err := query.Order("id desc").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// ReserveBatch claims a lot for an order. The claim is a compare-and-swap:
// the UPDATE only lands while the lot is unsold and unreserved, so two
// terminals staring at the same availability list cannot both win. A short
// redis lock serializes the hot path to keep the losing terminal's error
// deterministic.
func ReserveBatch(ctx context.Context, tx *gorm.DB, batchId int, orderId int) error {
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, batchLockKey(batchId), 3*time.Second, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 10),
		})
		if err == nil {
			defer lock.Release(ctx)
		}
		// lock acquisition failure is not fatal; the CAS below still decides
	}

	result := tx.WithContext(ctx).Model(&ProductBatch{}).
		Where("id = ? AND is_sold = ? AND (reserved_by_order_id IS NULL OR reserved_by_order_id = ?)", batchId, false, orderId).
		Update("reserved_by_order_id", orderId)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBatchUnavailable
	}
	return nil
}

// ReleaseBatch undoes a reservation, e.g. when an order is cancelled.
func ReleaseBatch(ctx context.Context, tx *gorm.DB, batchId int, orderId int) error {
	return tx.WithContext(ctx).Model(&ProductBatch{}).
		Where("id = ? AND reserved_by_order_id = ?", batchId, orderId).
		Update("reserved_by_order_id", nil).Error
}

// MarkBatchSold finalizes a lot inside the checkout transaction. Also a CAS:
// a lot already sold, or reserved by a different order, rejects the sale.
func MarkBatchSold(ctx context.Context, tx *gorm.DB, batchId int, orderId int, soldAt time.Time) error {
	result := tx.WithContext(ctx).Model(&ProductBatch{}).
		Where("id = ? AND is_sold = ? AND (reserved_by_order_id IS NULL OR reserved_by_order_id = ?)", batchId, false, orderId).
		Updates(map[string]interface{}{
			"is_sold":              true,
			"sold_at":              soldAt,
			"reserved_by_order_id": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBatchUnavailable
	}
	return nil
}

func batchLockKey(batchId int) string {
	return "batch_reserve_" + strconv.Itoa(batchId)
}
