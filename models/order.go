package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a customer reservation: items put aside for later pickup.
// Batch-tracked items reserve their lot at creation so no other terminal
// can sell it in the meantime.
type Order struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SequenceNo    decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	OrderNumber   string          `gorm:"size:50;not null" json:"order_number"`
	CustomerId    int             `gorm:"index;not null" json:"customer_id" binding:"required"`
	UserId        int             `gorm:"index;not null" json:"user_id"`
	PickupDate    *time.Time      `gorm:"default:null" json:"pickup_date"`
	CurrentStatus OrderStatus     `gorm:"type:enum('Pending','Ready','Completed','Cancelled');not null;default:'Pending'" json:"current_status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Details       []OrderDetail   `gorm:"foreignKey:OrderId" json:"details"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderDetail struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     int             `gorm:"index;not null" json:"order_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Qty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	BatchId     *int            `gorm:"index;default:null" json:"batch_id"`
	BatchNumber string          `gorm:"size:50;default:null" json:"batch_number"`
	Notes       string          `gorm:"size:255" json:"notes"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewOrderDetail struct {
	ProductId int    `json:"product_id" binding:"required"`
	Qty       string `json:"qty"`
	Notes     string `json:"notes"`
	BatchId   int    `json:"batch_id"`
}

type NewOrder struct {
	CustomerId int              `json:"customer_id" binding:"required"`
	PickupDate *time.Time       `json:"pickup_date"`
	Notes      string           `json:"notes"`
	Details    []NewOrderDetail `json:"details" binding:"required"`
}

func (input *NewOrder) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	if len(input.Details) == 0 {
		return errors.New("order has no items")
	}
	productIds := make([]int, 0, len(input.Details))
	for _, d := range input.Details {
		productIds = append(productIds, d.ProductId)
	}
	if err := utils.ValidateResourcesId[Product](ctx, productIds); err != nil {
		return errors.New("product not found")
	}
	return nil
}

func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	var details []OrderDetail
	var batchIds []int
	for _, item := range input.Details {
		product, err := GetProduct(ctx, item.ProductId)
		if err != nil {
			return nil, fmt.Errorf("product %d not found", item.ProductId)
		}

		detail := OrderDetail{
			ProductId:   product.ID,
			ProductName: product.Name,
			Notes:       item.Notes,
		}

		if item.BatchId > 0 {
			batch, err := GetProductBatch(ctx, item.BatchId)
			if err != nil {
				return nil, fmt.Errorf("batch %d not found", item.BatchId)
			}
			if batch.ProductId != product.ID {
				return nil, fmt.Errorf("batch %d does not belong to product %d", item.BatchId, product.ID)
			}
			if !batch.Available(0) {
				return nil, ErrBatchUnavailable
			}
			batchId := batch.ID
			detail.BatchId = &batchId
			detail.BatchNumber = batch.BatchNumber
			detail.Qty = decimalOne
			batchIds = append(batchIds, batch.ID)
		} else {
			detail.Qty = NormalizeQuantity(item.Qty, product.SaleType)
		}

		details = append(details, detail)
	}

	seqNo, err := utils.GetSequence[Order](ctx)
	if err != nil {
		return nil, err
	}

	order := Order{
		SequenceNo:    decimal.NewFromInt(seqNo),
		OrderNumber:   "P-" + fmt.Sprint(seqNo),
		CustomerId:    input.CustomerId,
		UserId:        userId,
		PickupDate:    input.PickupDate,
		CurrentStatus: OrderStatusPending,
		Notes:         input.Notes,
		Details:       details,
	}

	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// claim lots once the order id exists; losers of the race roll back
	for _, batchId := range batchIds {
		if err := ReserveBatch(ctx, tx, batchId, order.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := PublishSaleEvent(ctx, tx, time.Now().UTC(), order.ID, EventReferenceTypeOrder, order, EventActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &order, nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchSingleModel[Order](ctx, id, "Details")
}

func ListOrders(ctx context.Context, status OrderStatus, customerId int, limit int, offset int) ([]*Order, error) {
	db := config.GetDB()

	if limit <= 0 || limit > 200 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).Model(&Order{}).Preload("Details")
	if status != "" {
		query = query.Where("current_status = ?", status)
	}
	if customerId > 0 {
		query = query.Where("customer_id = ?", customerId)
	}

	var orders []*Order
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkOrderReady moves a pending order to Ready (items picked and packed).
func MarkOrderReady(ctx context.Context, id int) (*Order, error) {
	db := config.GetDB()

	order, err := utils.FetchSingleModel[Order](ctx, id, "Details")
	if err != nil {
		return nil, err
	}
	if order.CurrentStatus != OrderStatusPending {
		return nil, fmt.Errorf("cannot mark %s order ready", order.CurrentStatus)
	}

	order.CurrentStatus = OrderStatusReady
	if err := db.WithContext(ctx).Model(order).Update("current_status", OrderStatusReady).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder releases every reserved lot and closes the order.
func CancelOrder(ctx context.Context, id int) (*Order, error) {
	db := config.GetDB()

	order, err := utils.FetchSingleModel[Order](ctx, id, "Details")
	if err != nil {
		return nil, err
	}
	if order.CurrentStatus == OrderStatusCompleted || order.CurrentStatus == OrderStatusCancelled {
		return nil, fmt.Errorf("order is already %s", order.CurrentStatus)
	}

	tx := db.Begin()

	for _, detail := range order.Details {
		if detail.BatchId == nil {
			continue
		}
		if err := ReleaseBatch(ctx, tx, *detail.BatchId, order.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	order.CurrentStatus = OrderStatusCancelled
	if err := tx.WithContext(ctx).Model(order).Update("current_status", OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishSaleEvent(ctx, tx, time.Now().UTC(), order.ID, EventReferenceTypeOrder, order, EventActionCancel); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return order, nil
}

// completeOrderForSale closes an order inside the checkout transaction that
// converted it to a sale.
func completeOrderForSale(ctx context.Context, tx *gorm.DB, orderId int, saleId int) error {
	var order Order
	if err := tx.WithContext(ctx).First(&order, orderId).Error; err != nil {
		return errors.New("order not found")
	}
	if order.CurrentStatus == OrderStatusCompleted || order.CurrentStatus == OrderStatusCancelled {
		return fmt.Errorf("order is already %s", order.CurrentStatus)
	}

	return tx.WithContext(ctx).Model(&order).Update("current_status", OrderStatusCompleted).Error
}

// OrderCheckoutDetails maps an order's lines into checkout detail records so
// a pickup becomes a regular sale.
func OrderCheckoutDetails(order *Order) []NewSaleDetail {
	details := make([]NewSaleDetail, 0, len(order.Details))
	for _, d := range order.Details {
		item := NewSaleDetail{
			ProductId: d.ProductId,
			Qty:       d.Qty.String(),
			Notes:     d.Notes,
		}
		if d.BatchId != nil {
			item.BatchId = *d.BatchId
		}
		details = append(details, item)
	}
	return details
}
