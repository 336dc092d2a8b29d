package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/shopspring/decimal"
)

type Sale struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SequenceNo     decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	SaleNumber     string          `gorm:"size:50;not null" json:"sale_number"`
	CashSessionId  int             `gorm:"index;not null" json:"cash_session_id"`
	TerminalId     int             `gorm:"index;not null" json:"terminal_id"`
	UserId         int             `gorm:"index;not null" json:"user_id"`
	CustomerId     *int            `gorm:"index;default:null" json:"customer_id"`
	OrderId        *int            `gorm:"index;default:null" json:"order_id"`
	SaleDate       time.Time       `gorm:"not null" json:"sale_date"`
	PaymentMethod  PaymentMethod   `gorm:"type:enum('Cash','Card','QR','Transfer');not null" json:"payment_method"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	DiscountTotal  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_total"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	AmountTendered decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_tendered"`
	ChangeDue      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"change_due"`
	Notes          string          `gorm:"type:text" json:"notes"`
	Details        []SaleDetail    `gorm:"foreignKey:SaleId" json:"details"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleDetail snapshots one cart line at the moment of checkout. Catalog
// edits after the fact never rewrite a receipt.
type SaleDetail struct {
	ID                   int              `gorm:"primary_key" json:"id"`
	SaleId               int              `gorm:"index;not null" json:"sale_id"`
	ProductId            int              `gorm:"index;not null" json:"product_id"`
	ProductName          string           `gorm:"size:100;not null" json:"product_name"`
	SaleType             SaleType         `gorm:"type:enum('UNIT','WEIGHT');not null" json:"sale_type"`
	Qty                  decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice            decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	EffectiveUnitPrice   *decimal.Decimal `gorm:"type:decimal(20,4);default:null" json:"effective_unit_price"`
	ScannedBarcode       string           `gorm:"size:20;default:null" json:"scanned_barcode"`
	BatchId              *int             `gorm:"index;default:null" json:"batch_id"`
	BatchNumber          string           `gorm:"size:50;default:null" json:"batch_number"`
	ActualWeight         *decimal.Decimal `gorm:"type:decimal(20,4);default:null" json:"actual_weight"`
	DiscountAmount       decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	DiscountAutoDetected *bool            `gorm:"not null;default:false" json:"discount_auto_detected"`
	Scenario             PricingScenario  `gorm:"type:enum('Normal','Discount','Override');not null;default:'Normal'" json:"scenario"`
	Subtotal             decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	TotalAmount          decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Notes                string           `gorm:"size:255" json:"notes"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// NewSaleDetail is one incoming checkout line. Qty arrives as the raw text
// the cashier typed; normalization happens server-side per sale type.
type NewSaleDetail struct {
	ProductId      int             `json:"product_id" binding:"required"`
	Qty            string          `json:"qty"`
	Notes          string          `json:"notes"`
	BatchId        int             `json:"batch_id"`
	ScannedBarcode string          `json:"scanned_barcode"`
	Discount       decimal.Decimal `json:"discount"`
}

type NewSale struct {
	CashSessionId  int             `json:"cash_session_id" binding:"required"`
	CustomerId     int             `json:"customer_id"`
	OrderId        int             `json:"order_id"`
	PaymentMethod  PaymentMethod   `json:"payment_method" binding:"required"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	Notes          string          `json:"notes"`
	Details        []NewSaleDetail `json:"details" binding:"required"`
}

var ErrDiscountExceedsSubtotal = errors.New("discount exceeds line subtotal")

func (input *NewSale) validate(ctx context.Context) (*CashSession, error) {
	if !input.PaymentMethod.Valid() {
		return nil, errors.New("invalid payment method")
	}
	if len(input.Details) == 0 {
		return nil, errors.New("sale has no items")
	}
	if input.CustomerId > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
			return nil, errors.New("customer not found")
		}
	}
	session, err := utils.FetchSingleModel[CashSession](ctx, input.CashSessionId)
	if err != nil {
		return nil, errors.New("cash session not found")
	}
	if session.Status != CashSessionStatusOpen {
		return nil, errors.New("cash session is closed")
	}
	return session, nil
}

// resolveSaleLines turns incoming detail records into priced cart lines.
// Batch references become BatchLines; scanned labels are decoded and
// verified; everything else is a standard line with normalized quantity.
func resolveSaleLines(ctx context.Context, details []NewSaleDetail, forOrderId int) ([]CartLine, error) {
	lines := make([]CartLine, 0, len(details))
	seenBatches := make(map[int]bool)

	for _, detail := range details {
		product, err := GetProduct(ctx, detail.ProductId)
		if err != nil {
			return nil, fmt.Errorf("product %d not found", detail.ProductId)
		}

		if detail.BatchId > 0 {
			if seenBatches[detail.BatchId] {
				return nil, fmt.Errorf("batch %d appears twice", detail.BatchId)
			}
			seenBatches[detail.BatchId] = true

			batch, err := GetProductBatch(ctx, detail.BatchId)
			if err != nil {
				return nil, fmt.Errorf("batch %d not found", detail.BatchId)
			}
			if batch.ProductId != product.ID {
				return nil, fmt.Errorf("batch %d does not belong to product %d", detail.BatchId, product.ID)
			}
			if !batch.Available(forOrderId) {
				return nil, ErrBatchUnavailable
			}
			lines = append(lines, BuildBatchLine(batch, detail.Notes))
			continue
		}

		var scanned *DecodedBarcode
		if detail.ScannedBarcode != "" {
			scanned, err = DecodeScaleBarcode(detail.ScannedBarcode)
			if err != nil {
				return nil, fmt.Errorf("invalid scanned barcode %s: %v", detail.ScannedBarcode, err)
			}
		}

		line := BuildStandardLine(product, detail.Qty, detail.Discount, scanned, detail.Notes)
		if config.EnforceDiscountCap() && line.Discount.GreaterThan(line.Subtotal()) {
			return nil, ErrDiscountExceedsSubtotal
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// PricedLine is the wire shape of one resolved line for the price preview.
type PricedLine struct {
	ProductId            int              `json:"product_id"`
	Qty                  decimal.Decimal  `json:"qty"`
	UnitPrice            decimal.Decimal  `json:"unit_price"`
	EffectiveUnitPrice   *decimal.Decimal `json:"effective_unit_price,omitempty"`
	BatchId              *int             `json:"batch_id,omitempty"`
	BatchNumber          string           `json:"batch_number,omitempty"`
	ActualWeight         *decimal.Decimal `json:"actual_weight,omitempty"`
	DiscountAmount       decimal.Decimal  `json:"discount_amount"`
	DiscountAutoDetected bool             `json:"discount_auto_detected"`
	QtyLocked            bool             `json:"qty_locked"`
	Scenario             PricingScenario  `json:"scenario"`
	Subtotal             decimal.Decimal  `json:"subtotal"`
	Total                decimal.Decimal  `json:"total"`
}

type PricedCart struct {
	Lines  []PricedLine `json:"lines"`
	Totals CartTotals   `json:"totals"`
}

// PriceCart runs the cart engine without persisting anything; the checkout
// screen calls it to render totals as the cart changes.
func PriceCart(ctx context.Context, details []NewSaleDetail) (*PricedCart, error) {
	lines, err := resolveSaleLines(ctx, details, 0)
	if err != nil {
		return nil, err
	}

	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, toPricedLine(line))
	}

	return &PricedCart{Lines: priced, Totals: TotalCart(lines)}, nil
}

func toPricedLine(line CartLine) PricedLine {
	out := PricedLine{
		ProductId:      line.LineProductId(),
		Qty:            line.Quantity(),
		UnitPrice:      line.ChargedUnitPrice(),
		DiscountAmount: line.DiscountAmount(),
		Scenario:       line.Scenario(),
		Subtotal:       line.Subtotal(),
		Total:          line.Total(),
	}
	switch l := line.(type) {
	case StandardLine:
		out.UnitPrice = l.UnitPrice
		out.EffectiveUnitPrice = l.EffectiveUnitPrice
		out.DiscountAutoDetected = l.DiscountAutoDetected
		out.QtyLocked = l.ScannedBarcode != ""
	case BatchLine:
		batchId := l.BatchId
		weight := l.FixedWeight
		out.BatchId = &batchId
		out.BatchNumber = l.BatchNumber
		out.ActualWeight = &weight
		out.QtyLocked = true
	}
	return out
}

// CreateSale is the checkout: it prices the cart, claims lots, adjusts
// stock, writes the sale with its ledger movement in one transaction, and
// leaves a sale event for the outbox dispatcher.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	db := config.GetDB()

	session, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	lines, err := resolveSaleLines(ctx, input.Details, input.OrderId)
	if err != nil {
		return nil, err
	}
	totals := TotalCart(lines)

	if input.PaymentMethod == PaymentMethodCash && input.AmountTendered.GreaterThan(decimal.Zero) &&
		input.AmountTendered.LessThan(totals.GrandTotal) {
		return nil, errors.New("amount tendered is less than total")
	}

	tx := db.Begin()
	now := time.Now().UTC()

	var details []SaleDetail
	for i, line := range lines {
		detail := SaleDetail{
			ProductId:      line.LineProductId(),
			Qty:            line.Quantity(),
			UnitPrice:      line.ChargedUnitPrice(),
			DiscountAmount: line.DiscountAmount(),
			Scenario:       line.Scenario(),
			Subtotal:       line.Subtotal(),
			TotalAmount:    line.Total(),
			Notes:          input.Details[i].Notes,
		}

		var product Product
		if err := tx.WithContext(ctx).First(&product, line.LineProductId()).Error; err != nil {
			tx.Rollback()
			return nil, utils.ErrorRecordNotFound
		}
		detail.ProductName = product.Name
		detail.SaleType = product.SaleType

		switch l := line.(type) {
		case StandardLine:
			detail.UnitPrice = l.UnitPrice
			detail.EffectiveUnitPrice = l.EffectiveUnitPrice
			detail.ScannedBarcode = l.ScannedBarcode
			auto := l.DiscountAutoDetected
			detail.DiscountAutoDetected = &auto

			if err := ValidateUnitStock(tx, ctx, l.ProductId, l.Qty); err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := DecrementStock(tx, ctx, l.ProductId, l.Qty); err != nil {
				tx.Rollback()
				return nil, err
			}
		case BatchLine:
			batchId := l.BatchId
			weight := l.FixedWeight
			detail.BatchId = &batchId
			detail.BatchNumber = l.BatchNumber
			detail.ActualWeight = &weight

			if err := MarkBatchSold(ctx, tx, l.BatchId, input.OrderId, now); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		details = append(details, detail)
	}

	sale := Sale{
		CashSessionId: session.ID,
		TerminalId:    session.TerminalId,
		UserId:        userId,
		SaleDate:      now,
		PaymentMethod: input.PaymentMethod,
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.DiscountTotal,
		TotalAmount:   totals.GrandTotal,
		Notes:         input.Notes,
		Details:       details,
	}
	if input.CustomerId > 0 {
		sale.CustomerId = &input.CustomerId
	}
	if input.OrderId > 0 {
		sale.OrderId = &input.OrderId
	}
	if input.PaymentMethod == PaymentMethodCash && input.AmountTendered.GreaterThan(decimal.Zero) {
		sale.AmountTendered = input.AmountTendered
		sale.ChangeDue = input.AmountTendered.Sub(totals.GrandTotal)
	}

	seqNo, err := utils.GetSequence[Sale](ctx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	sale.SequenceNo = decimal.NewFromInt(seqNo)
	sale.SaleNumber = "V-" + fmt.Sprint(seqNo)

	if err := tx.WithContext(ctx).Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := recordSaleMovement(ctx, tx, session.ID, sale.ID, input.PaymentMethod, totals.GrandTotal,
		"Venta "+sale.SaleNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	if input.OrderId > 0 {
		if err := completeOrderForSale(ctx, tx, input.OrderId, sale.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := PublishSaleEvent(ctx, tx, now, sale.ID, EventReferenceTypeSale, sale, EventActionCreate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &sale, nil
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	return utils.FetchSingleModel[Sale](ctx, id, "Details")
}

func ListSales(ctx context.Context, cashSessionId int, fromDate *time.Time, toDate *time.Time, limit int, offset int) ([]*Sale, error) {
	db := config.GetDB()

	if limit <= 0 || limit > 200 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).Model(&Sale{}).Preload("Details")
	if cashSessionId > 0 {
		query = query.Where("cash_session_id = ?", cashSessionId)
	}
	if fromDate != nil {
		query = query.Where("sale_date >= ?", *fromDate)
	}
	if toDate != nil {
		query = query.Where("sale_date <= ?", *toDate)
	}

	var sales []*Sale
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
