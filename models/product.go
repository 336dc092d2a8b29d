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

type Product struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name" binding:"required"`
	CategoryId     int             `gorm:"index;default:null" json:"category_id"`
	SaleType       SaleType        `gorm:"type:enum('UNIT','WEIGHT');not null;default:'UNIT'" json:"sale_type" binding:"required"`
	UnitLabel      string          `gorm:"size:20;not null;default:'unidad'" json:"unit_label"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price" binding:"required"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	DiscountActive *bool           `gorm:"not null;default:false" json:"discount_active"`
	IsBatchTracked *bool           `gorm:"not null;default:false" json:"is_batch_tracked"`
	ScaleCode      string          `gorm:"size:5;index;default:null" json:"scale_code"`
	Barcode        string          `gorm:"size:20;index;default:null" json:"barcode"`
	StockQty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_qty"`
	ImageUrl       string          `gorm:"size:255;default:null" json:"image_url"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) HasActiveDiscount() bool {
	return utils.DereferencePtr(p.DiscountActive, false) && p.DiscountAmount.GreaterThan(decimal.Zero)
}

func (p *Product) IsBatched() bool {
	return utils.DereferencePtr(p.IsBatchTracked, false)
}

type NewProduct struct {
	Name           string          `json:"name" binding:"required"`
	CategoryId     int             `json:"category_id"`
	SaleType       SaleType        `json:"sale_type" binding:"required,saletype"`
	UnitLabel      string          `json:"unit_label"`
	UnitPrice      decimal.Decimal `json:"unit_price" binding:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountActive *bool           `json:"discount_active"`
	IsBatchTracked *bool           `json:"is_batch_tracked"`
	ScaleCode      string          `json:"scale_code"`
	Barcode        string          `json:"barcode"`
	StockQty       decimal.Decimal `json:"stock_qty"`
	ImageUrl       string          `json:"image_url"`
}

func (input *NewProduct) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Product](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.ScaleCode != "" {
		if len(input.ScaleCode) != 5 {
			return errors.New("scale code must be 5 digits")
		}
		if err := utils.ValidateUnique[Product](ctx, "scale_code", input.ScaleCode, id); err != nil {
			return err
		}
	}
	if input.Barcode != "" {
		if err := utils.ValidateUnique[Product](ctx, "barcode", input.Barcode, id); err != nil {
			return err
		}
	}
	// validate category
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, input.CategoryId); err != nil {
			return errors.New("category not found")
		}
	}
	if !input.SaleType.Valid() {
		return errors.New("invalid sale type")
	}
	if input.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("unit price must be positive")
	}
	// a catalog discount can never exceed the catalog price
	if input.DiscountAmount.GreaterThan(input.UnitPrice) {
		return errors.New("discount cannot exceed unit price")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	product := Product{
		Name:           input.Name,
		CategoryId:     input.CategoryId,
		SaleType:       input.SaleType,
		UnitLabel:      input.UnitLabel,
		UnitPrice:      input.UnitPrice,
		DiscountAmount: input.DiscountAmount,
		DiscountActive: input.DiscountActive,
		IsBatchTracked: input.IsBatchTracked,
		ScaleCode:      input.ScaleCode,
		Barcode:        input.Barcode,
		StockQty:       input.StockQty,
		ImageUrl:       input.ImageUrl,
	}
	if product.UnitLabel == "" {
		if product.SaleType == SaleTypeWeight {
			product.UnitLabel = "kg"
		} else {
			product.UnitLabel = "unidad"
		}
	}

	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	invalidateProductCache(&product)
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchSingleModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.CategoryId = input.CategoryId
	product.SaleType = input.SaleType
	product.UnitLabel = input.UnitLabel
	product.UnitPrice = input.UnitPrice
	product.DiscountAmount = input.DiscountAmount
	product.DiscountActive = input.DiscountActive
	product.IsBatchTracked = input.IsBatchTracked
	product.ScaleCode = input.ScaleCode
	product.Barcode = input.Barcode
	product.StockQty = input.StockQty
	product.ImageUrl = input.ImageUrl

	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}

	invalidateProductCache(product)
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()

	product, err := utils.FetchSingleModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	// sold products stay for reporting; deactivate instead
	count, err := utils.ResourceCountWhere[SaleDetail](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("product already used in sales; deactivate it instead")
	}

	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, err
	}

	invalidateProductCache(product)
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchSingleModel[Product](ctx, id)
}

func ListProducts(ctx context.Context, name string, categoryId int, activeOnly bool, limit int, offset int) ([]*Product, error) {
	db := config.GetDB()

	if limit <= 0 || limit > 200 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).Model(&Product{})
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if categoryId > 0 {
		query = query.Where("category_id = ?", categoryId)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []*Product
	err := query.Order("name asc").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {
	db := config.GetDB()

	product, err := utils.FetchSingleModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsActive = &isActive
	if err := db.WithContext(ctx).Model(product).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}

	invalidateProductCache(product)
	return product, nil
}

// GetProductByScaleCode resolves the 5-digit in-store code embedded in scale
// barcodes. Lookups happen on every scan, so hits are cached in Redis.
func GetProductByScaleCode(ctx context.Context, scaleCode string) (*Product, error) {
	cacheKey := "product_scale_" + scaleCode

	var cached Product
	if found, err := config.GetRedisObject(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	db := config.GetDB()
	var product Product
	err := db.WithContext(ctx).Where("scale_code = ?", scaleCode).First(&product).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := config.SetRedisObject(cacheKey, &product, 10*time.Minute); err != nil {
		config.LogError(config.GetLogger(), "product.go", "GetProductByScaleCode", "SetRedisObject", cacheKey, err)
	}
	return &product, nil
}

// GetProductByBarcode resolves a regular (non-scale) catalog barcode.
func GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	db := config.GetDB()
	var product Product
	err := db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &product, nil
}

func invalidateProductCache(product *Product) {
	keys := []string{fmt.Sprintf("product_%d", product.ID)}
	if product.ScaleCode != "" {
		keys = append(keys, "product_scale_"+product.ScaleCode)
	}
	if err := config.RemoveRedisKey(keys...); err != nil {
		config.LogError(config.GetLogger(), "product.go", "invalidateProductCache", "RemoveRedisKey", keys, err)
	}
}

// ValidateUnitStock checks whether a unit-counted product can cover qty.
// Weighed products are cut to order; their stock is advisory only.
func ValidateUnitStock(tx *gorm.DB, ctx context.Context, productId int, qty decimal.Decimal) error {
	var product Product
	if err := tx.WithContext(ctx).First(&product, productId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if product.SaleType != SaleTypeUnit {
		return nil
	}
	if product.StockQty.LessThan(qty) {
		return fmt.Errorf("insufficient stock for %s", product.Name)
	}
	return nil
}

// DecrementStock reduces on-hand stock inside the checkout transaction.
func DecrementStock(tx *gorm.DB, ctx context.Context, productId int, qty decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&Product{}).
		Where("id = ?", productId).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty)).Error
}
