package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
)

type Customer struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone      string    `gorm:"size:20;index" json:"phone"`
	Email      string    `gorm:"size:100" json:"email"`
	DocumentId string    `gorm:"size:20;index" json:"document_id"`
	Notes      string    `gorm:"type:text" json:"notes"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	DocumentId string `json:"document_id"`
	Notes      string `json:"notes"`
}

// CreateCustomer(newCustomer) (Customer,error)
// UpdateCustomer(id, newCustomer) (Customer,error)
// DeleteCustomer(id) (Customer,error)
// GetCustomer(id) (Customer,error)
// SearchCustomers(term) ([]Customer,error)

func (input *NewCustomer) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
		if err := utils.ValidateUnique[Customer](ctx, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
		if err := utils.ValidateUnique[Customer](ctx, "email", input.Email, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:       input.Name,
		Phone:      utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
		Email:      input.Email,
		DocumentId: input.DocumentId,
		Notes:      input.Notes,
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchSingleModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Phone = utils.FormatPhoneNumber(input.Phone, utils.CountryCode)
	customer.Email = input.Email
	customer.DocumentId = input.DocumentId
	customer.Notes = input.Notes

	if err := db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()

	customer, err := utils.FetchSingleModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	// customers referenced by sales or orders stay for history
	saleCount, err := utils.ResourceCountWhere[Sale](ctx, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	orderCount, err := utils.ResourceCountWhere[Order](ctx, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if saleCount > 0 || orderCount > 0 {
		return nil, errors.New("customer has transactions; deactivate instead")
	}

	if err := db.WithContext(ctx).Delete(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchSingleModel[Customer](ctx, id)
}

// SearchCustomers matches name, phone or document id for the customer
// selector widget.
func SearchCustomers(ctx context.Context, term string, limit int) ([]*Customer, error) {
	db := config.GetDB()

	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}

	query := db.WithContext(ctx).Model(&Customer{}).Where("is_active = ?", true)
	if term != "" {
		like := "%" + term + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR document_id LIKE ?", like, like, like)
	}

	var customers []*Customer
	if err := query.Order("name asc").Limit(limit).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func ToggleActiveCustomer(ctx context.Context, id int, isActive bool) (*Customer, error) {
	db := config.GetDB()

	customer, err := utils.FetchSingleModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	customer.IsActive = &isActive
	if err := db.WithContext(ctx).Model(customer).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}
	return customer, nil
}
