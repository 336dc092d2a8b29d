package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
)

type ProductCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductCategory struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

func (input *NewProductCategory) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[ProductCategory](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateProductCategory(ctx context.Context, input *NewProductCategory) (*ProductCategory, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := ProductCategory{
		Name:      input.Name,
		SortOrder: input.SortOrder,
		IsActive:  input.IsActive,
	}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateProductCategory(ctx context.Context, id int, input *NewProductCategory) (*ProductCategory, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchSingleModel[ProductCategory](ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = input.IsActive
	}

	if err := db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteProductCategory(ctx context.Context, id int) (*ProductCategory, error) {
	db := config.GetDB()

	category, err := utils.FetchSingleModel[ProductCategory](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Product](ctx, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("category still has products")
	}

	if err := db.WithContext(ctx).Delete(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func ListProductCategories(ctx context.Context) ([]*ProductCategory, error) {
	db := config.GetDB()

	var categories []*ProductCategory
	err := db.WithContext(ctx).Order("sort_order asc, name asc").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
