package models

import (
	"context"
	"time"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
)

// Terminal is a physical POS station. Cash sessions are scoped to one.
type Terminal struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name" binding:"required"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTerminal struct {
	Name string `json:"name" binding:"required"`
}

func CreateTerminal(ctx context.Context, input *NewTerminal) (*Terminal, error) {
	db := config.GetDB()

	if err := utils.ValidateUnique[Terminal](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	terminal := Terminal{Name: input.Name}
	if err := db.WithContext(ctx).Create(&terminal).Error; err != nil {
		return nil, err
	}
	return &terminal, nil
}

func ListTerminals(ctx context.Context) ([]*Terminal, error) {
	db := config.GetDB()

	var terminals []*Terminal
	if err := db.WithContext(ctx).Order("name asc").Find(&terminals).Error; err != nil {
		return nil, err
	}
	return terminals, nil
}
