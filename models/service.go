package models

import (
	"gorm.io/gorm"
)

type Service struct {
	gorm.Model
	BusinessID      uint     `json:"business_id"`
	Business        Business `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"duration_minutes"` // sizes every slot for this service
	Price           float64  `json:"price"`
	Discount        float64  `json:"discount"` // percentage
	DiscountedPrice float64  `json:"discounted_price" gorm:"-"`
	IsActive        bool     `json:"is_active" gorm:"default:true"`
}

func (s *Service) AfterFind(tx *gorm.DB) (err error) {
	s.DiscountedPrice = s.Price - (s.Price * s.Discount / 100)
	return
}
