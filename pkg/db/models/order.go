package models

import (
	"time"

	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	"github.com/praveensri2018/sivanyaAPI/pkg/types"
	"github.com/shopspring/decimal"
)

// Order is the header row created atomically with its line items.
type Order struct {
	ID              int64               `gorm:"column:order_id;primaryKey;autoIncrement"`
	UserID          int64               `gorm:"column:user_id;not null;index"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	OrderStatus     enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'Pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'Pending'"`
	Lines           []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
