package models

import (
	"time"

	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	"github.com/shopspring/decimal"
)

// Payment records one payment attempt against an order. The reference is
// the externally supplied identifier the order materializer verifies.
type Payment struct {
	ID          int64               `gorm:"column:payment_id;primaryKey;autoIncrement"`
	OrderID     *int64              `gorm:"column:order_id;index"`
	UserID      int64               `gorm:"column:user_id;not null;index"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Reference   string              `gorm:"column:payment_reference;not null;uniqueIndex"`
	Status      enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'Pending'"`
	PaymentDate time.Time           `gorm:"column:payment_date;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
