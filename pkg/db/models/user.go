package models

import (
	"time"

	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
)

// User represents the canonical identity entity. The tier assigned at
// registration governs every price lookup for the account.
type User struct {
	ID           int64          `gorm:"column:user_id;primaryKey;autoIncrement"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	Phone        *string        `gorm:"column:phone;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Address      *string        `gorm:"column:address"`
	UserType     enums.UserTier `gorm:"column:user_type;type:text;not null"`
	IsAdmin      bool           `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralisation.
func (User) TableName() string {
	return "users"
}
