package model

import "time"

// PasswordResetTokenModel mirrors the 'password_reset_tokens' table.
type PasswordResetTokenModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	AccountID int64      `gorm:"not null;index"`
	TokenHash string     `gorm:"type:varchar(255);not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	Used      bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time `gorm:"type:timestamptz"`
	IPAddress string     `gorm:"type:varchar(45)"`
	UserAgent string     `gorm:"type:varchar(512)"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}
