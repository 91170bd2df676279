package model

import "time"

// LoginAttemptModel mirrors the append-only 'login_attempts' table.
// AccountID is NULL when the identifier did not resolve.
type LoginAttemptModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	AccountID  *int64    `gorm:"index:idx_login_attempts_account_created,priority:1"`
	Identifier string    `gorm:"type:varchar(255);not null"`
	Success    bool      `gorm:"not null"`
	Outcome    string    `gorm:"type:varchar(32);not null"`
	IPAddress  string    `gorm:"type:varchar(45)"`
	UserAgent  string    `gorm:"type:varchar(512)"`
	CreatedAt  time.Time `gorm:"index:idx_login_attempts_account_created,priority:2,sort:desc"`
}

// TableName explicitly sets the table name for GORM.
func (LoginAttemptModel) TableName() string {
	return "login_attempts"
}
