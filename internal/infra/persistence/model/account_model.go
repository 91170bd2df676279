package model

import "time"

// AccountModel mirrors the 'users' table. Email is indexed but only unique per role.
type AccountModel struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement"`
	Username            string     `gorm:"type:varchar(100)"`
	Email               string     `gorm:"type:varchar(255);not null;index:idx_users_email_lower,expression:lower(email)"`
	Password            string     `gorm:"type:varchar(255);not null;default:''"`
	Role                string     `gorm:"type:varchar(50);not null;default:''"`
	Status              string     `gorm:"type:varchar(50);not null;default:'Active'"`
	VerificationStatus  string     `gorm:"type:varchar(50);not null;default:'Pending'"`
	PhoneNumber         string     `gorm:"type:varchar(50)"`
	FailedLoginAttempts int        `gorm:"not null;default:0"`
	LockoutEnd          *time.Time `gorm:"type:timestamptz"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "users"
}
