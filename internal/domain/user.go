package domain

import "time"

// User represents an account holder of the password dashboard.
type User struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"size:100;not null"`
	Email           string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash    string `gorm:"size:255;not null"`
	ImageFile       string `gorm:"size:255"`
	PasswordVersion int64  `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (User) TableName() string { return "users" }
