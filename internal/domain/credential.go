package domain

import "time"

// SiteCredential is a login saved by a user for a third-party site.
type SiteCredential struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	WebAddress string `gorm:"size:2048;not null"`
	Username   string `gorm:"size:255;not null"`
	Email      string `gorm:"size:255;not null"`
	Password   string `gorm:"size:255;not null"`
	OwnerID    int64  `gorm:"not null;index"`
	Owner      *User  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (SiteCredential) TableName() string { return "site_credentials" }

// CapturedCredential is a (url, password) pair pushed by the browser extension.
// It has no owner and lives in its own store.
type CapturedCredential struct {
	ID        int64
	WebURL    string
	Password  string
	CreatedAt time.Time
}
