package models

import "time"

// AuditLog records one request to the admin endpoints. Request bodies are
// not stored since they carry the M-PIN.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Identity  string `gorm:"size:64;index"`
	Method    string `gorm:"size:16"`
	Path      string `gorm:"size:255"`
	Status    int    `gorm:"index"`
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
