// Package accounts holds the Account entity and its keyed store.
package accounts

import (
	"time"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
)

// Account is one user record. Username and email are unique across all
// accounts. An ACTIVE account never carries a verification code.
type Account struct {
	ID                    uint       `json:"id" gorm:"primarykey"`
	Username              string     `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email                 string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash          string     `json:"-" gorm:"not null"`
	Status                Status     `json:"status" gorm:"size:16;not null;index"`
	VerificationCode      *string    `json:"-" gorm:"uniqueIndex;size:128"`
	VerificationExpiresAt *time.Time `json:"-"`
	Version               uint       `json:"-" gorm:"not null;default:1"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

func (a *Account) SetVerificationCode(code string, expiresAt time.Time) {
	a.VerificationCode = &code
	a.VerificationExpiresAt = &expiresAt
}

func (a *Account) ClearVerificationCode() {
	a.VerificationCode = nil
	a.VerificationExpiresAt = nil
}

// Activate moves a PENDING account to ACTIVE and consumes its code.
func (a *Account) Activate() {
	a.Status = StatusActive
	a.ClearVerificationCode()
}

// CodeExpired reports whether the outstanding code is past its expiry at now.
// An account without an expiry is treated as expired.
func (a *Account) CodeExpired(now time.Time) bool {
	if a.VerificationExpiresAt == nil {
		return true
	}
	return now.After(*a.VerificationExpiresAt)
}
