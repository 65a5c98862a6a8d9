package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthProvider records how an account was created and therefore how it may log in.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// User is an account holder and owner of portfolios.
type User struct {
	ID           string       `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	FullName     string       `json:"fullName" gorm:"type:varchar(255);not null"`
	FullNameKey  string       `json:"-" gorm:"type:varchar(255);index"`
	Email        string       `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string       `json:"-" gorm:"type:varchar(255)"`
	AuthProvider AuthProvider `json:"authProvider" gorm:"type:varchar(16);not null;default:password"`
	ProfileImage string       `json:"profileImage" gorm:"type:text"`
	Phone        string       `json:"phone" gorm:"type:varchar(64)"`
	Location     string       `json:"location" gorm:"type:varchar(255)"`

	// Portfolios lists owned portfolio ids in creation order. Portfolio.UserID is authoritative.
	Portfolios datatypes.JSONSlice[string] `json:"portfolios"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.AuthProvider == AuthProviderPassword && u.PasswordHash != ""
}

// BeforeSave keeps the normalized columns in step with the display values.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = NormalizeEmail(u.Email)
	u.FullNameKey = NormalizeKey(u.FullName)
	if u.AuthProvider == "" {
		u.AuthProvider = AuthProviderPassword
	}
	if u.Portfolios == nil {
		u.Portfolios = datatypes.JSONSlice[string]{}
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeKey turns a display value or a URL slug into the lookup key used for
// public portfolio addresses: hyphens become spaces, whitespace runs collapse,
// and the result is lower-cased. "Jane Doe" and "jane-doe" share the key "jane doe".
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " "))
}
