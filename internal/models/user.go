// internal/models/user.go
package models

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	// No gorm defaults on the flags: a default tag makes gorm drop an
	// explicit false on insert. Registration and seeding set them.
	IsActive bool `json:"is_active"`
	IsAdmin  bool `json:"is_admin"`
}

// bcrypt silently ignores everything past 72 bytes in newer versions and
// errors in older ones; truncate up front so both hashing and verification
// see the same input.
const maxPasswordBytes = 72

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies a bcrypt hash, falling back to the legacy
// hex-encoded SHA-256 scheme for accounts imported from historical data
// that was never rehashed.
func (u *User) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), truncatePassword(password))
	if err == nil {
		return nil
	}
	sum := sha256.Sum256([]byte(password))
	legacy := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(legacy), []byte(u.PasswordHash)) == 1 {
		return nil
	}
	return err
}
