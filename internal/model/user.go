package model

// User is a login identity. PasswordHash and Salt are hex-encoded
// PBKDF2-HMAC-SHA256 material.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"password_hash"`
	Salt         string `gorm:"not null" json:"salt"`
}

func (User) TableName() string { return "users" }
