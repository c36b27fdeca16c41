package db

import "time"

// User is an authenticated actor. Role holds one of the rbac roles.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:16;not null;default:maker" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// TableName pins the table name.
func (User) TableName() string {
	return "users"
}
