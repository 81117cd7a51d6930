// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered CookFeed member.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	ProfilePic string    `gorm:"size:255" json:"profile_pic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Posts      []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

func (User) TableName() string { return "user" }
