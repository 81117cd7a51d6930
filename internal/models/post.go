package models

import (
	"strings"
	"time"
)

// DefaultEmoji is shown for posts submitted without one.
const DefaultEmoji = "🍽️"

// AnonymousAuthor is displayed when a post has neither an owner nor a username snapshot.
const AnonymousAuthor = "Anonymous"

// Post represents a recipe in the feed. Posts are never deleted and only
// their reaction counter changes after creation.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Username    string    `gorm:"size:80" json:"username"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:500;not null" json:"description"`
	Ingredients string    `gorm:"size:500;not null" json:"ingredients"`
	Emoji       string    `gorm:"size:10" json:"emoji"`
	Image       string    `gorm:"size:255" json:"image,omitempty"`
	Method      string    `gorm:"type:text" json:"method,omitempty"`
	Reactions   int       `gorm:"not null;default:0" json:"reactions"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Post) TableName() string { return "post" }

// AuthorName prefers the owner's current username, then the snapshot taken
// at creation time, then AnonymousAuthor.
func (p *Post) AuthorName() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	if p.Username != "" {
		return p.Username
	}
	return AnonymousAuthor
}

// DisplayEmoji returns the post emoji or DefaultEmoji.
func (p *Post) DisplayEmoji() string {
	if p.Emoji == "" {
		return DefaultEmoji
	}
	return p.Emoji
}

// HasRemoteImage reports whether Image is an absolute URL rather than a file
// stored under the uploads directory.
func (p *Post) HasRemoteImage() bool {
	return strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://")
}
