package models

import (
	"time"
)

type User struct {
	Base
	Email       string            `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string            `gorm:"not null" json:"-"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Role        UserRole          `gorm:"not null;default:'client'" json:"role"`
	Status      UserStatus        `gorm:"not null;default:'pending'" json:"status"`
	Profile     *ClientProfile    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Permissions []UserPermission  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
	Segments    []AudienceSegment `gorm:"foreignKey:ClientID" json:"segments,omitempty"`
	Campaigns   []Campaign        `gorm:"foreignKey:ClientID" json:"campaigns,omitempty"`
	Files       []File            `gorm:"foreignKey:UserID" json:"files,omitempty"`
}

type PasswordReset struct {
	Base
	User      *User     `json:"user,omitempty"`
	UserID    string    `gorm:"type:char(36);not null" json:"userId"`
	Code      string    `gorm:"not null" json:"code"`
	Used      bool      `gorm:"default:false" json:"used"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthSession struct {
	Base
	UserID    string    `gorm:"type:char(36);not null" json:"userId"`
	User      *User     `json:"user,omitempty"`
	Token     string    `gorm:"not null" json:"token"`
	Refresh   string    `gorm:"not null" json:"refresh"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
}
