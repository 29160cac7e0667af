package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type UserRole string
type UserStatus string
type SegmentPlatform string
type CampaignChannel string
type ScheduleType string
type CampaignStatus string
type CampaignEventType string
type FlowTrigger string
type FlowAction string
type ProposalStatus string
type ContentType string
type ContentStatus string
type AuditAction string

// User role constants
const (
	UserRoleClient           UserRole = "client"
	UserRoleAdmin            UserRole = "admin"
	UserRoleEmployee         UserRole = "employee"
	UserRoleDepartmentLeader UserRole = "department_leader"
)

// User lifecycle constants
const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusInactive  UserStatus = "inactive"
)

// Segment platform constants
const (
	SegmentPlatformEmail    SegmentPlatform = "email"
	SegmentPlatformWhatsApp SegmentPlatform = "whatsapp"
	SegmentPlatformBoth     SegmentPlatform = "both"
	SegmentPlatformAll      SegmentPlatform = "all"
)

// Campaign channel constants
const (
	CampaignChannelWhatsApp CampaignChannel = "whatsapp"
	CampaignChannelEmail    CampaignChannel = "email"
)

// Schedule type constants
const (
	ScheduleTypeImmediate ScheduleType = "immediate"
	ScheduleTypeScheduled ScheduleType = "scheduled"
)

// Campaign status constants
const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// Campaign delivery event constants
const (
	CampaignEventDelivered CampaignEventType = "delivered"
	CampaignEventOpened    CampaignEventType = "opened"
	CampaignEventClicked   CampaignEventType = "clicked"
	CampaignEventFailed    CampaignEventType = "failed"
)

// Flow trigger constants
const (
	FlowTriggerSignup       FlowTrigger = "signup"
	FlowTriggerSegmentJoin  FlowTrigger = "segment_join"
	FlowTriggerCampaignOpen FlowTrigger = "campaign_open"
	FlowTriggerManual       FlowTrigger = "manual"
)

// Flow step action constants
const (
	FlowActionSendMessage FlowAction = "send_message"
	FlowActionWait        FlowAction = "wait"
	FlowActionAddTag      FlowAction = "add_tag"
)

// Proposal lifecycle constants
const (
	ProposalStatusDraft     ProposalStatus = "draft"
	ProposalStatusSent      ProposalStatus = "sent"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusScheduled ProposalStatus = "scheduled"
)

// Content library constants
const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeVideo    ContentType = "video"
	ContentTypeCarousel ContentType = "carousel"

	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusApproved  ContentStatus = "approved"
	ContentStatusPublished ContentStatus = "published"
)

// Access control audit actions
const (
	AuditActionGrant    AuditAction = "grant"
	AuditActionRevoke   AuditAction = "revoke"
	AuditActionSuspend  AuditAction = "suspend"
	AuditActionActivate AuditAction = "activate"
	AuditActionCreate   AuditAction = "create"
	AuditActionDelete   AuditAction = "delete"
)

// IsValidUserRole checks if a given role is valid
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleClient, UserRoleAdmin, UserRoleEmployee, UserRoleDepartmentLeader:
		return true
	default:
		return false
	}
}

// IsEmployeeRole reports whether a role routes through the employee
// invitation path instead of plain user creation.
func IsEmployeeRole(role UserRole) bool {
	return role == UserRoleEmployee || role == UserRoleDepartmentLeader
}
