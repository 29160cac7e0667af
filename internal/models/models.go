package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ClientProfile struct {
	Base
	UserID   string `gorm:"type:char(36);uniqueIndex;not null" json:"userId" validate:"required,uuid"`
	User     *User  `json:"user,omitempty"`
	Company  string `gorm:"not null" json:"company" validate:"required,min=2"`
	Industry string `json:"industry" validate:"omitempty"`
	Website  string `json:"website" validate:"omitempty,url"`
	Timezone string `gorm:"not null;default:'UTC'" json:"timezone"`
}

type AudienceSegment struct {
	Base
	Name     string          `gorm:"not null" json:"name" validate:"required,min=2"`
	ClientID string          `gorm:"type:char(36);not null" json:"clientId" validate:"required,uuid"`
	Client   *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Platform SegmentPlatform `gorm:"not null;default:'all'" json:"platform" validate:"required,oneof=email whatsapp both all"`
	// ContactsData holds inline contact rows (as imported from CSV) when the
	// segment was not expanded into segment_contacts rows.
	ContactsData datatypes.JSON `gorm:"type:json" json:"contactsData" validate:"omitempty,json"`
	// EstimatedSize is a snapshot of the contact count at creation time. It is
	// intentionally never recomputed after edits.
	EstimatedSize int              `gorm:"not null;default:0" json:"estimatedSize"`
	Contacts      []SegmentContact `gorm:"foreignKey:SegmentID;constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
}

type SegmentContact struct {
	Base
	SegmentID string           `gorm:"type:char(36);not null;index" json:"segmentId" validate:"required,uuid"`
	Segment   *AudienceSegment `json:"segment,omitempty"`
	Name      string           `json:"name" validate:"omitempty"`
	Email     string           `json:"email" validate:"omitempty,email"`
	Phone     string           `json:"phone" validate:"omitempty"`
	Company   string           `json:"company" validate:"omitempty"`
	Metadata  datatypes.JSON   `gorm:"type:json" json:"metadata" validate:"omitempty,json"`
}

type Campaign struct {
	Base
	Name     string          `gorm:"not null" json:"name" validate:"required,min=2"`
	Channel  CampaignChannel `gorm:"not null" json:"channel" validate:"required,oneof=whatsapp email"`
	ClientID string          `gorm:"type:char(36);not null;index" json:"clientId" validate:"required,uuid"`
	Client   *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	// SegmentID records which segment the recipients were derived from; the
	// recipient list itself is denormalized at creation and does not track
	// later segment edits.
	SegmentID    string          `gorm:"type:char(36)" json:"segmentId" validate:"omitempty,uuid"`
	Recipients   datatypes.JSON  `gorm:"type:json;not null" json:"recipients" validate:"required,json"`
	Subject      string          `json:"subject" validate:"omitempty"`
	Message      string          `gorm:"type:text;not null" json:"message" validate:"required"`
	ScheduleType ScheduleType    `gorm:"not null;default:'immediate'" json:"scheduleType" validate:"required,oneof=immediate scheduled"`
	ScheduledFor time.Time       `json:"scheduledFor" validate:"omitempty"`
	Status       CampaignStatus  `gorm:"not null;default:'draft'" json:"status"`
	Delivered    int             `gorm:"not null;default:0" json:"delivered"`
	Opened       int             `gorm:"not null;default:0" json:"opened"`
	Clicked      int             `gorm:"not null;default:0" json:"clicked"`
	Events       []CampaignEvent `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

type CampaignEvent struct {
	Base
	CampaignID string            `gorm:"type:char(36);not null;index" json:"campaignId" validate:"required,uuid"`
	Campaign   *Campaign         `json:"campaign,omitempty"`
	Recipient  string            `gorm:"not null" json:"recipient" validate:"required"`
	Event      CampaignEventType `gorm:"not null" json:"event" validate:"required,oneof=delivered opened clicked failed"`
	Error      string            `json:"error" validate:"omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// FlowStep is one entry in a triggered flow's ordered step list, stored as
// JSON on the flow. Order is array order.
type FlowStep struct {
	Action       FlowAction `json:"action" validate:"required,oneof=send_message wait add_tag"`
	DelayMinutes int        `json:"delayMinutes" validate:"min=0"`
	Template     string     `json:"template" validate:"omitempty"`
}

type TriggeredFlow struct {
	Base
	Name     string          `gorm:"not null" json:"name" validate:"required,min=2"`
	ClientID string          `gorm:"type:char(36);not null;index" json:"clientId" validate:"required,uuid"`
	Client   *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Trigger  FlowTrigger     `gorm:"not null" json:"trigger" validate:"required,oneof=signup segment_join campaign_open manual"`
	Channel  CampaignChannel `gorm:"not null" json:"channel" validate:"required,oneof=whatsapp email"`
	Steps    datatypes.JSON  `gorm:"type:json;not null" json:"steps" validate:"required,json"`
	IsActive bool            `gorm:"not null;default:false" json:"isActive"`
}

type ProjectProposal struct {
	Base
	ProspectName    string         `gorm:"not null" json:"prospectName" validate:"required,min=2"`
	ProspectEmail   string         `json:"prospectEmail" validate:"omitempty,email"`
	Company         string         `json:"company" validate:"omitempty"`
	Industry        string         `json:"industry" validate:"omitempty"`
	Budget          string         `json:"budget" validate:"omitempty"`
	Goals           string         `gorm:"type:text" json:"goals" validate:"omitempty"`
	Strategy        datatypes.JSON `gorm:"type:json" json:"strategy" validate:"omitempty,json"`
	Differentiators datatypes.JSON `gorm:"type:json" json:"differentiators" validate:"omitempty,json"`
	Timeline        datatypes.JSON `gorm:"type:json" json:"timeline" validate:"omitempty,json"`
	Campaigns       datatypes.JSON `gorm:"type:json" json:"campaigns" validate:"omitempty,json"`
	// ContentHTML is the editable rendered proposal body; CustomHTML, when
	// set, overrides the generated rendering on export and share views.
	ContentHTML string              `gorm:"type:longtext" json:"contentHtml"`
	CustomHTML  string              `gorm:"type:longtext" json:"customHtml"`
	Status      ProposalStatus      `gorm:"not null;default:'draft'" json:"status"`
	ExportKey   string              `json:"exportKey" validate:"omitempty"`
	ShareLinks  []ProposalShareLink `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"shareLinks,omitempty"`
}

type ProposalShareLink struct {
	Base
	ProposalID string           `gorm:"type:char(36);not null;index" json:"proposalId" validate:"required,uuid"`
	Proposal   *ProjectProposal `json:"proposal,omitempty"`
	Token      string           `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt  time.Time        `gorm:"not null" json:"expiresAt"`
	ViewCount  int              `gorm:"not null;default:0" json:"viewCount"`
}

type ContentItem struct {
	Base
	ClientID  string         `gorm:"type:char(36);not null;index" json:"clientId" validate:"required,uuid"`
	Client    *User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Topic     string         `gorm:"not null" json:"topic" validate:"required"`
	Type      ContentType    `gorm:"not null" json:"type" validate:"required,oneof=text image video carousel"`
	Platforms datatypes.JSON `gorm:"type:json;not null" json:"platforms" validate:"required,json"`
	Tone      string         `json:"tone" validate:"omitempty"`
	Audience  string         `json:"audience" validate:"omitempty"`
	// Variants maps platform name to the generated variant
	// {content, hashtags, optimization_score}.
	Variants datatypes.JSON `gorm:"type:json" json:"variants" validate:"omitempty,json"`
	AssetID  string         `gorm:"type:char(36)" json:"assetId" validate:"omitempty,uuid"`
	Asset    *File          `json:"asset,omitempty"`
	Status   ContentStatus  `gorm:"not null;default:'draft'" json:"status"`
}

type File struct {
	Base
	Path      string `gorm:"not null" json:"path" validate:"required"`
	UserID    string `gorm:"type:char(36);default:NULL" json:"userId" validate:"omitempty,uuid"`
	User      *User  `json:"user,omitempty"`
	Name      string `gorm:"not null" json:"name" validate:"required"`
	Size      int64  `gorm:"not null" json:"size" validate:"required,min=1"`
	Type      string `gorm:"not null" json:"type" validate:"required"`
	SignedURL string `gorm:"-" json:"signedUrl,omitempty"` // Virtual field
}

func (f *File) AfterFind(tx *gorm.DB) error {
	registryMu.RLock()
	generator := urlGenerator
	registryMu.RUnlock()

	if generator != nil {
		url, err := generator.GetSignedURL(tx.Statement.Context, f.Path, time.Hour)
		if err != nil {
			return err
		}
		f.SignedURL = url
	}
	return nil
}

type Permission struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name" validate:"required"`
	Resource    string `gorm:"not null" json:"resource" validate:"required"`
	Action      string `gorm:"not null" json:"action" validate:"required"`
	Description string `json:"description" validate:"omitempty"`
}

type RolePermission struct {
	Base
	Role         UserRole    `gorm:"not null;uniqueIndex:idx_role_permission" json:"role" validate:"required"`
	PermissionID string      `gorm:"type:char(36);not null;uniqueIndex:idx_role_permission" json:"permissionId" validate:"required,uuid"`
	Permission   *Permission `json:"permission,omitempty"`
}

// UserPermission is an explicit per-user grant or revocation that overrides
// the role default.
type UserPermission struct {
	Base
	UserID       string      `gorm:"type:char(36);not null;uniqueIndex:idx_user_permission" json:"userId" validate:"required,uuid"`
	User         *User       `json:"user,omitempty"`
	PermissionID string      `gorm:"type:char(36);not null;uniqueIndex:idx_user_permission" json:"permissionId" validate:"required,uuid"`
	Permission   *Permission `json:"permission,omitempty"`
	Granted      bool        `gorm:"not null;default:true" json:"granted"`
}

// AccessControlAudit rows are append-only; see hooks.go.
type AccessControlAudit struct {
	Base
	ActorID      string      `gorm:"type:char(36);not null;index" json:"actorId" validate:"required,uuid"`
	Actor        *User       `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	TargetUserID string      `gorm:"type:char(36);index" json:"targetUserId" validate:"omitempty,uuid"`
	TargetUser   *User       `gorm:"foreignKey:TargetUserID" json:"targetUser,omitempty"`
	PermissionID string      `gorm:"type:char(36)" json:"permissionId" validate:"omitempty,uuid"`
	Action       AuditAction `gorm:"not null" json:"action" validate:"required"`
	Detail       string      `json:"detail" validate:"omitempty"`
}
