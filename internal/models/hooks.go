package models

import (
	"errors"
	"time"

	"panveliq/internal/events"

	"gorm.io/gorm"
)

func (c *Campaign) AfterCreate(tx *gorm.DB) error {
	events.Emit("campaign.created", c)
	return nil
}

func (c *Campaign) AfterUpdate(tx *gorm.DB) error {
	events.Emit("campaign.updated", c)
	return nil
}

func (e *CampaignEvent) BeforeCreate(tx *gorm.DB) error {
	if err := e.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return nil
}

// The audit trail is append-only.
func (a *AccessControlAudit) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("access control audit entries are immutable")
}

func (a *AccessControlAudit) BeforeDelete(tx *gorm.DB) error {
	return errors.New("access control audit entries are immutable")
}
