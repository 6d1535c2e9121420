package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization rows are managed outside the engine; the engine only reads
// membership to resolve volunteer work reviewer scope.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrgMember struct {
	OrgID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"org_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"size:30;default:member" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// HelpPost is the request a helper completes. Only its author may review a
// help completion claim submitted against it.
type HelpPost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Emergency bool      `gorm:"default:false" json:"emergency"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *HelpPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
