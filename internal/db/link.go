package db

import "time"

// Link types understood by the preview navigation script.
const (
	LinkTypeButton = "button"
	LinkTypeLink   = "link"
	LinkTypeImage  = "image"
	LinkTypeCustom = "custom"
)

// Link is a directed navigation edge from a clickable element on one page to another page.
type Link struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	FromPageID    string    `gorm:"size:36;not null;index" json:"fromPageId"`
	FromElementID *string   `json:"fromElementId"`
	TriggerText   *string   `json:"triggerText"`
	ToPageID      string    `gorm:"size:36;not null;index" json:"toPageId"`
	LinkType      string    `gorm:"size:32;not null;default:button" json:"linkType"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
}

// TableName pins the table name.
func (Link) TableName() string {
	return "links"
}
