package db

import "time"

// Component is a reusable fragment lifted from a source page. The catalog entry keeps
// its own copy of the markup, so it survives edits to the source page.
type Component struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	SourcePageID string    `gorm:"size:36;not null;index" json:"sourcePageId"`
	Selector     string    `gorm:"not null" json:"selector"`
	HTML         string    `gorm:"column:html;type:text;not null" json:"html"`
	CSS          string    `gorm:"column:css;type:text;not null" json:"css"`
	Description  *string   `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

// TableName 指定自定义表名。
func (Component) TableName() string {
	return "components"
}

// PageComponent places a catalog component on a page.
type PageComponent struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	PageID         string    `gorm:"size:36;not null;index" json:"pageId"`
	ComponentID    string    `gorm:"size:36;not null;index" json:"componentId"`
	Position       int       `gorm:"not null;default:0" json:"position"`
	TargetSelector *string   `json:"targetSelector"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
}

// TableName 指定自定义表名。
func (PageComponent) TableName() string {
	return "page_components"
}
