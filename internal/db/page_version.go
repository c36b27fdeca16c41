package db

import "time"

// PageVersion is an immutable pre-image of a page's content.
// (page_id, version_number) is unique; rows are never updated or deleted.
type PageVersion struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	PageID            string    `gorm:"size:36;not null;uniqueIndex:idx_page_versions_page_number,priority:1" json:"pageId"`
	VersionNumber     int       `gorm:"not null;uniqueIndex:idx_page_versions_page_number,priority:2" json:"versionNumber"`
	Name              string    `gorm:"not null" json:"name"`
	HTML              string    `gorm:"column:html;type:text;not null" json:"html"`
	CSS               string    `gorm:"column:css;type:text;not null" json:"css"`
	JS                string    `gorm:"column:js;type:text;not null" json:"js"`
	State             PageState `gorm:"size:32;not null" json:"state"`
	ChangeDescription *string   `gorm:"type:text" json:"changeDescription"`
	CreatedBy         *string   `gorm:"size:36" json:"createdBy"`
	CreatedAt         time.Time `gorm:"not null" json:"createdAt"`
}

// TableName 指定自定义表名。
func (PageVersion) TableName() string {
	return "page_versions"
}
