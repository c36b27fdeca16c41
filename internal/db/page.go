package db

import (
	"fmt"
	"strings"
	"time"
)

// PageState is the lifecycle state of a page.
type PageState string

const (
	StateDraft           PageState = "Draft"
	StatePendingApproval PageState = "Pending_Approval"
	StateApproved        PageState = "Approved"
	StateLive            PageState = "Live"
	StateExpired         PageState = "Expired"
	StateRejected        PageState = "Rejected"
)

// AllStates lists every lifecycle state in workflow order.
var AllStates = []PageState{
	StateDraft,
	StatePendingApproval,
	StateApproved,
	StateLive,
	StateExpired,
	StateRejected,
}

// Valid reports whether s is one of the six known states.
func (s PageState) Valid() bool {
	for _, state := range AllStates {
		if s == state {
			return true
		}
	}
	return false
}

// ParseState converts user input into a PageState.
func ParseState(raw string) (PageState, error) {
	state := PageState(strings.TrimSpace(raw))
	if !state.Valid() {
		return "", fmt.Errorf("invalid state %q", raw)
	}
	return state, nil
}

// DefaultPageType is assigned when a content producer does not categorise a page.
const DefaultPageType = "custom"

// Page is the current-state record of a publishable page.
type Page struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	State           PageState  `gorm:"size:32;not null;default:Draft;index" json:"state"`
	HTML            string     `gorm:"column:html;type:text;not null" json:"html"`
	CSS             string     `gorm:"column:css;type:text;not null" json:"css"`
	JS              string     `gorm:"column:js;type:text;not null" json:"js"`
	PageType        string     `gorm:"size:64;not null;default:custom" json:"pageType"`
	Thumbnail       *string    `json:"thumbnail"`
	CreatedAt       time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	SubmittedAt     *time.Time `json:"submittedAt"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	RejectedAt      *time.Time `json:"rejectedAt"`
	PublishAt       *time.Time `json:"publishAt"`
	ExpireAt        *time.Time `json:"expireAt"`
	ApprovedBy      *string    `gorm:"size:36" json:"approvedBy"`
	RejectionReason *string    `gorm:"type:text" json:"rejectionReason"`
}

// TableName pins the table name.
func (Page) TableName() string {
	return "pages"
}
