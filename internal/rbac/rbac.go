// Package rbac holds the closed set of roles and the capability table for page actions.
package rbac

import "strings"

type Role string
type Action string

const (
	RoleMaker   Role = "maker"
	RoleChecker Role = "checker"
	RoleAdmin   Role = "admin"
)

const (
	ActionCreate     Action = "create"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionSubmit     Action = "submit"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionPublish    Action = "publish"
	ActionMoveDraft  Action = "move_to_draft"
	ActionExpire     Action = "expire"
	ActionCorrect    Action = "correct_state"
	ActionRollback   Action = "rollback"
	ActionManageLink Action = "manage_links"
	ActionComponent  Action = "manage_components"
	ActionExport     Action = "export"
	ActionManageUser Action = "manage_users"
)

var (
	everyone     = []Role{RoleMaker, RoleChecker, RoleAdmin}
	reviewers    = []Role{RoleChecker, RoleAdmin}
	adminsOnly   = []Role{RoleAdmin}
	capabilities = map[Action][]Role{
		ActionCreate:     everyone,
		ActionEdit:       everyone,
		ActionDelete:     everyone,
		ActionSubmit:     everyone,
		ActionApprove:    reviewers,
		ActionReject:     reviewers,
		ActionPublish:    everyone,
		ActionMoveDraft:  everyone,
		ActionExpire:     everyone,
		ActionCorrect:    adminsOnly,
		ActionRollback:   everyone,
		ActionManageLink: everyone,
		ActionComponent:  everyone,
		ActionExport:     everyone,
		ActionManageUser: adminsOnly,
	}
)

// Can reports whether role may perform action. Unknown roles and actions are denied.
func Can(role Role, action Action) bool {
	for _, allowed := range capabilities[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleMaker, RoleChecker, RoleAdmin:
		return true
	default:
		return false
	}
}

// Parse converts a stored role string into a Role. ok is false for unknown values.
func Parse(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// Normalize maps unknown roles to the least privileged one.
func Normalize(raw string) Role {
	if role, ok := Parse(raw); ok {
		return role
	}
	return RoleMaker
}
