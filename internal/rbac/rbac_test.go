package rbac

import "testing"

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleMaker, ActionSubmit, true},
		{RoleMaker, ActionApprove, false},
		{RoleMaker, ActionReject, false},
		{RoleMaker, ActionPublish, true},
		{RoleMaker, ActionCorrect, false},
		{RoleChecker, ActionApprove, true},
		{RoleChecker, ActionReject, true},
		{RoleChecker, ActionExpire, true},
		{RoleChecker, ActionManageUser, false},
		{RoleChecker, ActionComponent, true},
		{RoleAdmin, ActionApprove, true},
		{RoleAdmin, ActionCorrect, true},
		{RoleAdmin, ActionManageUser, true},
		{Role("viewer"), ActionEdit, false},
		{RoleAdmin, Action("unknown"), false},
	}

	for _, tt := range tests {
		if got := Can(tt.role, tt.action); got != tt.want {
			t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestParseAndNormalize(t *testing.T) {
	if role, ok := Parse(" Checker "); !ok || role != RoleChecker {
		t.Fatalf("expected checker, got %q (ok=%v)", role, ok)
	}
	if _, ok := Parse("owner"); ok {
		t.Fatal("expected unknown role to be rejected")
	}
	if got := Normalize("owner"); got != RoleMaker {
		t.Fatalf("expected unknown role to normalize to maker, got %q", got)
	}
	if got := Normalize("admin"); got != RoleAdmin {
		t.Fatalf("expected admin, got %q", got)
	}
}
