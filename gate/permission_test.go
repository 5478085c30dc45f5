package gate_test

import (
	"testing"

	"github.com/diewo77/go-quotes/gate"
)

func TestPermission_NewPermission(t *testing.T) {
	perm := gate.NewPermission("quote", gate.ActionEdit)
	if perm != "quote:edit" {
		t.Errorf("expected 'quote:edit', got '%s'", perm)
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.Permission("invoice:view").Parse()
	if res != "invoice" {
		t.Errorf("expected resource 'invoice', got '%s'", res)
	}
	if act != gate.ActionView {
		t.Errorf("expected action 'view', got '%s'", act)
	}

	res, act = gate.Permission("invalid").Parse()
	if res != "" || act != "" {
		t.Errorf("expected empty strings, got '%s' and '%s'", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"quote:edit", "quote:edit", true},
		{"quote:edit", "quote:view", false},
		{"quote:edit", "invoice:edit", false},
		{gate.PermissionSuperAdmin, "quote:edit", true},
		{gate.PermissionSuperAdmin, "invoice:delete", true},
		{"quote:*", "quote:edit", true},
		{"quote:*", "invoice:edit", false},
		{"*:view", "invoice:view", true},
		{"*:view", "invoice:edit", false},
		{"broken", "quote:edit", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.granted)+"->"+string(tt.requested), func(t *testing.T) {
			if got := tt.granted.Matches(tt.requested); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
