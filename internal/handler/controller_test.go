package handler

import (
	"net/http"
	"testing"

	"github.com/deppfellow/guardian/internal/procedure"
	"github.com/deppfellow/guardian/internal/provider"
	"github.com/deppfellow/guardian/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewControllers(t *testing.T) {
	procs := procedure.NewProcedures(provider.NewClient("http://provider.test", 0), &service.Services{
		Auth: service.NewAuthService(nil),
	})

	controllers := NewControllers(procs)

	require.Len(t, controllers, 7)

	tests := []struct {
		controller string
		action     string
		method     string
		path       string
	}{
		{"auth", "session", http.MethodGet, "/session"},
		{"organization", "deleteOrganization", http.MethodDelete, "/delete-org"},
		{"member", "updateRole", http.MethodPut, "/organization/update-role"},
		{"invitation", "cancel", http.MethodDelete, "/cancel"},
		{"team", "listMembers", http.MethodGet, "/members"},
		{"admin", "removeUser", http.MethodDelete, "/remove-user"},
		{"billing", "createBillingPortal", http.MethodPost, "/portal"},
	}

	for _, tc := range tests {
		t.Run(tc.controller+"."+tc.action, func(t *testing.T) {
			controller, ok := controllers[tc.controller]
			require.True(t, ok)

			var found *Action
			for i := range controller.Actions {
				if controller.Actions[i].Name == tc.action {
					found = &controller.Actions[i]
				}
			}
			require.NotNil(t, found)
			assert.Equal(t, tc.method, found.Method)
			assert.Equal(t, tc.path, found.Path)
			assert.NotEmpty(t, found.ProcedureNames())
		})
	}

	for _, action := range controllers["admin"].Actions {
		assert.Equal(t, []string{"RequireSession", "Admin"}, action.ProcedureNames(), action.Name)
	}
}
