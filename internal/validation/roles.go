package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// DefaultRole is assigned when a membership or invitation names no role.
const DefaultRole = "member"

// RoleList is a role set sent either as a single string or as a list.
// The provider stores several roles as one comma separated string, so a
// single string is split on commas.
//
//	"role": "admin"             -> ["admin"]
//	"role": "admin,member"      -> ["admin", "member"]
//	"role": ["admin", "member"] -> ["admin", "member"]
//
// Declare it with `validate:"required,min=1,dive,required"` so a bound list
// is never empty and never holds a blank role.
type RoleList []string

var errRoleShape = errors.New("role must be a string or a list of strings")

func (r *RoleList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = splitRoles(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errRoleShape
	}

	*r = many
	return nil
}

func splitRoles(s string) RoleList {
	roles := RoleList{}
	for _, role := range strings.Split(s, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

// OrDefault returns the list, or ["member"] when it is empty.
func (r RoleList) OrDefault() RoleList {
	if len(r) == 0 {
		return RoleList{DefaultRole}
	}
	return r
}
