package gov

import (
	"encoding/json"
	"fmt"
)

// Permissions are a closed enumeration; membership payloads naming an unknown
// role fail validation instead of storing free-form strings.
type Permission string

const (
	PermVote     Permission = "vote"
	PermPropose  Permission = "propose"
	PermReview   Permission = "review"
	PermExecute  Permission = "execute"
	PermModerate Permission = "moderate"
)

const (
	RoleFounder = "founder"
	RoleCouncil = "council"
	RoleCore    = "core"
	RoleMember  = "member"
)

var rolePermissions = map[string][]Permission{
	RoleFounder: {PermVote, PermPropose, PermReview, PermExecute, PermModerate},
	RoleCouncil: {PermVote, PermPropose, PermReview, PermExecute, PermModerate},
	RoleCore:    {PermVote, PermPropose, PermReview},
	RoleMember:  {PermVote, PermPropose},
}

// KnownRole reports whether name is part of the role catalog.
func KnownRole(name string) bool {
	_, ok := rolePermissions[name]
	return ok
}

// RoleHasPermission checks one role against the catalog.
func RoleHasPermission(role string, p Permission) bool {
	for _, perm := range rolePermissions[role] {
		if perm == p {
			return true
		}
	}
	return false
}

// HasPermission checks a member's role set against the catalog.
func HasPermission(roles []string, p Permission) bool {
	for _, r := range roles {
		if RoleHasPermission(r, p) {
			return true
		}
	}
	return false
}

func encodeRoles(roles []string) string {
	raw, _ := json.Marshal(roles)
	return string(raw)
}

func decodeRoles(raw string) []string {
	if raw == "" {
		return nil
	}
	var roles []string
	if err := json.Unmarshal([]byte(raw), &roles); err != nil {
		return nil
	}
	return roles
}

func validateRole(name string) error {
	if !KnownRole(name) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidPayload, name)
	}
	return nil
}
