package enums

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PermissionSet is a permission→bool mapping over the closed vocabulary.
// Missing keys evaluate false; unknown keys are rejected when decoding.
type PermissionSet map[Permission]bool

// DefaultPermissions returns a fresh set with every permission denied.
func DefaultPermissions() PermissionSet {
	set := make(PermissionSet, len(validPermissions))
	for _, perm := range validPermissions {
		set[perm] = false
	}
	return set
}

// Has reports whether the named permission is granted. Unset keys fail closed.
func (s PermissionSet) Has(perm Permission) bool {
	if s == nil {
		return false
	}
	return s[perm]
}

// HasAll reports whether every listed permission is granted.
func (s PermissionSet) HasAll(perms ...Permission) bool {
	for _, perm := range perms {
		if !s.Has(perm) {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes the set and rejects keys outside the vocabulary.
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := make(PermissionSet, len(raw))
	for key, granted := range raw {
		perm, err := ParsePermission(key)
		if err != nil {
			return err
		}
		set[perm] = granted
	}
	*s = set
	return nil
}

// Value implements driver.Valuer, persisting the set as JSON.
func (s PermissionSet) Value() (driver.Value, error) {
	if s == nil {
		s = DefaultPermissions()
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *PermissionSet) Scan(src any) error {
	if src == nil {
		*s = DefaultPermissions()
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported permission set source %T", src)
	}
}
