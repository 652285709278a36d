// Package validation holds the input checks for the schemaless documents the
// API accepts. Entities carry arbitrary attributes; only identity and
// relationship fields are enforced here.
package validation

import (
	"fmt"
	"strings"
	"time"
)

// RequireString checks that the decoded JSON object carries a non-empty
// string at each of the given fields.
func RequireString(obj map[string]any, fields ...string) error {
	var missing []string
	for _, f := range fields {
		s, ok := obj[f].(string)
		if !ok || strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// SafeID rejects identifiers containing ':', which the storage layer
// reserves as its key separator.
func SafeID(id string) error {
	if strings.Contains(id, ":") {
		return fmt.Errorf("id must not contain ':'")
	}
	return nil
}

// RequireKeySafe checks that each of the given fields, when present as a
// string, passes SafeID.
func RequireKeySafe(obj map[string]any, fields ...string) error {
	for _, f := range fields {
		if s, ok := obj[f].(string); ok {
			if err := SafeID(s); err != nil {
				return fmt.Errorf("field %s must not contain ':'", f)
			}
		}
	}
	return nil
}

// ValidateProfile enforces the profile identity field.
func ValidateProfile(obj map[string]any) error {
	if err := RequireString(obj, "id"); err != nil {
		return err
	}
	return RequireKeySafe(obj, "id")
}

// ValidateChat enforces chat identity and ownership, and that pickupTime,
// when present, is an RFC3339 timestamp.
func ValidateChat(obj map[string]any) error {
	if err := RequireString(obj, "id", "userId"); err != nil {
		return err
	}
	if err := RequireKeySafe(obj, "id", "userId"); err != nil {
		return err
	}
	if v, ok := obj["pickupTime"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("pickupTime must be an RFC3339 string")
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("invalid pickupTime: %v", err)
		}
	}
	return nil
}
