package models

import (
	"encoding/json"
	"strings"
	"time"
)

// CodeLength is the number of characters in a normalized group code.
const CodeLength = 8

// GroupCode is an invitation code a primary user hands to a member.
type GroupCode struct {
	ID string `json:"id"`

	// Code is 8 uppercase alphanumeric characters.
	Code string `json:"code"`

	// OwnerID is the primary user the code grants access to.
	OwnerID string `json:"owner_id"`

	// ExpiresAt is optional; a nil value never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Used flips to true once, when a member joins with the code.
	Used bool `json:"is_used"`

	// UsedBy is the member that consumed the code.
	UsedBy string `json:"used_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalJSON also reads the legacy "main_user_id" and
// "used_by_user_id" fields when the current names are absent.
func (c *GroupCode) UnmarshalJSON(b []byte) error {
	type plain GroupCode
	var aux struct {
		plain
		LegacyOwnerID string  `json:"main_user_id"`
		LegacyUsedBy  *string `json:"used_by_user_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = GroupCode(aux.plain)
	if c.OwnerID == "" {
		c.OwnerID = aux.LegacyOwnerID
	}
	if c.UsedBy == "" && aux.LegacyUsedBy != nil {
		c.UsedBy = *aux.LegacyUsedBy
	}
	return nil
}

// Expired reports whether the code has an expiry at or before now.
func (c *GroupCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Usable reports whether a member may still join with the code.
func (c *GroupCode) Usable(now time.Time) bool {
	return !c.Used && !c.Expired(now)
}

// NormalizeCode upper-cases raw, trims it and drops every character outside
// [A-Z0-9]. "ab-cd12#34" and "AB CD1234" both normalize to "ABCD1234".
func NormalizeCode(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameCode reports whether a and b normalize to the same code.
func SameCode(a, b string) bool {
	return NormalizeCode(a) == NormalizeCode(b)
}
