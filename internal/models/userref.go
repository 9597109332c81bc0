package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefKind distinguishes the two identifier schemes a user may be referenced by.
type RefKind uint8

const (
	RefUnknown RefKind = iota
	RefObjectID
	RefLegacyEmail
)

func (k RefKind) String() string {
	switch k {
	case RefObjectID:
		return "object_id"
	case RefLegacyEmail:
		return "legacy_email"
	default:
		return "unknown"
	}
}

// UserRef identifies a user either by object id or, for records written before
// object ids were introduced, by email address.
type UserRef struct {
	Kind  RefKind
	Value string
}

// ParseUserRef classifies a raw identifier.
func ParseUserRef(raw string) UserRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UserRef{}
	}
	if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
		return UserRef{Kind: RefObjectID, Value: oid.Hex()}
	}
	if strings.Contains(raw, "@") {
		return UserRef{Kind: RefLegacyEmail, Value: strings.ToLower(raw)}
	}
	return UserRef{Kind: RefUnknown, Value: raw}
}

// IsZero reports whether the reference is empty.
func (r UserRef) IsZero() bool { return r.Value == "" }

func (r UserRef) String() string { return r.Value }

// NewObjectID returns a fresh identifier in the same format legacy records use.
func NewObjectID() string {
	return primitive.NewObjectID().Hex()
}

// ContainsUser reports whether refs holds u under any of its aliases.
func ContainsUser(refs []string, u User) bool {
	for _, ref := range refs {
		if u.Matches(ref) {
			return true
		}
	}
	return false
}

// RemoveUser drops every alias of u from refs, preserving the order of the rest.
func RemoveUser(refs []string, u User) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u.Matches(ref) {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// AddUser appends the canonical id of u unless it is already present.
func AddUser(refs []string, u User) []string {
	if ContainsUser(refs, u) {
		return refs
	}
	return append(refs, u.ID)
}

// ContainsRef reports whether refs holds value exactly (emails compared case-insensitively).
func ContainsRef(refs []string, value string) bool {
	for _, ref := range refs {
		if ref == value || (strings.Contains(value, "@") && strings.EqualFold(ref, value)) {
			return true
		}
	}
	return false
}

// RemoveRef drops value from refs.
func RemoveRef(refs []string, value string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == value || (strings.Contains(value, "@") && strings.EqualFold(ref, value)) {
			continue
		}
		out = append(out, ref)
	}
	return out
}
