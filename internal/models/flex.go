package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// unwrapFlex resolves the string-or-structured union: if raw holds a JSON
// string, the string's contents are decoded as JSON; otherwise raw passes
// through untouched. Exactly one unwrapping level is applied, matching how
// the source store double-encodes these columns.
func unwrapFlex(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if trimmed[0] != '"' {
		return json.RawMessage(trimmed), nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("malformed string wrapper: %w", err)
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil, nil
	}
	if !json.Valid([]byte(inner)) {
		return nil, fmt.Errorf("string wrapper does not contain valid JSON: %q", inner)
	}
	return json.RawMessage(inner), nil
}

// NormalizeDestinations resolves a trip's destinations field to a
// structured array regardless of whether it arrived as an array or as a
// JSON-encoded string. A missing field yields an empty array.
func NormalizeDestinations(raw json.RawMessage) ([]map[string]any, error) {
	inner, err := unwrapFlex(raw)
	if err != nil {
		return nil, fmt.Errorf("destinations: %w", err)
	}
	if inner == nil {
		return []map[string]any{}, nil
	}

	var dests []map[string]any
	if err := json.Unmarshal(inner, &dests); err != nil {
		return nil, fmt.Errorf("destinations: expected array of location objects: %w", err)
	}
	if dests == nil {
		dests = []map[string]any{}
	}
	return dests, nil
}

// NormalizeTravelers resolves a trip's travelers field to a flat list of
// identity references. Entries that are raw identifiers pass through;
// entries that are objects are reduced to their id field.
func NormalizeTravelers(raw json.RawMessage) ([]string, error) {
	inner, err := unwrapFlex(raw)
	if err != nil {
		return nil, fmt.Errorf("travelers: %w", err)
	}
	if inner == nil {
		return []string{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(inner, &entries); err != nil {
		return nil, fmt.Errorf("travelers: expected array: %w", err)
	}

	refs := make([]string, 0, len(entries))
	for i, entry := range entries {
		var id string
		if err := json.Unmarshal(entry, &id); err == nil {
			if id != "" {
				refs = append(refs, id)
			}
			continue
		}

		var obj struct {
			ID     string `json:"id"`
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return nil, fmt.Errorf("travelers: entry %d is neither an id nor an object: %w", i, err)
		}
		switch {
		case obj.ID != "":
			refs = append(refs, obj.ID)
		case obj.UserID != "":
			refs = append(refs, obj.UserID)
		}
	}
	return refs, nil
}

// NormalizeNotifications resolves a preference record's notification
// settings to an object. Missing or null settings yield an empty object.
func NormalizeNotifications(raw json.RawMessage) (map[string]any, error) {
	inner, err := unwrapFlex(raw)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	if inner == nil {
		return map[string]any{}, nil
	}

	var settings map[string]any
	if err := json.Unmarshal(inner, &settings); err != nil {
		return nil, fmt.Errorf("notifications: expected settings object: %w", err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

// dateLayouts are the timestamp representations the source store emits.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate converts a source timestamp to RFC 3339 UTC. A missing or
// unparseable value falls back to the supplied default, which the transform
// stage fixes once per run so output stays deterministic within a run.
func NormalizeDate(value string, fallback time.Time) string {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}
	return fallback.UTC().Format(time.RFC3339)
}

// NormalizeRole maps a source role value onto the destination enum
// (client | organizer | admin). Unknown or empty roles default to client,
// the least-privileged value.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "organizer", "agent", "planner":
		return "organizer"
	case "admin", "administrator", "superadmin":
		return "admin"
	default:
		return "client"
	}
}

// NormalizeTier maps a source tier value onto the destination enum
// (standard | premium | elite). Unknown or empty tiers default to standard,
// the lowest tier.
func NormalizeTier(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "silver", "gold", "premium":
		return "premium"
	case "platinum", "elite", "vip":
		return "elite"
	default:
		return "standard"
	}
}

// NormalizeStatus maps a source status value onto the destination enum
// (active | inactive | archived). Unknown or empty statuses default to active.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "inactive", "disabled", "suspended":
		return "inactive"
	case "archived", "deleted":
		return "archived"
	default:
		return "active"
	}
}
