// Package models defines the record shapes that flow through the migration pipeline.
//
// # Source shapes
//
// Source records mirror the relational store's column layout (snake_case
// keys) plus the auth provider's user entries and blob-storage descriptors.
// Fields that arrive in an unpredictable representation (structured JSON or
// a JSON-encoded string) are held as [json.RawMessage] and resolved by the
// normalization functions in flex.go.
//
// # Destination shapes
//
// Destination records carry the document CMS layout (camelCase keys).
// Identifiers are preserved verbatim from the source as strings; the
// pipeline never regenerates them, which is what keeps cross-collection
// references valid without a remapping table.
//
// # Normalization
//
// Each loosely-typed field has exactly one normalization function:
//   - [NormalizeDestinations] : trips' location arrays
//   - [NormalizeTravelers] : trips' traveler reference lists
//   - [NormalizeNotifications] : preferences' notification settings
//   - [NormalizeDate] : every timestamp field
//
// Enum differences between the stores are resolved by [NormalizeRole],
// [NormalizeTier], and [NormalizeStatus], each with a documented default.
package models
