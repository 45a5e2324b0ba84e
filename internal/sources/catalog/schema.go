package catalog

// RawProduct is a partially-populated, loosely-typed product record as
// delivered by an upstream catalog origin. Field names drift between
// origins ("Color Group" vs "colour group", "Photo Hover" vs "Images"),
// values may be missing, and image payloads arrive either as a sequence
// or as one newline-delimited string.
//
// RawProduct is only ever read through the Normalizer; nothing else in
// the engine touches it.
type RawProduct map[string]any

// ProfilesConfig is the root structure of origins.yaml: one alias
// profile per upstream origin.
type ProfilesConfig []Profile

// Profile declares per-origin field-name aliases, keyed by canonical
// attribute name.
type Profile struct {
	Origin string `yaml:"origin"`

	// Aliases maps a canonical attribute ("name", "material",
	// "colorGroup", "size", "usage", "price", "currency", "productId")
	// to the upstream field names that carry it.
	Aliases map[string][]string `yaml:"aliases"`
}
