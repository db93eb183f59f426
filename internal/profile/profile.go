// Package profile merges AI-inferred patches into the persisted per-user
// personalization record.
package profile

// Profile is the canonical persisted profile blob. AvoidTopics is stored
// comma-joined to match the profile_json contract.
type Profile struct {
	SchemaVersion int    `json:"schemaVersion"`
	DisplayName   string `json:"displayName"`
	Tone          string `json:"tone"`
	Proactivity   string `json:"proactivity"`
	AvoidTopics   string `json:"avoidTopics"`
	Notes         string `json:"notes"`
	LastUpdatedBy string `json:"lastUpdatedBy"`
	LastUpdatedAt string `json:"lastUpdatedAt"`
}

// State is the persisted companion state blob. MemoryNotes is capped at
// maxMemoryNotes entries, oldest evicted first.
// LastProfileMemorySessionID is the idempotency marker: exactly one value,
// overwritten on every successful non-duplicate merge.
type State struct {
	MemoryNotes                []string `json:"memory_notes"`
	LastProfileMemorySessionID string   `json:"last_profile_memory_session_id"`
}

const (
	schemaVersion      = 1
	maxMemoryNotes     = 50
	maxDisplayNameLen  = 80
	maxNotesAppendLen  = 220
	defaultTone        = "balanced"
	defaultProactivity = "medium"
)

// WithDefaults fills any missing canonical field. Persisted blobs written
// by older clients may lack fields; merges always operate on the defaulted
// form.
func WithDefaults(p Profile) Profile {
	if p.SchemaVersion == 0 {
		p.SchemaVersion = schemaVersion
	}
	if p.Tone == "" {
		p.Tone = defaultTone
	}
	if p.Proactivity == "" {
		p.Proactivity = defaultProactivity
	}
	if p.LastUpdatedBy == "" {
		p.LastUpdatedBy = "user"
	}
	return p
}
