package model

import "time"

// HistoryEntry is one immutable entry in a patient's medical history
// log. Entries are only ever appended; the log supports no edit or
// delete.
type HistoryEntry struct {
	// Timestamp is the commit time of the entry, immutable.
	Timestamp time.Time `json:"timestamp"`
	// AuthorRole is the role that wrote the entry. Only clinicians
	// may append, so this is always RoleDoctor today.
	AuthorRole Role   `json:"authorRole"`
	Note       string `json:"note"`
}

// Equal reports whether two entries are identical. Used to verify the
// append-only law between record versions.
func (e HistoryEntry) Equal(other HistoryEntry) bool {
	return e.Timestamp.Equal(other.Timestamp) &&
		e.AuthorRole == other.AuthorRole &&
		e.Note == other.Note
}
