package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/dentelia/dentelia_backend/internal/model"
)

// appendHistoryEntry adds one entry to the end of the medical history
// log. The log is an audit trail: entries carry the commit-time
// timestamp and are never edited or removed afterwards.
func appendHistoryEntry(rec *model.PatientRecord, note string, role model.Role, now time.Time) error {
	if role != model.RoleDoctor {
		return fmt.Errorf("%w: only clinicians may write medical history", ErrForbidden)
	}
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("%w: note is required", ErrValidation)
	}

	rec.MedicalHistory = append(rec.MedicalHistory, model.HistoryEntry{
		Timestamp:  now.UTC(),
		AuthorRole: model.RoleDoctor,
		Note:       note,
	})
	return nil
}
