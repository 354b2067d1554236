package attendance

import (
	"context"
	"time"
)

// AttendanceRepository stores the roster, the attendance log and its change history.
type AttendanceRepository interface {
	ListTeam(ctx context.Context) ([]TeamMember, error)
	AddTeamMember(ctx context.Context, m TeamMember) error
	RemoveTeamMember(ctx context.Context, supervisor, agent string) error

	ListRecords(ctx context.Context) ([]Record, error)
	// InsertUnique appends rec unless a record with the same key exists; the check and the append are atomic.
	InsertUnique(ctx context.Context, rec Record) (inserted bool, err error)
	// Update overwrites the record with the given key and appends one history entry per changed field.
	// Returns ErrRecordNotFound when no record matches.
	Update(ctx context.Context, key Key, change Change, editor string, at time.Time) ([]HistoryEntry, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
}
