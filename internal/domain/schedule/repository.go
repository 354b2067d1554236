package schedule

import (
	"context"
	"time"
)

type ScheduleRepository interface {
	// ListShifts returns live shifts, only those on day when it is set.
	ListShifts(ctx context.Context, day *int) ([]Shift, error)
	GetShift(ctx context.Context, id string) (Shift, error)
	CreateShift(ctx context.Context, s Shift) (Shift, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) error
	SoftDeleteShift(ctx context.Context, id string) error
	LastChange(ctx context.Context) (time.Time, error)

	// UpsertEntries writes dated entries, replacing any existing entry for the same employee and date.
	UpsertEntries(ctx context.Context, entries []Entry) (int64, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, int64, error)
}
