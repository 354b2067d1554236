package schedule

import (
	"context"
	"io"
)

type ScheduleService interface {
	GetSchedule(ctx context.Context) (View, error)
	GetEmployees(ctx context.Context) ([]RosterEmployee, error)
	GetShifts(ctx context.Context, day *int) ([]ShiftResponse, error)
	GetMetadata(ctx context.Context) (Metadata, error)

	AddShift(ctx context.Context, req AddShiftRequest) (ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	BatchUpdateShifts(ctx context.Context, req BatchUpdateRequest) (BatchUpdateResponse, error)
	DeleteShift(ctx context.Context, id string) error

	BulkUpload(ctx context.Context, file io.Reader, filename string) (UploadResult, error)
	Template() []byte
	ExportRoster(ctx context.Context, w io.Writer) error
	ListEntries(ctx context.Context, filter EntryFilter) (ListEntryResponse, error)
}
