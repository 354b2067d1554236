package attendance

import "context"

type AttendanceService interface {
	// Tracker
	ListSupervisors(ctx context.Context) ([]string, error)
	GetTeamList(ctx context.Context, supervisor, date string) ([]TeamListItem, error)
	GetRecords(ctx context.Context, date, supervisor string) ([]RecordView, error)
	SaveRecord(ctx context.Context, req SaveRecordRequest) (SaveResult, error)
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (SaveResult, error)
	DailySummary(ctx context.Context, date, supervisor string) (DailySummary, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
	AddTeamMember(ctx context.Context, req TeamMemberRequest) error
	RemoveTeamMember(ctx context.Context, supervisor, agent string) error

	// Dashboard
	Clusters(ctx context.Context) ([]string, error)
	Raw(ctx context.Context, f Filter) ([]RawEntry, error)
	Summary(ctx context.Context, f Filter) (Summary, error)
	Calendars(ctx context.Context, f Filter) (Calendars, error)
}
