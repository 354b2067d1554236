package workflow

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProcessStatus string

const (
	ProcessDraft    ProcessStatus = "draft"
	ProcessActive   ProcessStatus = "active"
	ProcessPaused   ProcessStatus = "paused"
	ProcessArchived ProcessStatus = "archived"
)

var ProcessStatuses = []string{string(ProcessDraft), string(ProcessActive), string(ProcessPaused), string(ProcessArchived)}

type Process struct {
	ID                string
	Name              string
	Code              string
	Description       *string
	Status            ProcessStatus
	Version           int
	TargetSLAMinutes  *int
	WarningSLAMinutes *int
	DepartmentID      string
	OwnerID           *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined
	DepartmentName string
	OwnerName      *string
	WorkflowCount  int
}

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var Statuses = []string{string(StatusDraft), string(StatusActive), string(StatusInactive)}

type Workflow struct {
	ID          string
	Name        string
	Code        string
	Description *string
	Status      Status
	Version     int
	ProcessID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ProcessName   string
	StageCount    int
	InstanceCount int
	Stages        []Stage
}

type AssignmentRule string

const (
	AssignManual       AssignmentRule = "manual"
	AssignRoundRobin   AssignmentRule = "round_robin"
	AssignLeastLoaded  AssignmentRule = "least_loaded"
	AssignSpecificUser AssignmentRule = "specific_user"
	AssignRoleBased    AssignmentRule = "role_based"
)

var AssignmentRules = []string{
	string(AssignManual), string(AssignRoundRobin), string(AssignLeastLoaded),
	string(AssignSpecificUser), string(AssignRoleBased),
}

type Stage struct {
	ID             string
	WorkflowID     string
	Name           string
	Code           string
	Description    *string
	Order          int
	IsRequired     bool
	AssignmentRule AssignmentRule
	AssignedRole   *string
	AssignedUserID *string
	SLAMinutes     *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InstanceStatus string

const (
	InstancePending    InstanceStatus = "pending"
	InstanceInProgress InstanceStatus = "in_progress"
	InstanceCompleted  InstanceStatus = "completed"
	InstanceCancelled  InstanceStatus = "cancelled"
	InstanceFailed     InstanceStatus = "failed"
)

var InstanceStatuses = []string{
	string(InstancePending), string(InstanceInProgress), string(InstanceCompleted),
	string(InstanceCancelled), string(InstanceFailed),
}

// Closed reports whether the instance can no longer change.
func (s InstanceStatus) Closed() bool {
	return s == InstanceCompleted || s == InstanceCancelled || s == InstanceFailed
}

type Instance struct {
	ID              string
	WorkflowID      string
	ReferenceNumber string
	Title           string
	Status          InstanceStatus
	Priority        int
	Data            map[string]any
	CurrentStageID  *string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	DueAt           *time.Time
	SLABreached     bool
	CreatedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	WorkflowName     string
	CurrentStageName *string
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskSkipped    TaskStatus = "skipped"
	TaskFailed     TaskStatus = "failed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Done reports whether the task no longer blocks the instance.
func (s TaskStatus) Done() bool {
	return s == TaskCompleted || s == TaskSkipped
}

type Task struct {
	ID           string
	InstanceID   string
	StageID      string
	Status       TaskStatus
	AssignedToID *string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	DueAt        *time.Time
	SLABreached  bool
	Data         map[string]any
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined from stage, instance and assignee
	StageName       string
	StageCode       string
	StageOrder      int
	IsRequired      bool
	ReferenceNumber string
	InstanceTitle   string
	Priority        int
	AssigneeName    *string
}

// NewReferenceNumber returns WF-<UTC timestamp>-<6 random hex chars>.
func NewReferenceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("WF-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

// SortStages orders stages by their configured order.
func SortStages(stages []Stage) {
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })
}

// TotalSLA sums the SLA minutes of all stages. Stages without an SLA count as zero.
func TotalSLA(stages []Stage) int {
	total := 0
	for _, s := range stages {
		if s.SLAMinutes != nil {
			total += *s.SLAMinutes
		}
	}
	return total
}

// DueAt returns start + minutes, or nil when no SLA is set.
func DueAt(start time.Time, minutes *int) *time.Time {
	if minutes == nil || *minutes <= 0 {
		return nil
	}
	t := start.Add(time.Duration(*minutes) * time.Minute)
	return &t
}

// NextPending returns the first pending task ordered after the given stage order.
func NextPending(tasks []Task, afterOrder int) (Task, bool) {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StageOrder < sorted[j].StageOrder })
	for _, t := range sorted {
		if t.StageOrder > afterOrder && t.Status == TaskPending {
			return t, true
		}
	}
	return Task{}, false
}

// Breached reports whether a task finished at now is past its due date.
func Breached(due *time.Time, now time.Time) bool {
	return due != nil && now.After(*due)
}
