package workflow

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestNewReferenceNumber(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	ref := NewReferenceNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^WF-20240309140507-[0-9A-F]{6}$`), ref)
	assert.NotEqual(t, ref, NewReferenceNumber(now))
}

func TestTotalSLAAndDueAt(t *testing.T) {
	stages := []Stage{{SLAMinutes: intPtr(30)}, {}, {SLAMinutes: intPtr(90)}}
	assert.Equal(t, 120, TotalSLA(stages))

	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	due := DueAt(start, intPtr(45))
	require.NotNil(t, due)
	assert.Equal(t, start.Add(45*time.Minute), *due)
	assert.Nil(t, DueAt(start, nil))
	assert.Nil(t, DueAt(start, intPtr(0)))
}

func TestNextPending(t *testing.T) {
	tasks := []Task{
		{ID: "c", StageOrder: 3, Status: TaskPending},
		{ID: "a", StageOrder: 1, Status: TaskCompleted},
		{ID: "b", StageOrder: 2, Status: TaskSkipped},
		{ID: "d", StageOrder: 4, Status: TaskPending},
	}
	next, ok := NextPending(tasks, 1)
	require.True(t, ok)
	assert.Equal(t, "c", next.ID)

	_, ok = NextPending(tasks, 4)
	assert.False(t, ok)
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, InstanceCompleted.Closed())
	assert.True(t, InstanceFailed.Closed())
	assert.False(t, InstanceInProgress.Closed())
	assert.True(t, TaskSkipped.Done())
	assert.False(t, TaskCancelled.Done())

	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.True(t, Breached(&due, due.Add(time.Second)))
	assert.False(t, Breached(&due, due))
	assert.False(t, Breached(nil, due))
}

func TestStageValidation(t *testing.T) {
	req := CreateWorkflowRequest{
		Name:      "Onboarding",
		Code:      "onboarding",
		ProcessID: "0190a0c2-6b1e-7c3d-8e4f-5a6b7c8d9e0f",
		Stages: []StageRequest{
			{Name: "Intake", Code: "intake"},
			{Name: "Review", Code: "INTAKE", AssignmentRule: "specific_user"},
			{Name: "Pool", Code: "POOL", AssignmentRule: "round_robin"},
		},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "ONBOARDING", req.Code)
	assert.Equal(t, "manual", req.Stages[0].AssignmentRule)
	assert.Contains(t, err.Error(), "stages[1].code")
	assert.Contains(t, err.Error(), "stages[1].assigned_user_id")
	assert.Contains(t, err.Error(), "stages[2].assigned_role")
}
