package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
)

const (
	JobSLABreachCheck       = "workflow_sla_breach_check"
	JobPurgeRefreshTokens   = "purge_expired_refresh_tokens"
	refreshTokenGracePeriod = 7 * 24 * time.Hour
)

// TokenPurger deletes refresh tokens that expired or were revoked before cutoff.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// WorkflowJobs flags overdue tasks and instances.
type WorkflowJobs struct {
	engine workflow.Engine
}

func NewWorkflowJobs(engine workflow.Engine) *WorkflowJobs {
	return &WorkflowJobs{engine: engine}
}

func (j *WorkflowJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(Job{
		Name:     JobSLABreachCheck,
		Interval: interval,
		Timeout:  interval,
		Fn:       j.CheckSLABreaches,
	})
}

func (j *WorkflowJobs) CheckSLABreaches(ctx context.Context) error {
	report, err := j.engine.CheckSLABreaches(ctx)
	if err != nil {
		return err
	}
	if report.TaskCount > 0 || report.Instances > 0 {
		slog.Info("SLA breaches recorded", "tasks", report.TaskCount, "instances", report.Instances)
	}
	return nil
}

// AuthJobs keeps the refresh_tokens table from growing without bound.
type AuthJobs struct {
	tokens TokenPurger
	now    func() time.Time
}

func NewAuthJobs(tokens TokenPurger) *AuthJobs {
	return &AuthJobs{tokens: tokens, now: time.Now}
}

func (j *AuthJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(Job{
		Name:     JobPurgeRefreshTokens,
		Interval: interval,
		Timeout:  time.Minute,
		Fn:       j.PurgeExpiredRefreshTokens,
	})
}

// PurgeExpiredRefreshTokens keeps a week of dead tokens so reuse of a rotated token is still recognised.
func (j *AuthJobs) PurgeExpiredRefreshTokens(ctx context.Context) error {
	n, err := j.tokens.PurgeExpired(ctx, j.now().Add(-refreshTokenGracePeriod))
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Expired refresh tokens purged", "count", n)
	}
	return nil
}
