package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"elms/internal/platform/logger"
	"elms/internal/platform/querier"
)

const (
	JobBalanceRollover = "balance_rollover"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunFunc func(context.Context) (any, error)

type Recorder interface {
	JobRun(job, status string)
}

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Service runs background jobs one at a time and records each run in job_runs.
type Service struct {
	DB      querier.Querier
	Metrics Recorder

	rollover         RunFunc
	rolloverInterval time.Duration
	queue            chan job
}

type job struct {
	Type string
	Run  RunFunc
}

func New(db querier.Querier, rollover RunFunc, rolloverInterval time.Duration) *Service {
	return &Service{
		DB:               db,
		rollover:         rollover,
		rolloverInterval: rolloverInterval,
		queue:            make(chan job, 16),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.rollover != nil && s.rolloverInterval > 0 {
		go s.schedule(ctx, JobBalanceRollover, s.rolloverInterval, s.rollover)
	}
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		logger.S().Warnw("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// RunRollover runs the balance rollover synchronously.
func (s *Service) RunRollover(ctx context.Context) (any, error) {
	if s.rollover == nil {
		return nil, fmt.Errorf("rollover job not configured")
	}
	return s.RunNow(ctx, JobBalanceRollover, s.rollover)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				logger.S().Warnw("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, jobType string, interval time.Duration, run RunFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, j.Type, StatusRunning).Scan(&runID); err != nil {
			logger.S().Warnw("job run insert failed", "jobType", j.Type, "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error()}
	}
	if s.Metrics != nil {
		s.Metrics.JobRun(j.Type, status)
	}
	logger.S().Infow("job run finished", "jobType", j.Type, "status", status)

	if runID != "" {
		detailsJSON, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			logger.S().Warnw("job details marshal failed", "err", marshalErr)
			detailsJSON = []byte("{}")
		}
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			logger.S().Warnw("job run update failed", "jobType", j.Type, "err", updErr)
		}
	}
	return details, err
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.DB == nil {
		return []Run{}, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    ORDER BY started_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	defer rows.Close()

	out := make([]Run, 0)
	for rows.Next() {
		var r Run
		var details []byte
		if err := rows.Scan(&r.ID, &r.JobType, &r.Status, &details, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		r.Details = json.RawMessage(details)
		out = append(out, r)
	}
	return out, rows.Err()
}
