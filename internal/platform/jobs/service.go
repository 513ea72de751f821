package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"logvault/internal/domain/archive"
	"logvault/internal/domain/health"
	"logvault/internal/platform/config"
)

const (
	JobTrackGrowth = "track_growth"
	JobArchive     = "archive_table"
	JobHealthCheck = "health_check"
)

type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Archive *archive.Service
	Checker *health.Checker
	queue   chan job
}

type job struct {
	Type   string
	Target string
	Run    func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, svc *archive.Service, checker *health.Checker) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Archive: svc,
		Checker: checker,
		queue:   make(chan job, 64),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.GrowthTrackInterval > 0 {
		go s.scheduleGrowthTracking(ctx, s.Cfg.GrowthTrackInterval)
	}
	if s.Cfg.ArchiveInterval > 0 {
		go s.scheduleArchival(ctx, s.Cfg.ArchiveInterval)
	}
	if s.Cfg.HealthCheckInterval > 0 {
		go s.scheduleHealthChecks(ctx, s.Cfg.HealthCheckInterval)
	}
}

func (s *Service) Enqueue(jobType, target string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Target: target, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "target", target)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, target string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Target: target, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "target", j.Target, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, target, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.Type, j.Target, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleGrowthTracking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, tableName := range s.Cfg.TrackedTables {
				table := tableName
				s.Enqueue(JobTrackGrowth, table, func(ctx context.Context) (any, error) {
					return s.Archive.TrackTableGrowth(ctx, table)
				})
			}
		}
	}
}

func (s *Service) scheduleArchival(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := s.Archive.GetTablesNeedingArchival(ctx)
			if err != nil {
				slog.Warn("archival scheduler lookup failed", "err", err)
				continue
			}
			cutoff := time.Now().UTC().AddDate(0, 0, -s.Cfg.ArchiveWindowDays)
			for _, stats := range due {
				table := stats.TableName
				s.Enqueue(JobArchive, table, func(ctx context.Context) (any, error) {
					result := s.Archive.ArchiveTable(ctx, table, cutoff)
					if !result.Success {
						slog.Warn("scheduled archive failed", "table", table, "err", result.Error)
					}
					return result, nil
				})
			}
		}
	}
}

func (s *Service) scheduleHealthChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobHealthCheck, "", func(ctx context.Context) (any, error) {
				result, err := s.Checker.PerformHealthCheck(ctx)
				if err != nil {
					return nil, err
				}
				if !result.Healthy {
					slog.Warn("archive health check found issues", "issues", result.Issues)
				}
				return result, nil
			})
		}
	}
}
