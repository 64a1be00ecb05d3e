package recon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"datarec/core/errors"
	"datarec/core/logger"
	"datarec/core/reconcile"
	"datarec/core/storage"
	"datarec/feature/job"
	"datarec/feature/source"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Failure classes of a job run.
var (
	ErrUnknownJob = errors.New("unknown job")
	ErrInvalidJob = errors.New("invalid job")
	ErrRun        = errors.New("job does not fit its data")
	// ErrNoReportStore means no storage client was configured for reports.
	ErrNoReportStore = errors.New("report storage not configured")
)

// Config wires the service.
type Config struct {
	Jobs job.Dir
	Env  source.Env
	// ReportBucket defaults to Env.Bucket.
	ReportBucket string
	ReportPrefix string
	Region       string
}

// ReportInfo describes an uploaded report.
type ReportInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service runs jobs and stores their reports.
type Service struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new reconciliation service.
func NewService(cfg Config, logger *zap.Logger) *Service {
	if cfg.ReportBucket == "" {
		cfg.ReportBucket = cfg.Env.Bucket
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger, now: time.Now}
}

// ListJobs returns the job names in the jobs directory.
func (s *Service) ListJobs() ([]string, error) {
	return s.cfg.Jobs.List()
}

// GetJob loads and validates the named job.
func (s *Service) GetJob(name string) (*job.Job, error) {
	j, err := s.cfg.Jobs.Load(name)
	switch {
	case err == nil:
		return j, nil
	case errors.Is(err, errors.ErrNotFound):
		return nil, fmt.Errorf("%w: %w", ErrUnknownJob, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
}

// RunJob loads the named job and runs it.
func (s *Service) RunJob(ctx context.Context, name string) (*job.Job, *reconcile.Result, error) {
	j, err := s.GetJob(name)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Run(ctx, j, logger.WithJob(s.logger, j.Name))
	return j, res, err
}

// Run loads both sources of j and reconciles them, logging through l. Failing
// checks are not an error here, callers decide through Result.Err.
func (s *Service) Run(ctx context.Context, j *job.Job, l *zap.Logger) (*reconcile.Result, error) {
	b, c, err := j.Sources(s.cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrLoad, err)
	}

	start := s.now()
	bt, ct, err := source.LoadPair(ctx, b, c)
	if err != nil {
		return nil, err
	}
	l.Debug("Sources loaded",
		zap.Int("baseline_rows", bt.NumRows()),
		zap.Int("candidate_rows", ct.NumRows()),
		zap.Duration("took", s.now().Sub(start)))

	rec, err := j.Reconciler(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	res, err := rec.Run(bt, ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRun, err)
	}
	l.Info("Reconciliation finished",
		zap.Bool("passed", res.Passed()),
		zap.Int("checks", res.Len()),
		zap.Int("failures", len(res.Failures())))
	return res, nil
}

// ReportKey returns the object name a report of job taken at t is stored under.
func (s *Service) ReportKey(jobName string, t time.Time) string {
	return path.Join(s.cfg.ReportPrefix, jobName, fmt.Sprintf("%d.json", t.Unix()))
}

// UploadReport stores rep as JSON and returns its object name.
func (s *Service) UploadReport(ctx context.Context, jobName string, rep reconcile.Report) (string, error) {
	client := s.cfg.Env.Storage
	if client == nil {
		return "", ErrNoReportStore
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, s.cfg.ReportBucket, s.cfg.Region); err != nil {
		return "", err
	}

	key := s.ReportKey(jobName, s.now())
	_, err = client.PutObject(ctx, s.cfg.ReportBucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	s.logger.Info("Report uploaded", zap.String("bucket", s.cfg.ReportBucket), zap.String("key", key))
	return key, nil
}

// ListReports returns the reports uploaded for a job, oldest first.
func (s *Service) ListReports(ctx context.Context, jobName string) ([]ReportInfo, error) {
	client := s.cfg.Env.Storage
	if client == nil {
		return nil, ErrNoReportStore
	}
	prefix := path.Join(s.cfg.ReportPrefix, jobName) + "/"
	reports := []ReportInfo{}
	for obj := range client.ListObjects(ctx, s.cfg.ReportBucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		reports = append(reports, ReportInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return reports, nil
}
