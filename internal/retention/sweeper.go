// Package retention evicts stored files once they outlive the retention window.
package retention

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/filedrop/service/internal/audit"
	"github.com/filedrop/service/internal/metrics"
	"github.com/filedrop/service/internal/storage"
)

// ErrSweepInProgress is returned when a sweep is requested while another runs.
var ErrSweepInProgress = errors.New("sweep already in progress")

const (
	DefaultRetention = 7 * 24 * time.Hour
	DefaultInterval  = time.Hour
)

// Report summarises one sweep.
type Report struct {
	Scanned  int           `json:"scanned"`
	Evicted  int           `json:"evicted"`
	Raced    int           `json:"raced"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"durationNs" swaggertype:"integer"`
}

// Options configures a Sweeper. Zero values select the defaults.
type Options struct {
	Retention time.Duration
	Interval  time.Duration
	Recorder  audit.Recorder
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Sweeper periodically removes files whose modification time is older than
// the retention window.
type Sweeper struct {
	store     storage.Storage
	retention time.Duration
	interval  time.Duration
	recorder  audit.Recorder
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	running atomic.Bool
}

// NewSweeper creates a Sweeper over store.
func NewSweeper(store storage.Storage, opts Options) *Sweeper {
	s := &Sweeper{
		store:     store,
		retention: opts.Retention,
		interval:  opts.Interval,
		recorder:  opts.Recorder,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.retention <= 0 {
		s.retention = DefaultRetention
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.recorder == nil {
		s.recorder = audit.NopRecorder{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run sweeps once immediately and then on every interval until ctx is done.
// A failed cycle is logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("starting retention sweeper",
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval))

	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweeper shutting down")
			return nil
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Sweeper) cycle(ctx context.Context) {
	report, err := s.SweepOnce(ctx)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.logger.Debug("skipping sweep, previous one still running")
	case err != nil && ctx.Err() != nil:
		// shutting down
	case err != nil:
		s.logger.Error("retention sweep failed", zap.Error(err))
	case report.Evicted > 0 || report.Failed > 0:
		s.logger.Info("retention sweep completed",
			zap.Int("scanned", report.Scanned),
			zap.Int("evicted", report.Evicted),
			zap.Int("raced", report.Raced),
			zap.Int("failed", report.Failed),
			zap.Duration("took", report.Duration))
	default:
		s.logger.Debug("retention sweep completed", zap.Int("scanned", report.Scanned))
	}
}

// SweepOnce runs a single eviction pass. Files removed concurrently by someone
// else count as Raced. Any other per-file failure is counted as Failed and the
// pass moves on to the next file.
func (s *Sweeper) SweepOnce(ctx context.Context) (Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Report{}, ErrSweepInProgress
	}
	defer s.running.Store(false)

	start := s.now()
	cutoff := start.Add(-s.retention)

	objects, err := s.store.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list stored files: %w", err)
	}

	report := Report{Scanned: len(objects)}
	for _, obj := range objects {
		if ctx.Err() != nil {
			break
		}
		if !obj.ModTime.Before(cutoff) {
			continue
		}

		err := s.store.Remove(ctx, obj.ID)
		switch {
		case err == nil:
			report.Evicted++
			s.logger.Debug("evicted file",
				zap.String("id", obj.ID),
				zap.Time("modified", obj.ModTime))
			s.record(ctx, audit.NewEvent(audit.KindEvicted, obj.ID, obj.Size))
		case errors.Is(err, storage.ErrNotFound):
			report.Raced++
		default:
			report.Failed++
			s.logger.Warn("evict file", zap.String("id", obj.ID), zap.Error(err))
		}
	}

	report.Duration = s.now().Sub(start)
	s.metrics.ObserveSweep(report.Duration, report.Evicted, report.Failed)
	return report, ctx.Err()
}

func (s *Sweeper) record(ctx context.Context, e audit.Event) {
	if err := s.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("record audit event", zap.String("id", e.FileID), zap.Error(err))
	}
}
