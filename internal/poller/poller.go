// Package poller runs the two periodic reconciliation tasks of the
// station: the recorded-video discovery tick and the detection tick.
// Both only ever read server state; neither mutates module, camera or
// area state. The clock is injectable so tests can drive tick cadence
// deterministically.
package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/acesco/vigia/internal/api"
	"github.com/acesco/vigia/internal/errors"
	"github.com/acesco/vigia/internal/eventlog"
	"github.com/acesco/vigia/internal/logging"
	"github.com/acesco/vigia/internal/station"
)

var pollLogger *slog.Logger
var pollLevelVar = new(slog.LevelVar)

func init() {
	var err error
	pollLogger, _, err = logging.NewFileLogger("logs/poller.log", "poller", pollLevelVar)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: pollLevelVar})
		pollLogger = slog.New(fbHandler).With("service", "poller")
	}
}

// Clock creates tickers. The real clock wraps time.Ticker; tests provide
// hand-driven channels.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker is the minimal ticker surface the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

type realTicker struct {
	t *time.Ticker
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (rt *realTicker) C() <-chan time.Time { return rt.t.C }
func (rt *realTicker) Stop()               { rt.t.Stop() }

// RealClock returns a Clock backed by time.Ticker.
func RealClock() Clock {
	return realClock{}
}

// Station is the read-only view of the controller the detection tick
// needs: which camera and module to poll, if anything is armed.
type Station interface {
	ArmedTarget() (camera int, module station.Module, ok bool)
}

// API is the server surface the scheduler polls.
type API interface {
	Videos(ctx context.Context) ([]string, error)
	PollDetections(ctx context.Context, cameraID int, module string) (*api.Detections, error)
	VideoURL(filename string) string
}

// Feed receives the persistent entries for newly discovered recordings.
type Feed interface {
	AddVideo(message, mediaRef string) *eventlog.Entry
}

// SnapshotSink receives detection snapshots.
type SnapshotSink interface {
	Set(camera int, module station.Module, snap station.Snapshot)
}

// Config assembles a Scheduler.
type Config struct {
	Clock             Clock
	DetectionInterval time.Duration
	VideoInterval     time.Duration
	Station           Station
	API               API
	Feed              Feed
	Snapshots         SnapshotSink
}

// Scheduler owns the two polling loops and the recorded-video watermark.
type Scheduler struct {
	clock             Clock
	detectionInterval time.Duration
	videoInterval     time.Duration
	station           Station
	api               API
	feed              Feed
	snapshots         SnapshotSink

	mu   sync.Mutex
	seen int
}

// New creates a Scheduler. A nil clock falls back to the real one.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Station == nil || cfg.API == nil || cfg.Feed == nil || cfg.Snapshots == nil {
		return nil, errors.Newf("scheduler requires station, api, feed and snapshot sinks").
			Component("poller").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.DetectionInterval <= 0 || cfg.VideoInterval <= 0 {
		return nil, errors.Newf("polling intervals must be positive").
			Component("poller").
			Category(errors.CategoryConfiguration).
			Build()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{
		clock:             clock,
		detectionInterval: cfg.DetectionInterval,
		videoInterval:     cfg.VideoInterval,
		station:           cfg.Station,
		api:               cfg.API,
		feed:              cfg.Feed,
		snapshots:         cfg.Snapshots,
	}, nil
}

// Run starts both loops and blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.loop(ctx, s.detectionInterval, s.detectionTick)
	})
	g.Go(func() error {
		return s.loop(ctx, s.videoInterval, s.videoTick)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) error {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			tick(ctx)
		}
	}
}

// detectionTick fetches the current snapshot for the armed module. A
// tick with nothing armed is a no-op, which also makes a tick landing
// between disarm-request and disarm-confirmation harmless.
func (s *Scheduler) detectionTick(ctx context.Context) {
	camera, module, ok := s.station.ArmedTarget()
	if !ok {
		return
	}

	det, err := s.api.PollDetections(ctx, camera, module.WireName())
	if err != nil {
		pollLogger.Error("detection poll failed", "camera", camera, "module", module.String(), "error", err)
		return
	}

	snap := station.Snapshot{Flags: det.Flags, At: time.Now()}
	if module == station.ModuleRestrictedAreas {
		snap.AreaOccupied = map[station.AreaSlot]bool{
			station.AreaSlot1: det.PersonInArea["1"],
			station.AreaSlot2: det.PersonInArea["2"],
		}
	}
	s.snapshots.Set(camera, module, snap)
}

// videoTick fetches the full recording list and surfaces every
// identifier beyond the watermark as a new persistent feed entry. The
// watermark only ever advances: a temporarily shrinking server list
// never re-surfaces old recordings.
func (s *Scheduler) videoTick(ctx context.Context) {
	videos, err := s.api.Videos(ctx)
	if err != nil {
		pollLogger.Error("video discovery failed", "error", err)
		return
	}

	s.mu.Lock()
	if len(videos) <= s.seen {
		s.mu.Unlock()
		return
	}
	fresh := videos[s.seen:]
	s.seen = len(videos)
	s.mu.Unlock()

	for _, name := range fresh {
		s.feed.AddVideo("Video grabado", s.api.VideoURL(name))
	}
	pollLogger.Info("new recordings discovered", "count", len(fresh))
}

// Watermark returns the count of previously seen recordings.
func (s *Scheduler) Watermark() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}
