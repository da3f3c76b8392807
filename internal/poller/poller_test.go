package poller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/acesco/vigia/internal/api"
	"github.com/acesco/vigia/internal/errors"
	"github.com/acesco/vigia/internal/eventlog"
	"github.com/acesco/vigia/internal/station"
)

type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

// fakeClock hands out one ticker per interval so tests can fire ticks
// by hand.
type fakeClock struct {
	mu      sync.Mutex
	tickers map[time.Duration]*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{tickers: make(map[time.Duration]*fakeTicker)}
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	f.tickers[d] = t
	return t
}

// tick fires one tick for the given interval, blocking until the loop
// picks it up.
func (f *fakeClock) tick(t *testing.T, d time.Duration) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		ticker, ok := f.tickers[d]
		f.mu.Unlock()
		if ok {
			select {
			case ticker.ch <- time.Now():
				return
			case <-deadline:
				t.Fatalf("tick for %v not consumed", d)
			}
		}
		select {
		case <-deadline:
			t.Fatalf("no ticker registered for %v", d)
		case <-time.After(time.Millisecond):
		}
	}
}

type fakeStation struct {
	mu     sync.Mutex
	camera int
	module station.Module
	armed  bool
}

func (f *fakeStation) ArmedTarget() (int, station.Module, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.camera, f.module, f.armed
}

func (f *fakeStation) set(camera int, module station.Module, armed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.camera, f.module, f.armed = camera, module, armed
}

type fakeAPI struct {
	mu        sync.Mutex
	videos    []string
	videosErr error
	det       *api.Detections
	detErr    error
	polled    []string
}

func (f *fakeAPI) Videos(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.videosErr != nil {
		return nil, f.videosErr
	}
	out := make([]string, len(f.videos))
	copy(out, f.videos)
	return out, nil
}

func (f *fakeAPI) PollDetections(_ context.Context, cameraID int, module string) (*api.Detections, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled = append(f.polled, fmt.Sprintf("%d/%s", cameraID, module))
	if f.detErr != nil {
		return nil, f.detErr
	}
	return f.det, nil
}

func (f *fakeAPI) VideoURL(filename string) string {
	return "/video/" + filename
}

func (f *fakeAPI) polledTargets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.polled))
	copy(out, f.polled)
	return out
}

func (f *fakeAPI) setVideos(videos []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos = videos
}

func newTestScheduler(t *testing.T, st *fakeStation, a *fakeAPI) (*Scheduler, *fakeClock, *eventlog.Log, *station.SnapshotStore) {
	t.Helper()
	clock := newFakeClock()
	feed := eventlog.NewLog()
	t.Cleanup(feed.Close)
	snapshots := station.NewSnapshotStore(time.Minute)

	s, err := New(Config{
		Clock:             clock,
		DetectionInterval: time.Second,
		VideoInterval:     5 * time.Second,
		Station:           st,
		API:               a,
		Feed:              feed,
		Snapshots:         snapshots,
	})
	require.NoError(t, err, "scheduler construction should succeed")
	return s, clock, feed, snapshots
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err, "missing sinks should be rejected")
	assert.True(t, errors.HasCategory(err, errors.CategoryConfiguration))

	_, err = New(Config{
		Station:   &fakeStation{},
		API:       &fakeAPI{},
		Feed:      eventlog.NewLog(),
		Snapshots: station.NewSnapshotStore(time.Second),
	})
	require.Error(t, err, "zero intervals should be rejected")
}

func TestDetectionTickNoopWhenDisarmed(t *testing.T) {
	st := &fakeStation{}
	a := &fakeAPI{}
	s, _, _, _ := newTestScheduler(t, st, a)

	s.detectionTick(context.Background())
	assert.Empty(t, a.polledTargets(), "disarmed tick must not hit the server")
}

func TestDetectionTickStoresSnapshot(t *testing.T) {
	st := &fakeStation{}
	st.set(3, station.ModulePPE, true)
	a := &fakeAPI{det: &api.Detections{Flags: map[string]bool{"Casco": true, "Guantes": false}}}
	s, _, _, snapshots := newTestScheduler(t, st, a)

	s.detectionTick(context.Background())

	require.Equal(t, []string{"3/EPP's"}, a.polledTargets(), "tick should poll the armed camera and module")
	snap, ok := snapshots.Get(3, station.ModulePPE)
	require.True(t, ok, "snapshot should be stored")
	assert.True(t, snap.Flags["Casco"])
	assert.False(t, snap.Flags["Guantes"])
	assert.Nil(t, snap.AreaOccupied, "non-area modules carry no occupancy")
}

func TestDetectionTickAreaOccupancy(t *testing.T) {
	st := &fakeStation{}
	st.set(1, station.ModuleRestrictedAreas, true)
	a := &fakeAPI{det: &api.Detections{
		Flags:        map[string]bool{"Persona": true},
		PersonInArea: map[string]bool{"1": true, "2": false},
	}}
	s, _, _, snapshots := newTestScheduler(t, st, a)

	s.detectionTick(context.Background())

	snap, ok := snapshots.Get(1, station.ModuleRestrictedAreas)
	require.True(t, ok)
	assert.True(t, snap.AreaOccupied[station.AreaSlot1])
	assert.False(t, snap.AreaOccupied[station.AreaSlot2])
}

func TestDetectionTickErrorLeavesStore(t *testing.T) {
	st := &fakeStation{}
	st.set(2, station.ModuleTemperature, true)
	a := &fakeAPI{detErr: fmt.Errorf("connection refused")}
	s, _, _, snapshots := newTestScheduler(t, st, a)

	s.detectionTick(context.Background())

	_, ok := snapshots.Get(2, station.ModuleTemperature)
	assert.False(t, ok, "failed poll must not store a snapshot")
}

func TestVideoTickWatermark(t *testing.T) {
	st := &fakeStation{}
	a := &fakeAPI{videos: []string{"rec1.mp4", "rec2.mp4"}}
	s, _, feed, _ := newTestScheduler(t, st, a)

	s.videoTick(context.Background())
	require.Equal(t, 2, s.Watermark())
	entries := feed.List()
	require.Len(t, entries, 2, "both recordings surface as feed entries")
	assert.Equal(t, "/video/rec2.mp4", entries[0].MediaRef, "newest entry first")
	assert.Equal(t, "Video grabado", entries[0].Message)
	assert.True(t, entries[0].Persistent, "video entries never expire")

	// Same list again: nothing new.
	s.videoTick(context.Background())
	assert.Equal(t, 2, feed.Len(), "already seen recordings are not re-announced")

	// One more recording: only the delta surfaces.
	a.setVideos([]string{"rec1.mp4", "rec2.mp4", "rec3.mp4"})
	s.videoTick(context.Background())
	assert.Equal(t, 3, s.Watermark())
	assert.Equal(t, 3, feed.Len())
	assert.Equal(t, "/video/rec3.mp4", feed.List()[0].MediaRef)
}

func TestVideoTickWatermarkNeverDecreases(t *testing.T) {
	st := &fakeStation{}
	a := &fakeAPI{videos: []string{"a.mp4", "b.mp4", "c.mp4"}}
	s, _, feed, _ := newTestScheduler(t, st, a)

	s.videoTick(context.Background())
	require.Equal(t, 3, s.Watermark())

	a.setVideos([]string{"a.mp4"})
	s.videoTick(context.Background())
	assert.Equal(t, 3, s.Watermark(), "a shrinking server list must not rewind the watermark")
	assert.Equal(t, 3, feed.Len())
}

func TestVideoTickErrorKeepsWatermark(t *testing.T) {
	st := &fakeStation{}
	a := &fakeAPI{videosErr: fmt.Errorf("connection refused")}
	s, _, feed, _ := newTestScheduler(t, st, a)

	s.videoTick(context.Background())
	assert.Zero(t, s.Watermark())
	assert.Zero(t, feed.Len())
}

func TestRunDrivesBothLoops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	st := &fakeStation{}
	st.set(1, station.ModuleUnsafeActions, true)
	a := &fakeAPI{
		det:    &api.Detections{Flags: map[string]bool{"Se cayó": true}},
		videos: []string{"rec1.mp4"},
	}
	s, clock, feed, snapshots := newTestScheduler(t, st, a)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	clock.tick(t, time.Second)
	clock.tick(t, 5*time.Second)

	require.Eventually(t, func() bool {
		_, ok := snapshots.Get(1, station.ModuleUnsafeActions)
		return ok && feed.Len() == 1
	}, 2*time.Second, 5*time.Millisecond, "both ticks should land")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
