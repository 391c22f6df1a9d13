package display

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agro-ad/backend/internal/errs"
)

type fakeSource struct {
	mu      sync.Mutex
	ads     []QueueItem
	err     error
	fetches atomic.Int32
}

func (f *fakeSource) set(ads ...QueueItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ads = ads
}

func (f *fakeSource) FetchQueue(_ context.Context, tvID string) (*QueueResponse, error) {
	defer f.fetches.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &QueueResponse{TVID: tvID, Ads: append([]QueueItem{}, f.ads...)}, nil
}

type failingProber struct{ calls atomic.Int32 }

func (p *failingProber) Probe(context.Context, string) error {
	p.calls.Add(1)
	return errors.New("404")
}

type recorder struct {
	mu    sync.Mutex
	shown []string
}

func (r *recorder) onShow(_ string, item QueueItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, item.ID)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.shown...)
}

func fastDwell(item QueueItem) time.Duration {
	if item.DisplaySeconds == nil {
		return 30 * time.Millisecond
	}
	return time.Duration(*item.DisplaySeconds) * 10 * time.Millisecond
}

func TestSessionRotates(t *testing.T) {
	src := &fakeSource{}
	src.set(image("a", 1), image("b", 2), image("c", 1))
	rec := &recorder{}
	s := NewSession("tv1", src, nil, SessionOptions{PollInterval: time.Hour, Dwell: fastDwell, OnShow: rec.onShow}, zaptest.NewLogger(t))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 4 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c", "a"}, rec.snapshot()[:4])
}

func TestSessionIdleAndBack(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	hold := func(QueueItem) time.Duration { return time.Hour }
	s := NewSession("tv1", src, nil, SessionOptions{PollInterval: time.Hour, Dwell: hold, OnShow: rec.onShow}, zaptest.NewLogger(t))
	s.Start()
	defer s.Stop()

	reload := func() {
		before := src.fetches.Load()
		s.Reload()
		require.Eventually(t, func() bool { return src.fetches.Load() > before }, time.Second, time.Millisecond)
	}

	require.Eventually(t, func() bool { return src.fetches.Load() == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, rec.snapshot())

	src.set(image("a", 5))
	reload()
	src.set()
	reload()
	src.set(image("b", 5))
	reload()

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, rec.snapshot())
}

func TestSessionKeepsRotatingOnMediaErrors(t *testing.T) {
	src := &fakeSource{}
	src.set(image("a", 1), image("b", 1))
	rec := &recorder{}
	prober := &failingProber{}
	s := NewSession("tv1", src, prober, SessionOptions{PollInterval: time.Hour, Dwell: fastDwell, OnShow: rec.onShow}, zaptest.NewLogger(t))
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "a"}, rec.snapshot()[:3])
	require.Eventually(t, func() bool { return prober.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestSessionFetchErrorFallsBackToIdle(t *testing.T) {
	src := &fakeSource{}
	src.set(image("a", 1), image("b", 1))
	rec := &recorder{}
	s := NewSession("tv1", src, nil, SessionOptions{PollInterval: time.Hour, Dwell: fastDwell, OnShow: rec.onShow}, zaptest.NewLogger(t))
	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 2 }, time.Second, time.Millisecond)

	src.fail(errs.NotFound("tv", "tv1"))
	before := src.fetches.Load()
	s.Reload()
	require.Eventually(t, func() bool { return src.fetches.Load() > before }, time.Second, time.Millisecond)

	// A dwell of 10ms would have advanced several times by now.
	idle := len(rec.snapshot())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, idle, len(rec.snapshot()), "rotation must stop after a resolution error")

	src.fail(nil)
	src.set(image("c", 100))
	s.Reload()
	require.Eventually(t, func() bool { return len(rec.snapshot()) == idle+1 }, time.Second, time.Millisecond)
	assert.Equal(t, "c", rec.snapshot()[idle])
}

type slowProber struct{ delay time.Duration }

func (p slowProber) Probe(ctx context.Context, _ string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.delay):
		return errors.New("timeout")
	}
}

type timedRecorder struct {
	mu sync.Mutex
	at []time.Time
}

func (r *timedRecorder) onShow(string, QueueItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.at = append(r.at, time.Now())
}

func (r *timedRecorder) snapshot() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time{}, r.at...)
}

func TestSessionSlowProbeDoesNotStretchDwell(t *testing.T) {
	src := &fakeSource{}
	src.set(image("a", 1), image("b", 1))
	rec := &timedRecorder{}
	dwell := func(QueueItem) time.Duration { return 50 * time.Millisecond }
	s := NewSession("tv1", src, slowProber{delay: 200 * time.Millisecond},
		SessionOptions{PollInterval: time.Hour, Dwell: dwell, OnShow: rec.onShow}, zaptest.NewLogger(t))
	s.Start()

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 5 }, 2*time.Second, time.Millisecond)
	s.Stop()

	at := rec.snapshot()
	for i := 1; i < 5; i++ {
		assert.Less(t, at[i].Sub(at[i-1]), 150*time.Millisecond, "gap %d", i)
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	s := NewSession("tv1", &fakeSource{}, nil, SessionOptions{}, zaptest.NewLogger(t))
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
	s.Start()
	s.Stop()
}

func TestRegistry(t *testing.T) {
	src := &fakeSource{}
	reg := NewRegistry(func(tvID string) *Session {
		return NewSession(tvID, src, nil, SessionOptions{PollInterval: time.Hour}, zaptest.NewLogger(t))
	})
	reg.Start("tv2")
	reg.Start("tv1")
	reg.Start("tv1")
	assert.Equal(t, []string{"tv1", "tv2"}, reg.Running())

	require.Eventually(t, func() bool { return src.fetches.Load() == 2 }, time.Second, time.Millisecond)
	reg.Reload("tv1")
	reg.Reload("missing")
	require.Eventually(t, func() bool { return src.fetches.Load() == 3 }, time.Second, time.Millisecond)

	reg.Stop("tv2")
	assert.Equal(t, []string{"tv1"}, reg.Running())
	reg.StopAll()
	assert.Empty(t, reg.Running())
}
