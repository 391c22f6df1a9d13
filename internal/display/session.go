package display

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often a display re-resolves its queue.
const DefaultPollInterval = 60 * time.Second

// QueueSource fetches the current queue of a TV.
type QueueSource interface {
	FetchQueue(ctx context.Context, tvID string) (*QueueResponse, error)
}

// MediaProber checks that an ad's media can be loaded.
type MediaProber interface {
	Probe(ctx context.Context, url string) error
}

// SessionOptions tunes a Session. Zero values fall back to defaults.
type SessionOptions struct {
	PollInterval  time.Duration
	VideoFallback time.Duration
	// Dwell overrides the on-screen duration of an item.
	Dwell func(QueueItem) time.Duration
	// OnShow is called every time an item goes on screen.
	OnShow func(tvID string, item QueueItem)
}

// Session runs playback for a single TV: a poll ticker decides what is in the queue,
// a one-shot dwell timer decides when the next item shows.
type Session struct {
	tvID     string
	source   QueueSource
	prober   MediaProber
	logger   *zap.Logger
	poll     time.Duration
	dwell    func(QueueItem) time.Duration
	onShow   func(string, QueueItem)
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	reloadCh chan struct{}
}

// NewSession creates a playback session for tvID. prober may be nil.
func NewSession(tvID string, source QueueSource, prober MediaProber, opts SessionOptions, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	dwell := opts.Dwell
	if dwell == nil {
		fallback := opts.VideoFallback
		dwell = func(item QueueItem) time.Duration { return Dwell(item, fallback) }
	}
	return &Session{
		tvID:     tvID,
		source:   source,
		prober:   prober,
		logger:   logger.With(zap.String("tv_id", tvID)),
		poll:     opts.PollInterval,
		dwell:    dwell,
		onShow:   opts.OnShow,
		reloadCh: make(chan struct{}, 1),
	}
}

// Start begins the playback loop. Call Stop() to release resources.
func (s *Session) Start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(ctx, done)
	s.logger.Info("display session started", zap.Duration("poll_interval", s.poll))
}

// Stop cancels both timers and waits for the loop to exit.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	<-s.done
	s.logger.Info("display session stopped")
}

// Reload asks the session to re-fetch its queue now instead of at the next poll.
func (s *Session) Reload() {
	select {
	case s.reloadCh <- struct{}{}:
	default:
	}
}

func (s *Session) run(ctx context.Context, done chan struct{}) {
	var probes sync.WaitGroup
	defer close(done)
	defer probes.Wait()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	player := NewPlayer()
	var (
		timer  *time.Timer
		dwellC <-chan time.Time
	)
	disarm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, dwellC = nil, nil
	}
	arm := func(item QueueItem) {
		disarm()
		timer = time.NewTimer(s.dwell(item))
		dwellC = timer.C
	}
	defer disarm()

	refresh := func() {
		resp, err := s.source.FetchQueue(ctx, s.tvID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("display queue fetch failed", zap.Error(err))
			resp = &QueueResponse{}
		}
		started := player.Apply(resp.Ads)
		switch {
		case player.State() == Idle:
			if dwellC != nil {
				s.logger.Info("display idle")
			}
			disarm()
		case started:
			item, _ := player.Current()
			arm(item)
			s.show(ctx, &probes, item)
		}
	}
	refresh()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.reloadCh:
			refresh()
		case <-ticker.C:
			refresh()
		case <-dwellC:
			item, ok := player.Advance()
			if !ok {
				disarm()
				continue
			}
			arm(item)
			s.show(ctx, &probes, item)
			player.Settle()
		}
	}
}

// show puts item on screen. The media probe runs off the loop so a slow store
// never delays the dwell timer, polls or reloads.
func (s *Session) show(ctx context.Context, probes *sync.WaitGroup, item QueueItem) {
	if s.onShow != nil {
		s.onShow(s.tvID, item)
	}
	s.logger.Debug("showing ad", zap.String("ad_id", item.ID), zap.String("kind", string(item.Kind)))
	if s.prober == nil {
		return
	}
	probes.Add(1)
	go func() {
		defer probes.Done()
		if err := s.prober.Probe(ctx, item.MediaURL); err != nil && ctx.Err() == nil {
			perr := &MediaPlaybackError{AdID: item.ID, URL: item.MediaURL, Err: err}
			s.logger.Warn("media playback error", zap.Error(perr))
		}
	}()
}
