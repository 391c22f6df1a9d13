package display

import (
	"time"

	"github.com/agro-ad/backend/internal/models"
)

const (
	// VideoFallbackDwell is how long a video stays on screen; its real duration is never probed.
	VideoFallbackDwell = 30 * time.Second
	// DefaultImageDwell covers image/gif items that arrive without a usable display_seconds.
	DefaultImageDwell = 10 * time.Second
)

// State is the playback state of one TV.
type State int

const (
	Idle State = iota
	Showing
	Advancing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Showing:
		return "showing"
	case Advancing:
		return "advancing"
	}
	return "unknown"
}

// Player is the rotation state machine for one TV. It is not safe for concurrent use;
// a Session owns it from a single goroutine.
type Player struct {
	state   State
	queue   []QueueItem
	index   int
	current QueueItem
}

// NewPlayer returns an idle player.
func NewPlayer() *Player {
	return &Player{state: Idle}
}

// State returns the current state.
func (p *Player) State() State { return p.state }

// Index returns the position of the current item in the last applied queue.
func (p *Player) Index() int { return p.index }

// Current returns the ad on screen; ok is false when idle.
func (p *Player) Current() (QueueItem, bool) {
	if p.state == Idle {
		return QueueItem{}, false
	}
	return p.current, true
}

// Apply installs a freshly resolved queue. started is true when the player left Idle and
// the caller must show Current and arm a dwell timer. A refresh while showing never
// interrupts the ad on screen.
func (p *Player) Apply(queue []QueueItem) (started bool) {
	p.queue = queue
	if len(queue) == 0 {
		p.state = Idle
		p.index = 0
		p.current = QueueItem{}
		return false
	}
	if p.state == Idle {
		p.state = Showing
		p.index = 0
		p.current = queue[0]
		return true
	}
	p.index %= len(queue)
	return false
}

// Advance moves to the next item, wrapping around. The player stays in Advancing until Settle.
// ok is false when there is nothing to advance to.
func (p *Player) Advance() (next QueueItem, ok bool) {
	if p.state == Idle || len(p.queue) == 0 {
		return QueueItem{}, false
	}
	p.state = Advancing
	p.index = (p.index + 1) % len(p.queue)
	p.current = p.queue[p.index]
	return p.current, true
}

// Settle completes an Advance.
func (p *Player) Settle() {
	if p.state == Advancing {
		p.state = Showing
	}
}

// Dwell is how long item stays on screen.
func Dwell(item QueueItem, videoFallback time.Duration) time.Duration {
	if item.Kind == models.MediaVideo {
		if videoFallback <= 0 {
			return VideoFallbackDwell
		}
		return videoFallback
	}
	if item.DisplaySeconds == nil || *item.DisplaySeconds <= 0 {
		return DefaultImageDwell
	}
	return time.Duration(*item.DisplaySeconds) * time.Second
}
