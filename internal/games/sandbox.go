package games

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'games'
func tracer() tracing.Trace {
	return tracing.Select("games")
}

const (
	// MinDelay and MaxDelay bound the wait before the reaction box turns
	// green, drawn in 100 ms steps.
	MinDelay = 500 * time.Millisecond
	MaxDelay = 5 * time.Second
	// Targets per accuracy round.
	Targets = 10
	// SessionTTL is how long an idle game session is kept.
	SessionTTL = 10 * time.Minute
)

var (
	ErrNoSession = errors.New("no such game session")
	ErrGameOver  = errors.New("game already finished")
)

// Target is one accuracy target, position in percent of the play area and
// size in pixels.
type Target struct {
	Left int `json:"left"`
	Top  int `json:"top"`
	Size int `json:"size"`
}

// ReactionResult is the outcome of clicking the reaction box.
type ReactionResult struct {
	TooEarly bool          `json:"tooEarly"`
	Reaction time.Duration `json:"reactionNs"`
}

// Millis is the reaction time in milliseconds.
func (r ReactionResult) Millis() float64 {
	return float64(r.Reaction) / float64(time.Millisecond)
}

// AccuracyStep is the state after a target hit: either the next target or
// the final tally.
type AccuracyStep struct {
	Hits     int           `json:"hits"`
	Next     *Target       `json:"next,omitempty"`
	Done     bool          `json:"done"`
	Total    time.Duration `json:"totalNs"`
	PerHitMs float64       `json:"avgMs"`
}

type reactionGame struct {
	started time.Time
	delay   time.Duration
}

type accuracyGame struct {
	started time.Time
	targets []Target
	hits    int
}

// Sandbox keeps the running games of all visitors. It is safe for
// concurrent use.
type Sandbox struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	now      func() time.Time
	reaction map[string]*reactionGame
	accuracy map[string]*accuracyGame
	touched  map[string]time.Time
}

// NewSandbox creates a game registry. A nil rnd seeds one from the clock,
// a nil now uses time.Now.
func NewSandbox(rnd *rand.Rand, now func() time.Time) *Sandbox {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(now().UnixNano()))
	}
	return &Sandbox{
		rnd:      rnd,
		now:      now,
		reaction: make(map[string]*reactionGame),
		accuracy: make(map[string]*accuracyGame),
		touched:  make(map[string]time.Time),
	}
}

// StartReaction begins a reaction round and returns its id and the delay
// after which the box turns green.
func (s *Sandbox) StartReaction() (string, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := int((MaxDelay - MinDelay) / (100 * time.Millisecond))
	delay := MinDelay + time.Duration(s.rnd.Intn(steps+1))*100*time.Millisecond
	id := uuid.NewString()
	now := s.now()
	s.reaction[id] = &reactionGame{started: now, delay: delay}
	s.touched[id] = now
	tracer().Debugf("reaction %s: delay %v", id, delay)
	return id, delay
}

// ClickReaction ends a reaction round. Clicking before the delay has passed
// is too early.
func (s *Sandbox) ClickReaction(id string) (ReactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.reaction[id]
	if !ok {
		return ReactionResult{}, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	delete(s.reaction, id)
	delete(s.touched, id)
	elapsed := s.now().Sub(g.started)
	if elapsed < g.delay {
		return ReactionResult{TooEarly: true}, nil
	}
	return ReactionResult{Reaction: elapsed - g.delay}, nil
}

// StartAccuracy lays out a fresh set of targets and returns the first one.
func (s *Sandbox) StartAccuracy() (string, Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	targets := make([]Target, Targets)
	for i := range targets {
		targets[i] = Target{
			Left: 20 + s.rnd.Intn(71),
			Top:  10 + s.rnd.Intn(81),
			Size: 20 + s.rnd.Intn(31),
		}
	}
	id := uuid.NewString()
	now := s.now()
	s.accuracy[id] = &accuracyGame{started: now, targets: targets}
	s.touched[id] = now
	return id, targets[0]
}

// HitTarget registers a hit on the current target.
func (s *Sandbox) HitTarget(id string) (AccuracyStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.accuracy[id]
	if !ok {
		return AccuracyStep{}, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	if g.hits >= len(g.targets) {
		return AccuracyStep{}, ErrGameOver
	}
	g.hits++
	now := s.now()
	s.touched[id] = now
	step := AccuracyStep{Hits: g.hits}
	if g.hits < len(g.targets) {
		next := g.targets[g.hits]
		step.Next = &next
		return step, nil
	}
	step.Done = true
	step.Total = now.Sub(g.started)
	step.PerHitMs = float64(step.Total) / float64(time.Millisecond) / float64(g.hits)
	delete(s.accuracy, id)
	delete(s.touched, id)
	return step, nil
}

// Prune drops sessions idle for longer than SessionTTL and returns how many
// were removed.
func (s *Sandbox) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-SessionTTL)
	n := 0
	for id, t := range s.touched {
		if t.Before(cutoff) {
			delete(s.reaction, id)
			delete(s.accuracy, id)
			delete(s.touched, id)
			n++
		}
	}
	return n
}
