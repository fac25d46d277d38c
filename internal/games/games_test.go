package games

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropChance(t *testing.T) {
	assert.InDelta(t, 0, DropChance(0, 10), 1e-12)
	assert.InDelta(t, 100, DropChance(100, 1), 1e-12)
	assert.InDelta(t, 75, DropChance(50, 2), 1e-12)
	assert.InDelta(t, 0, DropChance(50, 0), 1e-12)

	msg, err := DropChanceMessage(10, 1)
	require.NoError(t, err)
	assert.Equal(t, "There is a 10.0% chance that you will receive the 10% drop at least once in 1 try.", msg)
	msg, err = DropChanceMessage(1, 100)
	require.NoError(t, err)
	assert.Equal(t, "There is a 63.4% chance that you will receive the 1% drop at least once in 100 tries.", msg)
	_, err = DropChanceMessage(101, 1)
	assert.Error(t, err)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestReactionGame(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSandbox(rand.New(rand.NewSource(1)), clock.now)
	for i := 0; i < 50; i++ {
		_, d := s.StartReaction()
		assert.GreaterOrEqual(t, d, MinDelay)
		assert.LessOrEqual(t, d, MaxDelay)
		assert.Zero(t, d%(100*time.Millisecond))
	}

	id, delay := s.StartReaction()
	clock.advance(delay + 250*time.Millisecond)
	res, err := s.ClickReaction(id)
	require.NoError(t, err)
	assert.False(t, res.TooEarly)
	assert.InDelta(t, 250, res.Millis(), 1e-9)

	id, delay = s.StartReaction()
	clock.advance(delay - time.Millisecond)
	res, err = s.ClickReaction(id)
	require.NoError(t, err)
	assert.True(t, res.TooEarly)

	_, err = s.ClickReaction(id)
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestAccuracyGame(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSandbox(rand.New(rand.NewSource(7)), clock.now)
	id, first := s.StartAccuracy()
	assert.True(t, first.Left >= 20 && first.Left <= 90)
	assert.True(t, first.Top >= 10 && first.Top <= 90)
	assert.True(t, first.Size >= 20 && first.Size <= 50)

	var step AccuracyStep
	var err error
	for i := 1; i <= Targets; i++ {
		clock.advance(500 * time.Millisecond)
		step, err = s.HitTarget(id)
		require.NoError(t, err)
		assert.Equal(t, i, step.Hits)
		if i < Targets {
			require.NotNil(t, step.Next)
			assert.False(t, step.Done)
		}
	}
	assert.True(t, step.Done)
	assert.Nil(t, step.Next)
	assert.Equal(t, 5*time.Second, step.Total)
	assert.InDelta(t, 500, step.PerHitMs, 1e-9)
	_, err = s.HitTarget(id)
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestPrune(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSandbox(nil, clock.now)
	s.StartReaction()
	id, _ := s.StartAccuracy()
	clock.advance(SessionTTL / 2)
	_, err := s.HitTarget(id)
	require.NoError(t, err)
	clock.advance(SessionTTL/2 + time.Second)
	assert.Equal(t, 1, s.Prune())
	_, err = s.HitTarget(id)
	assert.NoError(t, err)
}
