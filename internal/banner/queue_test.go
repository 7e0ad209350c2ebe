package banner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueBackInsertWaitsBehindFront(t *testing.T) {
	q, loop, surface := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	require.True(t, a.IsDisplaying())

	b.Show(QueueBack, EdgeTop, nil)
	assert.Equal(t, StateQueued, b.State())
	assert.False(t, surface.isAttached(b))
	assert.Equal(t, 2, q.Len())
	assert.Same(t, a, q.Front())
}

func TestQueueFifoDrain(t *testing.T) {
	q, loop, _ := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())
	c := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)
	c.Show(QueueBack, EdgeTop, nil)
	require.Equal(t, 3, q.Len())

	a.Dismiss()
	loop.advance(time.Second)
	assert.Equal(t, 2, q.Len())
	assert.True(t, b.IsDisplaying())

	b.Dismiss()
	loop.advance(time.Second)
	assert.Equal(t, 1, q.Len())
	assert.True(t, c.IsDisplaying())

	c.Dismiss()
	loop.advance(time.Second)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Front())
}

func TestQueueFrontInsertionsUnwindInReverse(t *testing.T) {
	q, loop, _ := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())
	c := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueFront, EdgeTop, nil)
	loop.advance(settle)
	c.Show(QueueFront, EdgeTop, nil)
	loop.advance(settle)

	require.True(t, c.IsDisplaying())
	assert.True(t, a.IsSuspended())
	assert.True(t, b.IsSuspended())
	assertExclusiveFlags(t, a, b, c)

	c.Dismiss()
	loop.advance(time.Second)
	assert.True(t, b.IsDisplaying())
	assert.True(t, a.IsSuspended())
	assertExclusiveFlags(t, a, b, c)

	b.Dismiss()
	loop.advance(time.Second)
	assert.True(t, a.IsDisplaying())
	assertExclusiveFlags(t, a, b, c)
}

func TestQueueAdvanceReportsEmptiness(t *testing.T) {
	q, loop, _ := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)

	var flags []bool
	q.Advance(func(empty bool) { flags = append(flags, empty) })
	q.Advance(func(empty bool) { flags = append(flags, empty) })
	q.Advance(func(empty bool) { flags = append(flags, empty) })

	assert.Equal(t, []bool{false, true, true}, flags, "callback runs on every advance, empty or not")
	assert.Equal(t, 0, q.Len())
}

func TestQueueEnqueueGuards(t *testing.T) {
	q, loop, _ := newTestQueue()

	q.Enqueue(nil, QueueBack)
	assert.Equal(t, 0, q.Len())

	// A banner that never went through Show has no frame yet.
	orphan := New(q, testConfig())
	q.Enqueue(orphan, QueueBack)
	assert.Equal(t, 0, q.Len())

	b := New(q, testConfig())
	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	q.Enqueue(b, QueueBack)
	assert.Equal(t, 1, q.Len(), "re-enqueueing a tracked banner is ignored")
}

func TestQueueRemoveDoesNotAdvance(t *testing.T) {
	q, loop, surface := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)

	q.Remove(b)
	assert.Equal(t, 1, q.Len())
	assert.False(t, q.Contains(b))
	assert.True(t, a.IsDisplaying())
	assert.False(t, surface.isAttached(b))
}

func TestQueueContains(t *testing.T) {
	q, loop, _ := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	assert.True(t, q.Contains(a))
	assert.False(t, q.Contains(b))
	assert.False(t, q.Contains(nil))

	loop.advance(settle)
	a.Dismiss()
	loop.advance(settle)
	assert.False(t, q.Contains(a))
}

func TestQueueDismissAll(t *testing.T) {
	q, loop, surface := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())
	c := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)
	c.Show(QueueFront, EdgeTop, nil)
	loop.advance(settle)
	require.True(t, c.IsDisplaying())

	q.DismissAll()
	loop.advance(time.Second)

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, StateRemoved, a.State())
	assert.Equal(t, StateRemoved, b.State())
	assert.Equal(t, StateRemoved, c.State())
	assert.Empty(t, surface.attached)

	hidden, ok := surface.lastChrome()
	require.True(t, ok)
	assert.False(t, hidden)
}

func TestQueueAtMostOneBannerAttached(t *testing.T) {
	q, loop, surface := newTestQueue()
	banners := []*Banner{
		New(q, testConfig()),
		New(q, testConfig()),
		New(q, testConfig()),
		New(q, testConfig()),
	}

	positions := []QueuePosition{QueueBack, QueueFront, QueueBack, QueueFront}
	for i, b := range banners {
		b.Show(positions[i], EdgeTop, nil)
		assert.LessOrEqual(t, len(surface.attached), 1, "after show %d", i)
		loop.advance(50 * time.Millisecond)
		assert.LessOrEqual(t, len(surface.attached), 1, "mid-animation %d", i)
		assertExclusiveFlags(t, banners...)
	}

	loop.advance(settle)
	assert.LessOrEqual(t, len(surface.attached), 1)
	assertExclusiveFlags(t, banners...)
}

func TestQueuePositionString(t *testing.T) {
	assert.Equal(t, "back", QueueBack.String())
	assert.Equal(t, "front", QueueFront.String())
}
