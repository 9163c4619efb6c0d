package coro_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcnova-go/coro"
)

// TestBasicInterleave is spec.md §8 scenario 1: two coroutines, each
// recording three times with a yield between records, interleaved by
// alternating Resume calls, must produce A1 B1 A2 B2 A3 B3 and leave the
// scheduler with no live coroutines.
func TestBasicInterleave(t *testing.T) {
	s := coro.Open()
	defer s.Close()

	var out []string
	record := func(tag string) { out = append(out, tag) }

	a := s.New(func(s *coro.Scheduler, ud any) {
		for i := 1; i <= 3; i++ {
			record("A" + itoa(i))
			if i < 3 {
				coro.Yield(s)
			}
		}
	}, nil)
	b := s.New(func(s *coro.Scheduler, ud any) {
		for i := 1; i <= 3; i++ {
			record("B" + itoa(i))
			if i < 3 {
				coro.Yield(s)
			}
		}
	}, nil)

	for i := 0; i < 3; i++ {
		s.Resume(a)
		s.Resume(b)
	}

	require.Equal(t, []string{"A1", "B1", "A2", "B2", "A3", "B3"}, out)
	assert.Equal(t, coro.StatusDead, s.Status(a))
	assert.Equal(t, coro.StatusDead, s.Status(b))
}

// TestStackDepthPreservation is spec.md §8 scenario 2: a coroutine that
// yields from 100 levels of recursion, with a sentinel array live on every
// frame, must resume with every sentinel intact.
func TestStackDepthPreservation(t *testing.T) {
	s := coro.Open()
	defer s.Close()

	const depth = 100
	seen := make([]bool, depth)

	var recurse func(s *coro.Scheduler, level int)
	recurse = func(s *coro.Scheduler, level int) {
		var sentinel [64]byte
		for i := range sentinel {
			sentinel[i] = byte(level)
		}
		if level == depth {
			coro.Yield(s)
			for i := range sentinel {
				require.Equal(t, byte(level), sentinel[i], "sentinel corrupted at level %d after resume", level)
			}
			seen[level-1] = true
			return
		}
		recurse(s, level+1)
		for i := range sentinel {
			require.Equal(t, byte(level), sentinel[i], "sentinel corrupted at level %d after unwind", level)
		}
		seen[level-1] = true
	}

	id := s.New(func(s *coro.Scheduler, ud any) {
		recurse(s, 1)
	}, nil)

	s.Resume(id)
	require.Equal(t, coro.StatusSuspend, s.Status(id))
	s.Resume(id)
	require.Equal(t, coro.StatusDead, s.Status(id))

	for level, ok := range seen {
		assert.Truef(t, ok, "level %d never observed its restored sentinel", level+1)
	}
}

// TestGrowthThenDrain is spec.md §8 scenario 3: 17 coroutines created
// without resuming any are all READY, and resuming each exactly once must
// leave every slot DEAD with no live coroutines. The table's growth from 16
// to 32 is not visible from this package; TestNewFillsTableSequentiallyThenGrows
// checks it.
func TestGrowthThenDrain(t *testing.T) {
	s := coro.Open()
	defer s.Close()

	var handles []int
	for i := 0; i < 17; i++ {
		handles = append(handles, s.New(func(s *coro.Scheduler, ud any) {}, nil))
	}
	for _, h := range handles {
		require.Equal(t, coro.StatusReady, s.Status(h))
	}

	for _, h := range handles {
		s.Resume(h)
	}
	for _, h := range handles {
		assert.Equal(t, coro.StatusDead, s.Status(h))
	}
}

// TestHandleReuse is spec.md §8 scenario 4: once a coroutine dies its handle
// is available for a later New.
func TestHandleReuse(t *testing.T) {
	s := coro.Open()
	defer s.Close()

	a := s.New(func(s *coro.Scheduler, ud any) {}, nil)
	s.Resume(a)
	require.Equal(t, coro.StatusDead, s.Status(a))

	b := s.New(func(s *coro.Scheduler, ud any) {}, nil)
	assert.Equal(t, a, b)
}

// TestSelfInterrogation is spec.md §8 scenario 5: a running coroutine sees
// itself as Running() and Status() == StatusRunning.
func TestSelfInterrogation(t *testing.T) {
	s := coro.Open()
	defer s.Close()

	var sawRunning, sawSelf bool
	var id int
	id = s.New(func(s *coro.Scheduler, ud any) {
		sawSelf = s.Running() == id
		sawRunning = s.Status(id) == coro.StatusRunning
	}, nil)

	s.Resume(id)
	assert.True(t, sawSelf, "Running() inside the coroutine did not report its own handle")
	assert.True(t, sawRunning, "Status() inside the coroutine did not report StatusRunning")
	assert.Equal(t, -1, s.Running(), "Running() after completion must report -1")
}

// TestConcurrentResumePanics exercises the nested-resumption / concurrent
// misuse guard from a second goroutine rather than from inside the
// coroutine itself, matching spec.md §5's "at most one context runs."
func TestConcurrentResumePanics(t *testing.T) {
	s := coro.Open()
	defer s.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	id := s.New(func(s *coro.Scheduler, ud any) {
		close(started)
		<-release
	}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Resume(id)
	}()

	<-started
	assert.Panics(t, func() { s.Resume(id) })
	close(release)
	wg.Wait()

	assert.Equal(t, coro.StatusDead, s.Status(id))
}

func itoa(i int) string {
	return string(rune('0' + i))
}
