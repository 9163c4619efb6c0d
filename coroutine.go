package coro

import (
	"runtime"
	"sync"
	"sync/atomic"
)

const (
	// stackSize is STACK_SIZE from spec.md: the conceptual shared-stack
	// budget. Here it is the hard ceiling a coroutine's captured
	// call-stack snapshot may grow to before Yield treats the coroutine
	// as having overflowed it.
	stackSize = 1 << 20 // 1 MiB

	// initialStackCap seeds save-buffer growth, matching the seed
	// runtime/debug.Stack itself uses before doubling.
	initialStackCap = 1 << 10 // 1 KiB
)

// defaultStackPool recycles save buffers, mirroring the teacher's
// sync.Pool-of-nodes idiom (see thread_parker.go's nodePool) applied to
// byte slices instead of linked-list nodes.
var defaultStackPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, initialStackCap)
		return &buf
	},
}

func defaultAllocStack(size int) []byte {
	bufp := defaultStackPool.Get().(*[]byte)
	buf := *bufp
	if cap(buf) < size {
		buf = make([]byte, size)
	} else {
		buf = buf[:size]
	}
	return buf
}

func defaultFreeStack(buf []byte) {
	b := buf[:0]
	defaultStackPool.Put(&b)
}

// Func is the body of a coroutine. It receives the owning scheduler (so it
// can call Yield) and the opaque user-data pointer it was created with.
type Func func(s *Scheduler, ud any)

// coroutine is one slot's record: the user function and argument, the
// handoff channels that realize the context-switch primitive, the atomic
// status, and the save buffer (a real stack-trace snapshot, not a raw
// memory copy; see SPEC_FULL.md §1.1).
type coroutine struct {
	fn Func
	ud any

	status int32 // atomic Status

	// resumeCh wakes a parked coroutine; yieldCh hands control back to
	// whichever Resume call is in flight. Exactly one side of each is ever
	// blocked at a time, mirroring the teacher's ThreadParker invariant of
	// one parked goroutine, one waking goroutine.
	resumeCh chan struct{}
	yieldCh  chan struct{}

	stack []byte
	cap   int
	size  int

	panicValue any
	hasPanic   bool
}

func newCoroutine(fn Func, ud any) *coroutine {
	return &coroutine{
		fn:       fn,
		ud:       ud,
		status:   int32(StatusReady),
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
	}
}

func (c *coroutine) loadStatus() Status {
	return Status(atomic.LoadInt32(&c.status))
}

func (c *coroutine) storeStatus(s Status) {
	atomic.StoreInt32(&c.status, int32(s))
}

// captureStack snapshots the calling goroutine's current call stack into
// c.stack, growing by doubling (reusing the existing buffer when it
// already fits) until the snapshot is no longer truncated or the
// STACK_SIZE ceiling is reached. Returns false on overflow, mirroring
// spec.md's "assert live_size <= STACK_SIZE" in Yield.
func (c *coroutine) captureStack(alloc func(int) []byte, free func([]byte)) bool {
	buf := c.stack
	if buf == nil {
		buf = alloc(initialStackCap)
	}
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			c.stack, c.cap, c.size = buf, cap(buf), n
			return true
		}
		oldCap := cap(buf)
		if oldCap >= stackSize {
			free(buf)
			c.stack, c.cap, c.size = nil, 0, 0
			return false
		}
		newCap := oldCap * 2
		if newCap > stackSize {
			newCap = stackSize
		}
		free(buf)
		buf = alloc(newCap)
	}
}

func (c *coroutine) releaseStack(free func([]byte)) {
	if c.stack != nil {
		free(c.stack)
	}
	c.stack, c.cap, c.size = nil, 0, 0
}
