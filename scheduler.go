package coro

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// initialTableCap is the table's starting length, per spec.md §3.
const initialTableCap = 16

// Scheduler owns the coroutine table and the one-weighted semaphore that
// enforces "at most one context executes at a time." Fields are
// unexported; the methods on this type are the entire public contract
// (spec.md §6's opaque-handle goal, translated into Go's own
// unexported-fields idiom).
type Scheduler struct {
	table   []*coroutine
	cap     int
	nco     int
	running int

	// sem is acquired by Resume before activating a coroutine and released
	// by Yield or termination. Because it is 1-weighted, a coroutine that
	// calls Resume on another (or on itself) while it holds the semaphore
	// always fails TryAcquire — the nested-resumption non-goal is
	// therefore structural, not merely documented.
	sem *semaphore.Weighted

	logger zerolog.Logger

	allocStack func(size int) []byte
	freeStack  func([]byte)

	secureStacks bool

	// lastPanic records the panic value of a coroutine that died by
	// panicking rather than returning, keyed by handle, until that handle
	// is reused by a later New.
	lastPanic map[int]any

	closed bool
}

// Open allocates a scheduler with a 16-slot empty table and no coroutine
// running. It does not allocate any coroutine, per spec.md §4.1.
func Open(opts ...Option) *Scheduler {
	s := &Scheduler{
		table:      make([]*coroutine, initialTableCap),
		cap:        initialTableCap,
		running:    -1,
		sem:        semaphore.NewWeighted(1),
		logger:     zerolog.Nop(),
		allocStack: defaultAllocStack,
		freeStack:  defaultFreeStack,
		lastPanic:  make(map[int]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.secureStacks {
		alloc, free := s.allocStack, s.freeStack
		logger := s.logger
		s.allocStack = func(size int) []byte {
			buf := alloc(size)
			mlockBestEffort(buf, logger)
			return buf
		}
		s.freeStack = func(buf []byte) {
			munlockBestEffort(buf)
			free(buf)
		}
	}
	return s
}

// Close releases every live coroutine's save buffer and clears the table.
// It returns ErrSchedulerBusy instead of aborting when a coroutine is
// running (see DESIGN.md's Open Question resolution for why this is an
// error, not a panic, despite most other preconditions in this package
// aborting). Closing with live SUSPEND coroutines leaks their parked
// goroutines by design, per spec.md §5: there is no safe way to tear down
// a suspended coroutine's in-flight state.
func (s *Scheduler) Close() error {
	if s.running != -1 {
		return fmt.Errorf("%w", ErrSchedulerBusy)
	}
	for i, co := range s.table {
		if co == nil {
			continue
		}
		co.releaseStack(s.freeStack)
		s.table[i] = nil
	}
	s.nco = 0
	s.closed = true
	return nil
}

// New constructs a READY coroutine and inserts it into the table, scanning
// for an empty slot starting at nco mod cap when the table isn't full, or
// doubling the table and placing the record at the old capacity's index
// when it is. Creation never runs user code. Returns the chosen slot index
// as the coroutine's handle.
func (s *Scheduler) New(fn Func, ud any) int {
	co := newCoroutine(fn, ud)

	if s.nco < s.cap {
		for i := 0; i < s.cap; i++ {
			idx := (s.nco + i) % s.cap
			if s.table[idx] == nil {
				s.table[idx] = co
				s.nco++
				delete(s.lastPanic, idx)
				return idx
			}
		}
	}

	oldCap := s.cap
	newCap := oldCap * 2
	grown := make([]*coroutine, newCap)
	copy(grown, s.table)
	s.table = grown
	s.cap = newCap
	s.table[oldCap] = co
	s.nco++
	delete(s.lastPanic, oldCap)
	return oldCap
}

// Resume hands control to the coroutine identified by id. Preconditions:
// no coroutine is currently running, and id is within the table's current
// bounds. An empty slot (including one past the table's high-water mark
// but within cap) is a silent no-op, matching spec.md §7's handle-validity
// asymmetry between Resume and Status.
func (s *Scheduler) Resume(id int) {
	if id < 0 || id >= len(s.table) {
		return
	}
	co := s.table[id]
	if co == nil {
		return
	}

	if !s.sem.TryAcquire(1) {
		panic(fmt.Errorf("%w: handle %d", ErrAlreadyRunning, id))
	}

	switch co.loadStatus() {
	case StatusReady:
		s.running = id
		co.storeStatus(StatusRunning)
		go s.trampoline(id, co)
	case StatusSuspend:
		s.running = id
		co.storeStatus(StatusRunning)
		co.resumeCh <- struct{}{}
	default:
		s.sem.Release(1)
		panic(fmt.Errorf("%w: handle %d status %s", ErrNotResumable, id, co.loadStatus()))
	}

	<-co.yieldCh
}

// Status returns DEAD if the slot is empty or id is out of range on either
// side; otherwise the record's status. Like Resume, it never panics on an
// out-of-range id: Resume treats one as a no-op, Status reports it as DEAD.
func (s *Scheduler) Status(id int) Status {
	if id < 0 || id >= len(s.table) || s.table[id] == nil {
		return StatusDead
	}
	return s.table[id].loadStatus()
}

// Running returns the handle of the currently executing coroutine, or -1
// when the main context is executing.
func (s *Scheduler) Running() int {
	return s.running
}

// StackTrace returns the most recent call-stack snapshot captured from the
// coroutine identified by id, or nil if the slot is empty, out of range,
// or the coroutine has never yielded. The returned slice aliases internal
// storage and is only valid until the coroutine's next Yield or Resume.
func (s *Scheduler) StackTrace(id int) []byte {
	if id < 0 || id >= len(s.table) {
		return nil
	}
	co := s.table[id]
	if co == nil || co.stack == nil {
		return nil
	}
	return co.stack[:co.size]
}

// PanicValue returns the value a now-dead coroutine panicked with, if it
// died that way, and whether a record is still available for id. The
// record is retained only until id is reused by a later New.
func (s *Scheduler) PanicValue(id int) (v any, ok bool) {
	v, ok = s.lastPanic[id]
	return
}
