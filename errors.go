package coro

import "errors"

// Sentinel errors. Precondition violations are surfaced as panics wrapping
// one of these; errors.Is/errors.As work on the recovered value the same
// way they would on a returned error. Close is the one operation spec.md
// phrases as "an error" rather than an abort, so it returns one instead of
// panicking.
var (
	// ErrAlreadyRunning is panicked by Resume when a coroutine is already
	// running, including the nested-resumption case (a running coroutine
	// calling Resume on another, or itself).
	ErrAlreadyRunning = errors.New("coro: a coroutine is already running")

	// ErrNotRunning is panicked by Yield when called outside any
	// coroutine's Func (running == -1).
	ErrNotRunning = errors.New("coro: yield called with no coroutine running")

	// ErrNotResumable is panicked by Resume when the target slot's status
	// is neither READY nor SUSPEND (i.e. it is somehow RUNNING, which can
	// only happen via concurrent misuse since the semaphore already
	// excludes it under correct single-caller use).
	ErrNotResumable = errors.New("coro: handle is not in a resumable state")

	// ErrSchedulerBusy is returned by Close when a coroutine is running.
	ErrSchedulerBusy = errors.New("coro: scheduler has a coroutine running")

	// ErrStackOverflow is panicked by Yield when a coroutine's captured
	// call stack still fills the STACK_SIZE-capped buffer, the
	// opportunistic analogue of spec.md's "assert live_size <= STACK_SIZE".
	ErrStackOverflow = errors.New("coro: coroutine call stack exceeds STACK_SIZE")
)
