package coro

import "github.com/rs/zerolog"

// Option configures a Scheduler at Open time.
type Option func(*Scheduler)

// WithLogger attaches a structured logger used for coroutine panics,
// save-buffer overflow in Yield, and (if WithSecureStacks is set) mlock
// failures. Save-buffer growth is not logged.
// The default is zerolog.Nop(), so an unconfigured Scheduler never writes
// anywhere.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithStackAllocator overrides how save buffers are allocated and freed.
// Both must be provided together; either being nil leaves the default
// sync.Pool-backed allocator in place. This is the "custom allocator hook"
// tests use to observe save-buffer reallocation directly.
func WithStackAllocator(alloc func(size int) []byte, free func([]byte)) Option {
	return func(s *Scheduler) {
		if alloc == nil || free == nil {
			return
		}
		s.allocStack = alloc
		s.freeStack = free
	}
}

// WithSecureStacks best-effort mlocks every save buffer so a coroutine's
// captured locals are never written to swap. No-op on platforms without a
// mlock/munlock syscall pair; failures (e.g. insufficient RLIMIT_MEMLOCK)
// are logged and otherwise ignored.
func WithSecureStacks() Option {
	return func(s *Scheduler) {
		s.secureStacks = true
	}
}
