package coro

import "fmt"

// Yield suspends the currently running coroutine and returns control to
// whichever Resume call is in flight. It is legal only from inside a
// running coroutine's Func; calling it with no coroutine running panics
// with ErrNotRunning.
//
// Yield is a package-level function, not a method, matching spec.md's
// yield(S) signature: the yielding coroutine is always the implicit
// current one (S.running), never an explicit argument.
func Yield(s *Scheduler) {
	id := s.running
	if id < 0 {
		panic(fmt.Errorf("%w", ErrNotRunning))
	}
	co := s.table[id]

	if !co.captureStack(s.allocStack, s.freeStack) {
		s.logger.Error().Int("handle", id).Msg("coro: coroutine call stack exceeds STACK_SIZE")
		panic(fmt.Errorf("%w: handle %d", ErrStackOverflow, id))
	}

	co.storeStatus(StatusSuspend)
	s.running = -1
	s.sem.Release(1)

	co.yieldCh <- struct{}{}
	<-co.resumeCh
}

// trampoline is the goroutine body Resume launches the first time a READY
// coroutine is activated. It plays the role spec.md §4.4 assigns the C
// trampoline: invoke the user function, then tear the coroutine down on
// return. A panicking Func is treated as coroutine termination rather than
// crashing the scheduler, an explicit improvement over the source
// library's undefined behavior on this path — see SPEC_FULL.md §4.4.
func (s *Scheduler) trampoline(id int, co *coroutine) {
	defer func() {
		if r := recover(); r != nil {
			co.panicValue = r
			co.hasPanic = true
			s.logger.Error().
				Interface("panic", r).
				Int("handle", id).
				Msg("coro: coroutine terminated by panic")
		}
		s.terminate(id, co)
	}()
	co.fn(s, co.ud)
}

// terminate releases a coroutine's save buffer, clears its table slot,
// and returns the scheduler to the main context. It runs on the
// coroutine's own (about-to-exit) goroutine, at the top of the resume
// frame Resume is blocked waiting on — see DESIGN.md's note on the Open
// Question this ordering resolves.
func (s *Scheduler) terminate(id int, co *coroutine) {
	if co.hasPanic {
		s.lastPanic[id] = co.panicValue
	} else {
		delete(s.lastPanic, id)
	}
	co.releaseStack(s.freeStack)
	s.table[id] = nil
	s.nco--
	s.running = -1
	s.sem.Release(1)
	close(co.yieldCh)
}
