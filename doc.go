// Package coro implements a single-threaded, asymmetric coroutine
// scheduler: a host creates many lightweight coroutines that
// voluntarily yield control back to the caller and are resumed later from
// the point of suspension.
//
// Unlike the C library this runtime's contract is modeled on, coroutines
// here are backed by real goroutines rather than a hand-rolled machine
// context swapped over one shared memory stack — Go's own goroutine
// stacks already are the per-coroutine stacks, grown and relocated safely
// by the runtime, which is the thing the C version has to fake with a
// fixed-size buffer and raw memcpy. What this package adds on top is the
// part a bare goroutine+channel doesn't give you for free: a handle table
// addressed by stable integer handles with reuse-on-death, an explicit
// four-state status machine (DEAD/READY/RUNNING/SUSPEND), and a hard
// single-active-context invariant enforced even across misuse from
// multiple goroutines.
//
// Known limitations, matching the spec this implements:
//
//  1. Cooperative only — there is no preemption.
//  2. A Scheduler is not safe to call into from more than one OS thread
//     without external synchronization around Resume/Close/New; the
//     concurrency-misuse guard turns a second concurrent Resume into a
//     panic rather than corruption, but does not make the scheduler
//     itself thread-safe.
//  3. A coroutine may not resume another — Resume of an occupied slot
//     panics when called while the semaphore it acquires is already held
//     (an empty or out-of-range handle is still a silent no-op).
package coro
