//go:build linux || darwin

package coro

import (
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// mlockBestEffort locks buf's pages into memory so a coroutine's captured
// stack-trace snapshot never reaches swap. Failure (commonly EPERM or
// ENOMEM under a tight RLIMIT_MEMLOCK) is logged and otherwise ignored,
// matching the pack's "ignore unprivileged-syscall failure, log and carry
// on" shape (see eventloop's wake-pipe setup).
func mlockBestEffort(buf []byte, log zerolog.Logger) bool {
	if len(buf) == 0 {
		return false
	}
	if err := unix.Mlock(buf); err != nil {
		log.Debug().Err(err).Int("bytes", len(buf)).Msg("coro: mlock of save buffer failed")
		return false
	}
	return true
}

// munlockBestEffort reverses mlockBestEffort. Errors are not actionable by
// the caller (the buffer is being freed regardless) so they are dropped.
func munlockBestEffort(buf []byte) {
	if len(buf) == 0 {
		return
	}
	_ = unix.Munlock(buf)
}
