//go:build !linux && !darwin

package coro

import "github.com/rs/zerolog"

// mlockBestEffort is a no-op on platforms with no mlock/munlock pair wired
// up; WithSecureStacks becomes a documented no-op there instead of a build
// failure.
func mlockBestEffort(buf []byte, log zerolog.Logger) bool {
	return false
}

func munlockBestEffort(buf []byte) {}
