package sidecar

import (
	"errors"
	"os"
	"time"

	"github.com/corey/lastwatched/internal/ports"
)

// errWouldBlock is returned by tryLock when another handle holds a
// conflicting lock.
var errWouldBlock = errors.New("ledger locked by another handle")

// Backoff bounds for lock polling.
const (
	lockPollMin = 2 * time.Millisecond
	lockPollMax = 50 * time.Millisecond
)

// acquire polls tryLock with doubling backoff until it succeeds or timeout
// elapses. Fails with ports.ErrLockTimeout on contention past the deadline.
func acquire(f *os.File, exclusive bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	wait := lockPollMin
	for {
		err := tryLock(f, exclusive)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errWouldBlock) {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ports.ErrLockTimeout
		}
		if wait > remaining {
			wait = remaining
		}
		time.Sleep(wait)
		if wait < lockPollMax {
			wait *= 2
		}
	}
}
