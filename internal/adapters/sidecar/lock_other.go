//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package sidecar

import "os"

// No advisory locking on this platform; operations are unserialized.
func tryLock(*os.File, bool) error { return nil }

func unlock(*os.File) error { return nil }
