//go:build darwin

package sidecar

import "golang.org/x/sys/unix"

// hide sets UF_HIDDEN so Finder skips the ledger even with dotfiles shown.
func hide(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return err
	}
	if st.Flags&unix.UF_HIDDEN != 0 {
		return nil
	}
	return unix.Chflags(path, int(st.Flags|unix.UF_HIDDEN))
}
