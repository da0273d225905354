//go:build linux

package diskcache

import (
	"os"

	"golang.org/x/sys/unix"
)

// tryReflink attempts a copy-on-write clone via the FICLONE ioctl, which
// succeeds only on filesystems that support it (btrfs, xfs with reflink,
// some overlayfs configurations) and when src/dest share the same
// filesystem. Any failure is expected and non-fatal: the caller falls back
// to a symlink or plain copy.
func tryReflink(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	return unix.IoctlFileClone(int(out.Fd()), int(in.Fd()))
}
