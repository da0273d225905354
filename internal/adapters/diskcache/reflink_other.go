//go:build !linux

package diskcache

import "errors"

// tryReflink is unsupported outside Linux; the caller falls back to a
// symlink or plain copy.
func tryReflink(_, _ string) error {
	return errors.New("reflink not supported on this platform")
}
