//go:build !unix

package network

// Socket options other than no-delay and keep-alive are only supported
// on unix platforms.
func (t TCPSettings) control(fd uintptr) error {
	return nil
}
