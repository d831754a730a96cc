//go:build unix

package network

import "golang.org/x/sys/unix"

func (t TCPSettings) control(fd uintptr) error {
	if t.ReuseAddress {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			return err
		}
	}
	if t.SendBufferSize > 0 {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, int(t.SendBufferSize)); err != nil {
			return err
		}
	}
	if t.ReceiveBufferSize > 0 {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, int(t.ReceiveBufferSize)); err != nil {
			return err
		}
	}

	return nil
}
