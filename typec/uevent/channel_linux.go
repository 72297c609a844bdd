//go:build linux

package uevent

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ardnew/typecd/pkg"
)

// Channel receives uevent datagrams from a datagram socket.
type Channel struct {
	fd         int
	poll       *poller
	buf        []byte
	kernelOnly bool // drop datagrams not sent by the kernel

	mu     sync.Mutex // guards closed against Interrupt/Close races
	closed bool
}

// Open creates a channel bound to the kernel uevent multicast group.
// size is the receive buffer size; zero selects [MessageSize].
func Open(size int) (*Channel, error) {
	fd, err := unix.Socket(
		unix.AF_NETLINK,
		unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK,
		unix.NETLINK_KOBJECT_UEVENT,
	)
	if err != nil {
		return nil, fmt.Errorf("uevent socket: %w", err)
	}

	// SO_RCVBUFFORCE needs CAP_NET_ADMIN; fall back to the capped option.
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, SocketBufferSize); err != nil {
		unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, SocketBufferSize)
	}

	addr := unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: KernelGroup,
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uevent bind: %w", err)
	}

	c, err := newChannel(fd, size, true)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	pkg.LogDebug(pkg.ComponentUevent, "uevent channel opened", "fd", fd)
	return c, nil
}

// newChannel wraps an already-open non-blocking datagram socket.
func newChannel(fd, size int, kernelOnly bool) (*Channel, error) {
	if size <= 0 {
		size = MessageSize
	}
	p, err := newPoller()
	if err != nil {
		return nil, fmt.Errorf("uevent poller: %w", err)
	}
	if err := p.add(fd); err != nil {
		p.close()
		return nil, fmt.Errorf("uevent poller: %w", err)
	}
	return &Channel{
		fd:         fd,
		poll:       p,
		buf:        make([]byte, size),
		kernelOnly: kernelOnly,
	}, nil
}

// Receive blocks until a datagram arrives and returns a copy of it.
//
// It returns [pkg.ErrInterrupted] when woken by [Channel.Interrupt],
// [pkg.ErrOverflow] for a datagram that filled the buffer and
// [pkg.ErrForeignSender] for a datagram not sent by the kernel. The channel
// stays usable after any of these and after socket read errors. A failed
// readiness wait wraps [pkg.ErrWaitFailed] and is not recoverable.
func (c *Channel) Receive() ([]byte, error) {
	for {
		ready, woken, err := c.poll.wait()
		if err != nil {
			return nil, fmt.Errorf("uevent: %w: %w", pkg.ErrWaitFailed, err)
		}
		if woken {
			return nil, pkg.ErrInterrupted
		}
		if len(ready) == 0 {
			continue
		}

		data, err := c.recv()
		if err == unix.EAGAIN {
			continue
		}
		return data, err
	}
}

func (c *Channel) recv() ([]byte, error) {
	var n int
	if c.kernelOnly {
		var from unix.Sockaddr
		var err error
		n, from, err = unix.Recvfrom(c.fd, c.buf, 0)
		if err != nil {
			return nil, err
		}
		if nl, ok := from.(*unix.SockaddrNetlink); !ok || nl.Pid != 0 {
			return nil, pkg.ErrForeignSender
		}
	} else {
		var err error
		n, err = unix.Read(c.fd, c.buf)
		if err != nil {
			return nil, err
		}
	}

	if n >= len(c.buf) {
		return nil, fmt.Errorf("%w: %d bytes", pkg.ErrOverflow, n)
	}
	data := make([]byte, n)
	copy(data, c.buf[:n])
	return data, nil
}

// Interrupt wakes a blocked [Channel.Receive]. If no receive is in
// progress, the next one returns immediately.
func (c *Channel) Interrupt() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return pkg.ErrClosed
	}
	return c.poll.wake()
}

// Close releases the socket and poller. It must not race an in-progress
// [Channel.Receive].
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.poll.close()
	return unix.Close(c.fd)
}
