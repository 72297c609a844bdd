//go:build linux

package uevent

import (
	"golang.org/x/sys/unix"
)

// poller multiplexes a set of descriptors with an eventfd used to wake a
// blocked wait.
type poller struct {
	epfd   int // epoll file descriptor
	wakefd int // eventfd for waking the poller
	events [MaxEpollEvents]unix.EpollEvent
}

// newPoller creates a poller with its wake descriptor registered.
func newPoller() (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}

	p := &poller{epfd: epfd, wakefd: wakefd}
	if err := p.add(wakefd); err != nil {
		p.close()
		return nil, err
	}
	return p, nil
}

// add registers fd for readability.
func (p *poller) add(fd int) error {
	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &event)
}

// wake makes a blocked or future wait return woken.
func (p *poller) wake() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(p.wakefd, buf[:])
	return err
}

// wait blocks until a registered descriptor is readable or the poller is
// woken. It reports the readable descriptors and whether a wake occurred.
func (p *poller) wait() (ready []int, woken bool, err error) {
	for {
		n, err := unix.EpollWait(p.epfd, p.events[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, false, err
		}

		for i := 0; i < n; i++ {
			fd := int(p.events[i].Fd)
			if fd == p.wakefd {
				// Drain the eventfd
				var buf [8]byte
				unix.Read(p.wakefd, buf[:])
				woken = true
				continue
			}
			ready = append(ready, fd)
		}
		return ready, woken, nil
	}
}

// close releases the epoll and eventfd descriptors.
func (p *poller) close() error {
	if p.wakefd >= 0 {
		unix.Close(p.wakefd)
		p.wakefd = -1
	}
	if p.epfd >= 0 {
		unix.Close(p.epfd)
		p.epfd = -1
	}
	return nil
}
