package uevent

// MessageSize is the default receive buffer size. Datagrams that fill the
// buffer are discarded as truncated.
const MessageSize = 2048

// SocketBufferSize is the kernel receive buffer requested for the socket.
const SocketBufferSize = 64 * 1024

// KernelGroup is the netlink multicast group carrying kernel uevents.
const KernelGroup = 1

// MaxEpollEvents is the maximum events to retrieve per epoll_wait call.
const MaxEpollEvents = 4
