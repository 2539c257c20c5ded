package pace

import (
	"fmt"
	"net"
	"net/netip"
	"syscall"

	"github.com/pktpace/pace/pacediag"
	"github.com/pktpace/pace/paceopts"
	"golang.org/x/sys/unix"
)

type SocketDomain int

const (
	SocketDomainIPv4 SocketDomain = iota
	SocketDomainIPv6
	SocketDomainUnix
)

func (s SocketDomain) into() (int, error) {
	switch s {
	case SocketDomainIPv4:
		return syscall.AF_INET, nil
	case SocketDomainIPv6:
		return syscall.AF_INET6, nil
	case SocketDomainUnix:
		return syscall.AF_UNIX, nil
	}
	return -1, fmt.Errorf("(socket domain not supported)")
}

func SocketDomainFromIP(ip net.IP) SocketDomain {
	if ip.To4() != nil {
		return SocketDomainIPv4
	}
	return SocketDomainIPv6
}

func (s SocketDomain) String() string {
	switch s {
	case SocketDomainIPv4:
		return "ipv4"
	case SocketDomainIPv6:
		return "ipv6"
	case SocketDomainUnix:
		return "unix"
	}
	return "(unknown domain)"
}

type SocketType int

const (
	SocketTypeStream SocketType = iota
	SocketTypeDatagram
)

func (s SocketType) into() (int, error) {
	switch s {
	case SocketTypeStream:
		return syscall.SOCK_STREAM, nil
	case SocketTypeDatagram:
		return syscall.SOCK_DGRAM, nil
	}
	return -1, fmt.Errorf("(socket type not supported)")
}

func (s SocketType) String() string {
	switch s {
	case SocketTypeStream:
		return "stream"
	case SocketTypeDatagram:
		return "datagram"
	}
	return "(unknown type)"
}

// Socket is a blocking-by-default handle over a raw file descriptor. It
// carries the socket-level configuration the transfer and scheduled-send
// primitives rely on; the primitives themselves never create or configure
// sockets.
type Socket struct {
	domain     SocketDomain
	socketType SocketType
	fd         int
	rep        pacediag.Reporter

	boundInterface *net.Interface
}

func NewSocket(
	domain SocketDomain,
	socketType SocketType,
	opts ...paceopts.Option,
) (*Socket, error) {
	rawDomain, err := domain.into()
	if err != nil {
		return nil, err
	}
	rawType, err := socketType.into()
	if err != nil {
		return nil, err
	}

	fd, err := syscall.Socket(rawDomain, rawType, 0)
	if err != nil {
		return nil, err
	}

	s := &Socket{
		domain:     domain,
		socketType: socketType,
		fd:         fd,
		rep:        pacediag.Default(),
	}

	if err := s.applyOptions(opts...); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// AdoptFd wraps an already created and configured descriptor, for callers
// which do their own socket setup and only want the transfer primitives.
func AdoptFd(fd int, domain SocketDomain, socketType SocketType) *Socket {
	return &Socket{
		domain:     domain,
		socketType: socketType,
		fd:         fd,
		rep:        pacediag.Default(),
	}
}

// SetReporter redirects this socket's diagnostics.
func (s *Socket) SetReporter(rep pacediag.Reporter) {
	if rep == nil {
		rep = pacediag.Nop{}
	}
	s.rep = rep
}

func (s *Socket) applyOptions(opts ...paceopts.Option) error {
	for _, opt := range opts {
		var err error
		switch opt.Type() {
		case paceopts.TypeNonblocking:
			err = s.SetNonblocking(opt.Value().(bool))
		case paceopts.TypeReuseAddr:
			err = s.ReuseAddr(opt.Value().(bool))
		case paceopts.TypeReusePort:
			err = s.ReusePort(opt.Value().(bool))
		case paceopts.TypeNoDelay:
			err = s.SetNoDelay(opt.Value().(bool))
		case paceopts.TypeTOS:
			err = s.SetTOS(opt.Value().(int))
		case paceopts.TypeTxTime:
			v := opt.Value().(paceopts.TxTimeConfig)
			err = s.EnableTxTime(v.DeadlineMode, v.ReportErrors)
		default:
			err = fmt.Errorf("unsupported socket option %s", opt.Type())
		}
		if err != nil {
			return fmt.Errorf("apply option %s: %w", opt.Type(), err)
		}
	}
	return nil
}

func (s *Socket) SetNonblocking(nonblocking bool) error {
	return syscall.SetNonblock(s.fd, nonblocking)
}

func (s *Socket) IsNonblocking() (bool, error) {
	flags, err := unix.FcntlInt(uintptr(s.fd), unix.F_GETFL, 0)
	if err != nil {
		return false, err
	}
	return flags&unix.O_NONBLOCK != 0, nil
}

func (s *Socket) Bind(addrPort netip.AddrPort) error {
	sa, err := sockaddrOf(addrPort)
	if err != nil {
		return fmt.Errorf("cannot bind socket to addr=%s err=%v", addrPort, err)
	}
	return syscall.Bind(s.fd, sa)
}

func (s *Socket) Connect(addrPort netip.AddrPort) error {
	sa, err := sockaddrOf(addrPort)
	if err != nil {
		return fmt.Errorf("cannot connect socket to addr=%s err=%v", addrPort, err)
	}
	return syscall.Connect(s.fd, sa)
}

func (s *Socket) Listen(backlog int) error {
	return syscall.Listen(s.fd, backlog)
}

// Accept blocks for one inbound connection and returns it wrapped in a
// Socket inheriting this socket's reporter.
func (s *Socket) Accept() (*Socket, error) {
	fd, _, err := syscall.Accept(s.fd)
	if err != nil {
		return nil, err
	}
	c := AdoptFd(fd, s.domain, s.socketType)
	c.rep = s.rep
	return c, nil
}

func sockaddrOf(addrPort netip.AddrPort) (syscall.Sockaddr, error) {
	if addrPort.Addr().Is4() || addrPort.Addr().Is4In6() {
		return &syscall.SockaddrInet4{
			Port: int(addrPort.Port()),
			Addr: addrPort.Addr().As4(),
		}, nil
	} else if addrPort.Addr().Is6() {
		return &syscall.SockaddrInet6{
			Port: int(addrPort.Port()),
			Addr: addrPort.Addr().As16(),
		}, nil
	}
	return nil, fmt.Errorf("unsupported address %s", addrPort)
}

func (s *Socket) ReuseAddr(reuse bool) error {
	return syscall.SetsockoptInt(s.fd, syscall.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(reuse))
}

func (s *Socket) ReusePort(reuse bool) error {
	return syscall.SetsockoptInt(s.fd, syscall.SOL_SOCKET, unix.SO_REUSEPORT, boolToInt(reuse))
}

func (s *Socket) SetNoDelay(noDelay bool) error {
	if s.socketType != SocketTypeStream {
		return fmt.Errorf("NoDelay is a TCP specific socket option")
	}
	return syscall.SetsockoptInt(s.fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, boolToInt(noDelay))
}

// SetTOS sets the socket-wide Type-of-Service/DSCP byte. Per-packet tags
// go through SendScheduled/SendTagged instead.
func (s *Socket) SetTOS(tos int) error {
	if tos < 0 || tos > 255 {
		return fmt.Errorf("tos must be in [0, 255] but is %d", tos)
	}
	switch s.domain {
	case SocketDomainIPv4:
		return syscall.SetsockoptInt(s.fd, syscall.IPPROTO_IP, syscall.IP_TOS, tos)
	case SocketDomainIPv6:
		return syscall.SetsockoptInt(s.fd, syscall.IPPROTO_IPV6, unix.IPV6_TCLASS, tos)
	}
	return fmt.Errorf("cannot set tos on a %s socket", s.domain)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (s *Socket) LocalAddrPort() (netip.AddrPort, error) {
	sa, err := syscall.Getsockname(s.fd)
	if err != nil {
		return netip.AddrPort{}, err
	}
	switch sa := sa.(type) {
	case *syscall.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), nil
	case *syscall.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port)), nil
	}
	return netip.AddrPort{}, fmt.Errorf("cannot resolve local socket address")
}

func (s *Socket) Close() (err error) {
	if s.fd >= 0 {
		err = syscall.Close(s.fd)
		s.fd = -1
	}
	return err
}

func (s *Socket) BoundDevice() *net.Interface {
	return s.boundInterface
}

func (s *Socket) RawFd() int {
	return s.fd
}
