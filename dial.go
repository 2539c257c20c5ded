package pace

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/pktpace/pace/paceopts"
)

const defaultBacklog = 128

func socketTypeOf(network string) (SocketType, error) {
	switch {
	case strings.HasPrefix(network, "tcp"):
		return SocketTypeStream, nil
	case strings.HasPrefix(network, "udp"):
		return SocketTypeDatagram, nil
	}
	return 0, fmt.Errorf("invalid network %s, must be tcp or udp", network)
}

func resolveAddr(network, addr string) (netip.AddrPort, SocketType, error) {
	socketType, err := socketTypeOf(network)
	if err != nil {
		return netip.AddrPort{}, 0, err
	}

	var (
		ip   net.IP
		port int
	)
	if socketType == SocketTypeStream {
		resolved, err := net.ResolveTCPAddr(network, addr)
		if err != nil {
			return netip.AddrPort{}, 0, fmt.Errorf("could not resolve addr=%s err=%v", addr, err)
		}
		ip, port = resolved.IP, resolved.Port
	} else {
		resolved, err := net.ResolveUDPAddr(network, addr)
		if err != nil {
			return netip.AddrPort{}, 0, fmt.Errorf("could not resolve addr=%s err=%v", addr, err)
		}
		ip, port = resolved.IP, resolved.Port
	}
	if ip == nil {
		ip = net.IPv4zero
	}

	parsed, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.AddrPort{}, 0, fmt.Errorf("could not parse addr=%s", addr)
	}
	return netip.AddrPortFrom(parsed.Unmap(), uint16(port)), socketType, nil
}

// Dial creates a connected blocking Socket. For udp networks the
// connection only fixes the peer address, as usual.
func Dial(network, addr string, opts ...paceopts.Option) (*Socket, error) {
	addrPort, socketType, err := resolveAddr(network, addr)
	if err != nil {
		return nil, err
	}

	s, err := NewSocket(SocketDomainFromIP(addrPort.Addr().AsSlice()), socketType, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(addrPort); err != nil {
		s.Close()
		return nil, fmt.Errorf("could not connect to addr=%s err=%w", addr, err)
	}
	return s, nil
}

// Listen creates a bound, listening stream Socket.
func Listen(network, addr string, opts ...paceopts.Option) (*Socket, error) {
	addrPort, socketType, err := resolveAddr(network, addr)
	if err != nil {
		return nil, err
	}
	if socketType != SocketTypeStream {
		return nil, fmt.Errorf("can only listen on stream networks, not %s", network)
	}

	s, err := bind(addrPort, socketType, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Listen(defaultBacklog); err != nil {
		s.Close()
		return nil, fmt.Errorf("could not listen on addr=%s err=%w", addr, err)
	}
	return s, nil
}

// ListenPacket creates a bound datagram Socket.
func ListenPacket(network, addr string, opts ...paceopts.Option) (*Socket, error) {
	addrPort, socketType, err := resolveAddr(network, addr)
	if err != nil {
		return nil, err
	}
	if socketType != SocketTypeDatagram {
		return nil, fmt.Errorf("can only listen for packets on udp networks, not %s", network)
	}
	return bind(addrPort, socketType, opts...)
}

func bind(addrPort netip.AddrPort, socketType SocketType, opts ...paceopts.Option) (*Socket, error) {
	s, err := NewSocket(SocketDomainFromIP(addrPort.Addr().AsSlice()), socketType, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Bind(addrPort); err != nil {
		s.Close()
		return nil, fmt.Errorf("could not bind to addr=%s err=%w", addrPort, err)
	}
	return s, nil
}
