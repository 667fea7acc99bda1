package statsd

import (
	"io"
	"net"
)

// Transport writes one datagram per Write call to the destination it was opened for.
type Transport interface {
	io.WriteCloser
}

// Resolver turns a "host:port" address into a UDP destination.
type Resolver func(address string) (*net.UDPAddr, error)

// Dialer opens a Transport bound to a resolved destination.
type Dialer func(raddr *net.UDPAddr) (Transport, error)

func resolveUDP(address string) (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", address)
}

func dialUDP(raddr *net.UDPAddr) (Transport, error) {
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
