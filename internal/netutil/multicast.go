package netutil

import (
	"context"
	"fmt"
	"net"
	"runtime"

	"golang.org/x/net/ipv4"
)

// CreateUDPMulticastListen joins group on nic and returns a bound UDP
// socket with SO_REUSEADDR set. On Unix the bind address is the group
// itself; on Windows it is the wildcard address. The per-platform
// socket options live in reuseaddr.go.
func CreateUDPMulticastListen(group *net.UDPAddr, nic Interface) (*net.UDPConn, error) {
	lc := reuseAddrListenConfig()

	bindAddr := group.String()
	if runtime.GOOS == "windows" {
		bindAddr = fmt.Sprintf(":%d", group.Port)
	}
	pc, err := lc.ListenPacket(context.Background(), "udp4", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("listen multicast %s on %s: %w", group, nic.Name, err)
	}
	conn := pc.(*net.UDPConn)

	ifi, err := net.InterfaceByName(nic.Name)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("resolve interface %s: %w", nic.Name, err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.JoinGroup(ifi, &net.UDPAddr{IP: group.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join group %s on %s: %w", group.IP, nic.Name, err)
	}

	return conn, nil
}

// CreateMulticastSend returns an unconnected UDP socket whose outbound
// multicast traffic is pinned to nic, with TTL 1 (multicast must not
// leave the local network segment).
func CreateMulticastSend(group *net.UDPAddr, nic Interface) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: nic.V4Addr, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("create send socket on %s: %w", nic.Name, err)
	}

	ifi, err := net.InterfaceByName(nic.Name)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("resolve interface %s: %w", nic.Name, err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetMulticastInterface(ifi); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast interface %s: %w", nic.Name, err)
	}
	if err := pconn.SetMulticastTTL(1); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast TTL on %s: %w", nic.Name, err)
	}

	return conn, nil
}

// CreateUDPListen creates a broadcast/unicast listen socket on addr,
// bound to nic's address family, with SO_REUSEADDR applied when reuse
// is true (needed when multiple brands share a listen port on the same
// interface).
func CreateUDPListen(addr *net.UDPAddr, nic Interface, reuse bool) (*net.UDPConn, error) {
	if !reuse {
		conn, err := net.ListenUDP("udp4", addr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		return conn, nil
	}

	lc := reuseAddrListenConfig()
	pc, err := lc.ListenPacket(context.Background(), "udp4", addr.String())
	if err != nil {
		return nil, fmt.Errorf("listen (reuse) %s: %w", addr, err)
	}
	return pc.(*net.UDPConn), nil
}
