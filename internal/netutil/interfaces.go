// Package netutil is the network substrate: per-interface multicast
// listen/send sockets, interface enumeration, wireless detection, and
// an OS-specific watcher for IPv4 address changes. Apart from the Linux
// WaitForIPAddrChange, which re-dials its netlink socket after a 30 s
// back-off, nothing in this package retries on failure — callers decide
// whether an error is fatal, logged-and-skipped, or worth a reconnect
// back-off.
package netutil

import (
	"fmt"
	"net"
)

// Interface describes one local network interface, as enumerated for
// the locator and for outbound multicast sends.
type Interface struct {
	Name     string
	Index    int
	V4Addr   net.IP // zero value if the interface currently has no IPv4 address
	Loopback bool
	Wireless bool
}

// HasV4 reports whether the interface currently has a usable IPv4 address.
func (i Interface) HasV4() bool { return i.V4Addr != nil && !i.V4Addr.IsUnspecified() }

// EnumerateInterfaces lists the local network interfaces that are up and
// whose addresses can be read, with their current IPv4 address (if any)
// and wireless classification. Loopback
// interfaces are included; callers filter per spec §4.B (skip loopback
// unless a specific interface is forced).
func EnumerateInterfaces() ([]Interface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}

	out := make([]Interface, 0, len(ifs))
	for _, ifi := range ifs {
		if ifi.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		var v4 net.IP
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				v4 = ip4
				break
			}
		}
		out = append(out, Interface{
			Name:     ifi.Name,
			Index:    ifi.Index,
			V4Addr:   v4,
			Loopback: ifi.Flags&net.FlagLoopback != 0,
			Wireless: isWirelessInterface(ifi.Name),
		})
	}
	return out, nil
}

// FindInterface returns the named interface, or an error distinguishing
// "not present at all" from "present but no IPv4 address" per spec §4.B.
func FindInterface(name string) (Interface, error) {
	ifs, err := EnumerateInterfaces()
	if err != nil {
		return Interface{}, err
	}
	for _, ifi := range ifs {
		if ifi.Name == name {
			if !ifi.HasV4() {
				return Interface{}, ErrInterfaceNoV4
			}
			return ifi, nil
		}
	}
	return Interface{}, ErrInterfaceNotFound
}
