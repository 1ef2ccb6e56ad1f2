//go:build windows

package netutil

import "net"

// reuseAddrListenConfig on Windows binds to the wildcard address per
// spec §4.A; SO_REUSEADDR has different (unsafe) semantics on Windows
// so it is intentionally not set here.
func reuseAddrListenConfig() net.ListenConfig {
	return net.ListenConfig{}
}
