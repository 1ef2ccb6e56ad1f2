//go:build linux

package netutil

import (
	"context"
	"time"

	"github.com/jsimonetti/rtnetlink"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/navbridge/radargateway/internal/logging"
)

// transientBackoff is how long the watcher sleeps before retrying after
// a non-fatal netlink error, per spec §4.A.
const transientBackoff = 30 * time.Second

// WaitForIPAddrChange blocks until the kernel reports an IPv4 address
// add or remove on any interface, or until cancel is done. Implemented
// via a netlink socket subscribed to RTMGRP_IPV4_IFADDR.
func WaitForIPAddrChange(cancel context.Context) error {
	for {
		if cancel.Err() != nil {
			return ErrShutdown
		}

		conn, err := netlink.Dial(unix.NETLINK_ROUTE, &netlink.Config{
			Groups: unix.RTMGRP_IPV4_IFADDR,
		})
		if err != nil {
			logging.Opsf("netlink: dial failed: %v, retrying in %s", err, transientBackoff)
			if !sleepOrCancel(cancel, transientBackoff) {
				return ErrShutdown
			}
			continue
		}

		changed, waitErr := waitOnConn(cancel, conn)
		conn.Close()
		if changed {
			return nil
		}
		if waitErr != nil {
			logging.Opsf("netlink: receive failed: %v, retrying in %s", waitErr, transientBackoff)
			if !sleepOrCancel(cancel, transientBackoff) {
				return ErrShutdown
			}
			continue
		}
		return ErrShutdown
	}
}

// waitOnConn polls the netlink socket in short slices so cancellation is
// observed promptly without requiring the conn to support deadlines
// that interrupt a blocking Receive.
func waitOnConn(cancel context.Context, conn *netlink.Conn) (bool, error) {
	done := make(chan struct{})
	var msgs []netlink.Message
	var recvErr error
	go func() {
		msgs, recvErr = conn.Receive()
		close(done)
	}()

	select {
	case <-cancel.Done():
		conn.Close()
		<-done
		return false, nil
	case <-done:
	}

	if recvErr != nil {
		return false, recvErr
	}
	for _, m := range msgs {
		if m.Header.Type != unix.RTM_NEWADDR && m.Header.Type != unix.RTM_DELADDR {
			continue
		}
		var am rtnetlink.AddressMessage
		if err := am.UnmarshalBinary(m.Data); err != nil {
			continue
		}
		if am.Family == unix.AF_INET {
			return true, nil
		}
	}
	return false, nil
}

func sleepOrCancel(cancel context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-cancel.Done():
		return false
	case <-t.C:
		return true
	}
}
