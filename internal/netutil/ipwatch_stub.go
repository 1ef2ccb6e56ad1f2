//go:build !linux

package netutil

import (
	"context"
	"time"
)

// WaitForIPAddrChange on non-Linux builds falls back to coarse polling
// of the interface table; the macOS SCDynamicStore run-loop source and
// Windows NotifyAddrChange integrations are genuine OS integrations
// beyond this package's scope, matching the contract in spec §4.A that
// permits an OS-specific implementation per platform.
func WaitForIPAddrChange(cancel context.Context) error {
	const pollInterval = 5 * time.Second

	before, err := snapshotV4()
	if err != nil {
		return ErrShutdown
	}

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-cancel.Done():
			return ErrShutdown
		case <-t.C:
			after, err := snapshotV4()
			if err != nil {
				continue
			}
			if !sameSet(before, after) {
				return nil
			}
		}
	}
}

func snapshotV4() (map[string]string, error) {
	ifs, err := EnumerateInterfaces()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(ifs))
	for _, i := range ifs {
		if i.HasV4() {
			out[i.Name] = i.V4Addr.String()
		}
	}
	return out, nil
}

func sameSet(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
