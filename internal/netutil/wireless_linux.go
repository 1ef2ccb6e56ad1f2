//go:build linux

package netutil

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// iwreq mirrors struct iwreq from linux/wireless.h, just enough to
// drive SIOCGIWNAME: an interface name followed by a union whose first
// member we use as an opaque name buffer.
type iwreq struct {
	ifrName [unix.IFNAMSIZ]byte
	data    [16]byte
}

const siocgiwname = 0x8B01 // SIOCGIWNAME, from linux/wireless.h

// isWirelessInterface asks the kernel for the interface's wireless
// protocol name via SIOCGIWNAME. Any interface that answers (even with
// an empty string) is wireless; ENODEV/EOPNOTSUPP means wired. Returns
// false if the OS cannot answer, per spec §4.A.
func isWirelessInterface(name string) bool {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	var req iwreq
	copy(req.ifrName[:], name)

	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(siocgiwname), uintptr(unsafe.Pointer(&req)))
	return errno == 0
}
