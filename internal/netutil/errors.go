package netutil

import "errors"

// Error taxonomy for the network substrate (spec §7).
var (
	ErrInterfaceNotFound = errors.New("netutil: interface not found")
	ErrInterfaceNoV4     = errors.New("netutil: interface has no IPv4 address")
	ErrEnumerationFailed = errors.New("netutil: interface enumeration failed")
	ErrShutdown          = errors.New("netutil: shutdown")
)
