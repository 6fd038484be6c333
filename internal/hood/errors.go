package hood

import "errors"

// Domain errors. Transport failures are reported as *device.TransportError.
var (
	// ErrInvalidArgument is returned for out-of-range caller input. It is always
	// detected before anything is sent to the device.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedFrame signals a frame of the wrong shape, either built locally or
	// read back from the device for a read-modify-write.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnsupported is returned by operations the peer's firmware generation cannot perform.
	ErrUnsupported = errors.New("unsupported operation")
)
