package ggmix

import "errors"

// Errors reported by registries and the compositor. The control plane turns
// every one of them into a false or zero result plus a log line.
var (
	// ErrNotFound is returned when a channel or unit name does not resolve.
	ErrNotFound = errors.New("ggmix: not found")

	// ErrEmptySourceSet is returned when a group channel is requested but
	// none of the named sources has a shape.
	ErrEmptySourceSet = errors.New("ggmix: no source channel has a shape")

	// ErrDuplicateName is returned when a channel or unit name is taken.
	ErrDuplicateName = errors.New("ggmix: name already in use")

	// ErrUnsupported is returned when a unit cannot accept an operation,
	// such as setting a variable of an incompatible type.
	ErrUnsupported = errors.New("ggmix: unsupported")

	// ErrResourceUnavailable is returned when the back buffer cannot be
	// (re)allocated.
	ErrResourceUnavailable = errors.New("ggmix: drawing surface unavailable")

	// ErrInvalidArgument is returned for out-of-range sizes and rates.
	ErrInvalidArgument = errors.New("ggmix: invalid argument")

	// ErrNotInstantiated is returned by operations that need a live generator.
	ErrNotInstantiated = errors.New("ggmix: unit not instantiated")

	// ErrTimeout is returned when a force refresh is not consumed in time.
	ErrTimeout = errors.New("ggmix: timed out waiting for paint")
)
