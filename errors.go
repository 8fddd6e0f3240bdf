// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"errors"
	"syscall"
)

var (
	// ErrInvalidQueue is returned when the queue descriptor is nil, closed or
	// rejected by the kernel as a bad descriptor.
	ErrInvalidQueue = errors.New("kevent: invalid queue descriptor")
	// ErrInterrupted is returned when a signal interrupted the wait before
	// any event was ready. Callers may retry.
	ErrInterrupted = errors.New("kevent: interrupted")
	// ErrSystemFailure is returned for any other kernel-reported failure.
	ErrSystemFailure = errors.New("kevent: system failure")
	// ErrUnsupported is returned on platforms without kqueue.
	ErrUnsupported = errors.New("kevent: unsupported on this platform")
)

// Error is a call-level failure with the raw errno reported by the kernel.
// It matches both its Kind and its Errno under errors.Is.
type Error struct {
	// Kind is one of ErrInvalidQueue, ErrInterrupted or ErrSystemFailure.
	Kind error
	// Errno is passed through from the kernel untouched.
	Errno syscall.Errno
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Errno.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Errno}
}

// Errno extracts the raw kernel errno from err, if any.
func Errno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

// TemporaryErr checks if an error is temporary such as EINTR or EAGAIN.
func TemporaryErr(err error) bool {
	errno, ok := Errno(err)
	if !ok {
		return false
	}
	return errno.Temporary()
}
