//go:build darwin || freebsd
// +build darwin freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// SubmitAndWait submits changes to the queue q, then waits up to timeout for
// ready events, which the kernel writes into events. It returns how many
// records of events were filled.
//
// All changes reach the kernel before the wait begins. A change the kernel
// rejects produces an Event with FlagError set and the errno in Data, as long
// as events has room for it; the rest of the batch is still applied.
//
// Exactly one kevent(2) call is made. Nothing is retried: a wait cut short by
// a signal returns ErrInterrupted, a nil, closed or bad descriptor returns
// ErrInvalidQueue and anything else returns ErrSystemFailure. The returned
// *Error carries the kernel errno verbatim.
//
// A nil *Queue counts as invalid. Other Descriptor implementations must not
// be nil pointers, since Fd is called on them.
func SubmitAndWait(q Descriptor, changes []Change, events []Event, timeout Timeout) (int, error) {
	fd := -1
	if q != nil && !isNilQueue(q) {
		fd = q.Fd()
	}
	if fd < 0 {
		return 0, ErrInvalidQueue
	}

	n, err := unix.Kevent(fd, changesToKevents(changes), eventsToKevents(events), timespec(timeout))
	if err != nil {
		return 0, classify(fd, err, len(changes))
	}
	return n, nil
}

func classify(fd int, err error, nchanges int) error {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return fmt.Errorf("%w: %w", ErrSystemFailure, err)
	}

	switch errno {
	case unix.EINTR:
		return &Error{Kind: ErrInterrupted, Errno: errno}
	case unix.EBADF, unix.EINVAL:
		// Without changes only the queue can be bad: Darwin reports EBADF
		// and FreeBSD EINVAL for a descriptor that is not a kqueue.
		if nchanges == 0 {
			return &Error{Kind: ErrInvalidQueue, Errno: errno}
		}
		// EBADF also covers a bad ident in a change that had no room in the
		// event list. Only blame the queue if it is really gone.
		if _, ferr := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); ferr == unix.EBADF {
			return &Error{Kind: ErrInvalidQueue, Errno: errno}
		}
	}
	return &Error{Kind: ErrSystemFailure, Errno: errno}
}

// isNilQueue catches a (*Queue)(nil) wrapped in the Descriptor interface.
func isNilQueue(q Descriptor) bool {
	qq, ok := q.(*Queue)
	return ok && qq == nil
}

func timespec(t Timeout) *unix.Timespec {
	d, bounded := t.Bounded()
	if !bounded {
		return nil
	}
	ts := unix.NsecToTimespec(d.Nanoseconds())
	return &ts
}
