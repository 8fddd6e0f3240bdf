//go:build darwin || freebsd
// +build darwin freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Queue owns a kqueue descriptor.
type Queue struct {
	fd     int
	closed atomic.Bool
}

// Open creates a new kernel event queue. The descriptor is close-on-exec.
func Open() (*Queue, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)

	return &Queue{fd: fd}, nil
}

// Fd returns the queue descriptor, or -1 once the queue is closed.
func (q *Queue) Fd() int {
	if q.closed.Load() {
		return -1
	}
	return q.fd
}

// Close releases the descriptor. Calling it again is a no-op.
// It must not race with an in-flight SubmitAndWait on the same queue.
func (q *Queue) Close() error {
	if q.closed.Swap(true) {
		return nil
	}
	return unix.Close(q.fd)
}

// SubmitAndWait is SubmitAndWait bound to q.
func (q *Queue) SubmitAndWait(changes []Change, events []Event, timeout Timeout) (int, error) {
	return SubmitAndWait(q, changes, events, timeout)
}
