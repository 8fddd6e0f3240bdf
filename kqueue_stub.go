//go:build !darwin && !freebsd
// +build !darwin,!freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

// Change is a kqueue change record. It carries nothing on this platform.
type Change struct{}

// Event is a kqueue result record. It carries nothing on this platform.
type Event struct{}

// Err always returns nil.
func (Event) Err() error { return nil }

// Queue is a kqueue descriptor. It cannot be opened on this platform.
type Queue struct{}

// Open returns ErrUnsupported.
func Open() (*Queue, error) { return nil, ErrUnsupported }

// Fd returns -1.
func (*Queue) Fd() int { return -1 }

// Close is a no-op.
func (*Queue) Close() error { return nil }

// SubmitAndWait returns ErrUnsupported.
func (q *Queue) SubmitAndWait(changes []Change, events []Event, timeout Timeout) (int, error) {
	return SubmitAndWait(q, changes, events, timeout)
}

// SubmitAndWait returns ErrUnsupported.
func SubmitAndWait(q Descriptor, changes []Change, events []Event, timeout Timeout) (int, error) {
	return 0, ErrUnsupported
}
