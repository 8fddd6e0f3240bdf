// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kevent is a thin gateway over the BSD kqueue facility.
//
// The whole package revolves around SubmitAndWait, which hands a batch of
// Change records to the kernel and collects up to len(events) ready Event
// records in one kevent(2) call. Records share the kernel's struct kevent
// layout, so slices are passed through without copying.
//
// The gateway interprets nothing: no retries, no logging and no locking.
// Per-record registration failures come back as Event values carrying
// EV_ERROR; call-level failures are classified as ErrInvalidQueue,
// ErrInterrupted or ErrSystemFailure with the raw errno attached.
//
// Darwin and FreeBSD are supported. Other platforms build, but every
// operation returns ErrUnsupported.
package kevent
