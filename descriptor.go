// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

// Descriptor exposes a kernel event queue descriptor.
// A negative Fd marks the descriptor as invalid or closed.
type Descriptor interface {
	Fd() int
}

// FD borrows a raw kqueue descriptor that was opened elsewhere.
// The gateway never closes it.
type FD int

// Fd returns the descriptor itself.
func (fd FD) Fd() int { return int(fd) }
