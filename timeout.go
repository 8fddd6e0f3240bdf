// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"fmt"
	"time"
)

// Timeout bounds how long SubmitAndWait may block.
// The zero value is Forever.
type Timeout struct {
	d       time.Duration
	bounded bool
}

var (
	// Forever blocks until at least one event is ready or a signal arrives.
	Forever = Timeout{}
	// Immediate only collects events that are already ready.
	Immediate = Timeout{bounded: true}
)

// After blocks for at most d. Non-positive durations behave like Immediate.
func After(d time.Duration) Timeout {
	if d < 0 {
		d = 0
	}
	return Timeout{d: d, bounded: true}
}

// Bounded reports whether the timeout is finite, returning its duration.
func (t Timeout) Bounded() (time.Duration, bool) {
	return t.d, t.bounded
}

func (t Timeout) String() string {
	switch {
	case !t.bounded:
		return "forever"
	case t.d == 0:
		return "immediate"
	default:
		return fmt.Sprintf("after %s", t.d)
	}
}
