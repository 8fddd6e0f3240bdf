// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"os"
	"os/signal"
	"syscall"
)

// signalSet tracks the signals whose default disposition is replaced by
// SIG_IGN while they are watched. kqueue still records ignored signals, so
// delivery is observed only through the queue.
type signalSet struct {
	signals []os.Signal
}

func (ss *signalSet) subscribe(sig syscall.Signal) {
	for _, s := range ss.signals {
		if s == sig {
			return
		}
	}
	// ignoring SIGCHLD changes how children are reaped
	if sig == syscall.SIGCHLD {
		return
	}
	ss.signals = append(ss.signals, sig)

	signal.Ignore(sig)
}

func (ss *signalSet) reset() {
	if len(ss.signals) == 0 {
		return
	}
	signal.Reset(ss.signals...)
	ss.signals = nil
}
