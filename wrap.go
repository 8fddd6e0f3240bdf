//go:build darwin || freebsd
// +build darwin freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"syscall"
	"time"
)

// Read registers read readiness of fd.
func Read(fd int, flags Flag) Change {
	return NewChange(uint64(fd), FilterRead, FlagAdd|flags)
}

// Write registers write readiness of fd.
func Write(fd int, flags Flag) Change {
	return NewChange(uint64(fd), FilterWrite, FlagAdd|flags)
}

// Timer registers a one-shot timer firing once after d.
func Timer(id uint64, d time.Duration) Change {
	return NewChange(id, FilterTimer, FlagAdd|FlagOneshot).
		WithFflags(NoteNSeconds).
		WithData(d.Nanoseconds())
}

// Ticker registers a periodic timer firing every d.
func Ticker(id uint64, d time.Duration) Change {
	return NewChange(id, FilterTimer, FlagAdd).
		WithFflags(NoteNSeconds).
		WithData(d.Nanoseconds())
}

// Signal registers delivery of sig to the process.
func Signal(sig syscall.Signal) Change {
	return NewChange(uint64(sig), FilterSignal, FlagAdd)
}

// ProcExit registers the exit of process pid.
func ProcExit(pid int) Change {
	return NewChange(uint64(pid), FilterProc, FlagAdd|FlagOneshot).WithFflags(NoteExit)
}

// Vnode registers the given file system notes on the open descriptor fd.
func Vnode(fd int, notes Note) Change {
	return NewChange(uint64(fd), FilterVnode, FlagAdd|FlagClear).WithFflags(notes)
}

// User registers a user event that fires only when triggered.
func User(id uint64) Change {
	return NewChange(id, FilterUser, FlagAdd|FlagClear)
}

// Trigger fires the user event registered with User(id).
func Trigger(id uint64) Change {
	return NewChange(id, FilterUser, 0).WithFflags(NoteTrigger)
}

// Delete removes the (ident, filter) registration.
func Delete(ident uint64, filter Filter) Change {
	return NewChange(ident, filter, FlagDelete)
}
