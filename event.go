//go:build darwin || freebsd
// +build darwin freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Filter is the category of event being observed.
type Filter int16

const (
	// FilterRead fires when a descriptor has data to read.
	FilterRead Filter = unix.EVFILT_READ
	// FilterWrite fires when a descriptor can be written.
	FilterWrite Filter = unix.EVFILT_WRITE
	// FilterAIO fires on asynchronous I/O completion.
	FilterAIO Filter = unix.EVFILT_AIO
	// FilterVnode fires on file system changes to a descriptor.
	FilterVnode Filter = unix.EVFILT_VNODE
	// FilterProc fires on process state changes.
	FilterProc Filter = unix.EVFILT_PROC
	// FilterSignal fires on signal delivery to the process.
	FilterSignal Filter = unix.EVFILT_SIGNAL
	// FilterTimer fires when a timer expires.
	FilterTimer Filter = unix.EVFILT_TIMER
	// FilterUser fires when triggered from user space.
	FilterUser Filter = unix.EVFILT_USER
	// FilterFS fires on file system mount changes.
	FilterFS Filter = unix.EVFILT_FS
)

var filterNames = map[Filter]string{
	FilterRead:   "read",
	FilterWrite:  "write",
	FilterAIO:    "aio",
	FilterVnode:  "vnode",
	FilterProc:   "proc",
	FilterSignal: "signal",
	FilterTimer:  "timer",
	FilterUser:   "user",
	FilterFS:     "fs",
}

// String returns the filter name, e.g. "read".
func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return "filter(" + strconv.Itoa(int(f)) + ")"
}

// Flag is the action/status flag set of a record.
type Flag uint16

const (
	// FlagAdd adds the registration, or modifies it if it exists.
	FlagAdd Flag = unix.EV_ADD
	// FlagDelete removes the registration.
	FlagDelete Flag = unix.EV_DELETE
	// FlagEnable lets a disabled registration report events again.
	FlagEnable Flag = unix.EV_ENABLE
	// FlagDisable keeps the registration but stops reporting it.
	FlagDisable Flag = unix.EV_DISABLE
	// FlagOneshot deletes the registration after its first event.
	FlagOneshot Flag = unix.EV_ONESHOT
	// FlagClear resets the state after each retrieval (edge triggered).
	FlagClear Flag = unix.EV_CLEAR
	// FlagReceipt makes every change produce a result record.
	FlagReceipt Flag = unix.EV_RECEIPT
	// FlagDispatch disables the registration after each retrieval.
	FlagDispatch Flag = unix.EV_DISPATCH
	// FlagEOF is set by the kernel at end-of-file.
	FlagEOF Flag = unix.EV_EOF
	// FlagError is set by the kernel on a failed change; Data holds the errno.
	FlagError Flag = unix.EV_ERROR
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagAdd, "add"},
	{FlagDelete, "delete"},
	{FlagEnable, "enable"},
	{FlagDisable, "disable"},
	{FlagOneshot, "oneshot"},
	{FlagClear, "clear"},
	{FlagReceipt, "receipt"},
	{FlagDispatch, "dispatch"},
	{FlagEOF, "eof"},
	{FlagError, "error"},
}

// String returns the set flag names joined by "|".
func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	rest := f
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(names, "|")
}

// Note is the filter-specific flag set (fflags).
type Note uint32

const (
	// NoteExit reports that the process exited (FilterProc).
	NoteExit Note = unix.NOTE_EXIT
	// NoteFork reports that the process forked (FilterProc).
	NoteFork Note = unix.NOTE_FORK
	// NoteExec reports that the process called exec (FilterProc).
	NoteExec Note = unix.NOTE_EXEC
	// NoteTrigger fires a FilterUser registration.
	NoteTrigger Note = unix.NOTE_TRIGGER
	// NoteDelete reports that the file was unlinked (FilterVnode).
	NoteDelete Note = unix.NOTE_DELETE
	// NoteWrite reports a write to the file (FilterVnode).
	NoteWrite Note = unix.NOTE_WRITE
	// NoteExtend reports that the file grew (FilterVnode).
	NoteExtend Note = unix.NOTE_EXTEND
	// NoteAttrib reports an attribute change (FilterVnode).
	NoteAttrib Note = unix.NOTE_ATTRIB
	// NoteLink reports a link count change (FilterVnode).
	NoteLink Note = unix.NOTE_LINK
	// NoteRename reports that the file was renamed (FilterVnode).
	NoteRename Note = unix.NOTE_RENAME
	// NoteRevoke reports that access to the file was revoked (FilterVnode).
	NoteRevoke Note = unix.NOTE_REVOKE
	// NoteNSeconds makes a FilterTimer's Data a count of nanoseconds.
	NoteNSeconds Note = unix.NOTE_NSECONDS
)

// Change is a request to add, modify or delete interest in one event source.
// It has the exact memory layout of struct kevent.
type Change struct {
	kev unix.Kevent_t
}

// Event is one ready event, or the error attached to a registration.
// It has the exact memory layout of struct kevent.
type Event struct {
	kev unix.Kevent_t
}

// Both record types must be reinterpretable as []unix.Kevent_t.
var (
	_ [unsafe.Sizeof(Change{}) - unsafe.Sizeof(unix.Kevent_t{})]struct{}
	_ [unsafe.Sizeof(unix.Kevent_t{}) - unsafe.Sizeof(Change{})]struct{}
	_ [unsafe.Sizeof(Event{}) - unsafe.Sizeof(unix.Kevent_t{})]struct{}
	_ [unsafe.Sizeof(unix.Kevent_t{}) - unsafe.Sizeof(Event{})]struct{}
)

// NewChange builds a change record for the (ident, filter) registration key.
// On 32-bit FreeBSD the kernel ident is 32 bits wide and ident is truncated
// to its low 32 bits; idents up to math.MaxUint32 are portable.
func NewChange(ident uint64, filter Filter, flags Flag) Change {
	var c Change
	unix.SetKevent(&c.kev, int(ident), int(filter), int(flags))
	return c
}

// WithFlags returns a copy of c with its action flags replaced.
func (c Change) WithFlags(flags Flag) Change {
	c.kev.Flags = uint16(flags)
	return c
}

// WithFflags returns a copy of c with the filter-specific flags set.
func (c Change) WithFflags(fflags Note) Change {
	c.kev.Fflags = uint32(fflags)
	return c
}

// WithData returns a copy of c with the filter-specific data set.
func (c Change) WithData(data int64) Change {
	c.kev.Data = data
	return c
}

// WithUserData returns a copy of c carrying p as its opaque tag.
// The kernel hands p back unchanged on every event for this registration;
// the caller must keep the referent reachable meanwhile.
func (c Change) WithUserData(p unsafe.Pointer) Change {
	c.kev.Udata = (*byte)(p)
	return c
}

// Ident is the event source: a descriptor, timer id, signal number or pid.
func (c Change) Ident() uint64 { return uint64(c.kev.Ident) }

// Filter is the registration's filter.
func (c Change) Filter() Filter { return Filter(c.kev.Filter) }

// Flags are the requested actions.
func (c Change) Flags() Flag { return Flag(c.kev.Flags) }

// Fflags are the filter-specific flags.
func (c Change) Fflags() Note { return Note(c.kev.Fflags) }

// Data is the filter-specific value, e.g. a timer period.
func (c Change) Data() int64 { return int64(c.kev.Data) }

// UserData is the opaque tag set by WithUserData.
func (c Change) UserData() unsafe.Pointer { return unsafe.Pointer(c.kev.Udata) }

// Ident is the source the event came from.
func (e Event) Ident() uint64 { return uint64(e.kev.Ident) }

// Filter is the filter that fired.
func (e Event) Filter() Filter { return Filter(e.kev.Filter) }

// Flags are the status flags, including FlagEOF and FlagError.
func (e Event) Flags() Flag { return Flag(e.kev.Flags) }

// Fflags are the filter-specific flags, e.g. the vnode notes that fired.
func (e Event) Fflags() Note { return Note(e.kev.Fflags) }

// UserData is the tag of the registration, returned unchanged.
func (e Event) UserData() unsafe.Pointer { return unsafe.Pointer(e.kev.Udata) }

// Data is the filter-specific payload, e.g. bytes available for FilterRead,
// expirations for FilterTimer, deliveries for FilterSignal or the errno when
// FlagError is set.
func (e Event) Data() int64 { return int64(e.kev.Data) }

// Err returns the registration error carried by the record, if any.
// A FlagReceipt acknowledgement with a zero errno is not an error.
func (e Event) Err() error {
	if e.kev.Flags&unix.EV_ERROR == 0 || e.kev.Data == 0 {
		return nil
	}
	return syscall.Errno(e.kev.Data)
}

// EOF reports whether the source hit end-of-file (FlagEOF).
func (e Event) EOF() bool {
	return e.kev.Flags&unix.EV_EOF != 0
}

// String formats the event as "read(4) flags=add data=12".
func (e Event) String() string {
	return e.Filter().String() + "(" + strconv.FormatUint(e.Ident(), 10) + ") flags=" +
		e.Flags().String() + " data=" + strconv.FormatInt(e.Data(), 10)
}

func changesToKevents(changes []Change) []unix.Kevent_t {
	if len(changes) == 0 {
		return nil
	}
	return unsafe.Slice((*unix.Kevent_t)(unsafe.Pointer(unsafe.SliceData(changes))), len(changes))
}

func eventsToKevents(events []Event) []unix.Kevent_t {
	if len(events) == 0 {
		return nil
	}
	return unsafe.Slice((*unix.Kevent_t)(unsafe.Pointer(unsafe.SliceData(events))), len(events))
}
