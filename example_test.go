//go:build darwin || freebsd
// +build darwin freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent_test

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/cheng-zhongliang/kevent"
)

func ExampleSubmitAndWait() {
	q, err := kevent.Open()
	if err != nil {
		panic(err)
	}
	defer q.Close()

	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		panic(err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	unix.Write(fds[1], []byte("hi"))

	events := make([]kevent.Event, 8)
	n, err := kevent.SubmitAndWait(q, []kevent.Change{kevent.Read(fds[0], 0)}, events, kevent.After(time.Second))
	if err != nil {
		panic(err)
	}
	for _, ev := range events[:n] {
		fmt.Println(ev.Filter(), ev.Data())
	}
	// Output:
	// read 2
}
