// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kevent

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesKindAndErrno(t *testing.T) {
	var err error = &Error{Kind: ErrInterrupted, Errno: syscall.EINTR}

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, syscall.EINTR)
	assert.NotErrorIs(t, err, ErrSystemFailure)
	assert.NotErrorIs(t, err, ErrInvalidQueue)
	assert.Equal(t, ErrInterrupted.Error()+": "+syscall.EINTR.Error(), err.Error())

	var kerr *Error
	require.ErrorAs(t, fmt.Errorf("wait: %w", err), &kerr)
	assert.Equal(t, syscall.EINTR, kerr.Errno)
}

func TestErrno(t *testing.T) {
	errno, ok := Errno(&Error{Kind: ErrSystemFailure, Errno: syscall.ENOMEM})
	require.True(t, ok)
	assert.Equal(t, syscall.ENOMEM, errno)

	errno, ok = Errno(syscall.EBADF)
	require.True(t, ok)
	assert.Equal(t, syscall.EBADF, errno)

	_, ok = Errno(ErrInvalidQueue)
	assert.False(t, ok)

	_, ok = Errno(nil)
	assert.False(t, ok)
}

func TestTemporaryErr(t *testing.T) {
	assert.True(t, TemporaryErr(&Error{Kind: ErrInterrupted, Errno: syscall.EINTR}))
	assert.True(t, TemporaryErr(syscall.EAGAIN))
	assert.False(t, TemporaryErr(&Error{Kind: ErrInvalidQueue, Errno: syscall.EBADF}))
	assert.False(t, TemporaryErr(errors.New("not an errno")))
	assert.False(t, TemporaryErr(ErrInvalidQueue))
}
