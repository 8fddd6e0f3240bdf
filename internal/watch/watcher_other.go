//go:build !darwin && !freebsd
// +build !darwin,!freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"context"

	"github.com/cheng-zhongliang/kevent"
)

// Watcher is unavailable without kqueue.
type Watcher struct{}

// New validates cfg, then returns kevent.ErrUnsupported.
func New(cfg *Config, logger *Logger) (*Watcher, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return nil, kevent.ErrUnsupported
}

func (*Watcher) Start() error                  { return kevent.ErrUnsupported }
func (*Watcher) Run(ctx context.Context) error { return kevent.ErrUnsupported }
func (*Watcher) Close() error                  { return nil }
