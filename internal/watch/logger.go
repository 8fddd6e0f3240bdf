// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	uuid "github.com/satori/go.uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the JSON logger the watcher reports through.
type Logger = logiface.Logger[*stumpy.Event]

var levels = []logiface.Level{
	logiface.LevelEmergency,
	logiface.LevelAlert,
	logiface.LevelCritical,
	logiface.LevelError,
	logiface.LevelWarning,
	logiface.LevelNotice,
	logiface.LevelInformational,
	logiface.LevelDebug,
	logiface.LevelTrace,
}

// ParseLevel maps a syslog keyword ("err", "info", ...) to a level.
// "error" and "warn" are accepted as well.
func ParseLevel(s string) (logiface.Level, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "error":
		return logiface.LevelError, nil
	case "warn":
		return logiface.LevelWarning, nil
	case "disabled", "off":
		return logiface.LevelDisabled, nil
	}
	for _, lvl := range levels {
		if lvl.String() == key {
			return lvl, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("watch: unknown log level %q", s)
}

// NewLogger builds the logger described by cfg. Output goes to w unless
// cfg.File is set, in which case it goes to a size-rotated file. Every line
// carries a per-process run id. The returned closer releases the file.
func NewLogger(cfg LogConfig, w io.Writer) (*Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		w, closer = file, file
	}

	logger := stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField(`time`),
		),
		stumpy.L.WithLevel(level),
	)

	return logger.Clone().Str(`run`, uuid.NewV4().String()).Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
