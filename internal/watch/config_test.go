// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
events = 16
exit_on = ["SIGINT", "term"]

[log]
level = "debug"
file = "/var/log/kwatch.log"
max_size_mb = 10
max_backups = 2
max_age_days = 7

[[watch]]
kind = "read"
fd = 0

[[watch]]
kind = "ticker"
name = "heartbeat"
interval = "250ms"

[[watch]]
kind = "signal"
signal = "hup"

[[watch]]
kind = "proc"
pid = 4242

[[watch]]
kind = "file"
path = "/etc/hosts"
`

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig(sampleConfig)
	require.NoError(t, err)
	require.NoError(t, c.Normalize())

	assert.Equal(t, 16, c.Events)
	assert.Equal(t, []string{"SIGINT", "term"}, c.ExitOn)
	assert.Equal(t, LogConfig{
		Level:      "debug",
		File:       "/var/log/kwatch.log",
		MaxSizeMB:  10,
		MaxBackups: 2,
		MaxAgeDays: 7,
	}, c.Log)

	require.Len(t, c.Watch, 5)
	assert.Equal(t, Source{Kind: KindRead, Name: "read:0"}, c.Watch[0])
	assert.Equal(t, "heartbeat", c.Watch[1].Name)
	assert.Equal(t, 250*time.Millisecond, c.Watch[1].Interval.Duration)
	assert.Equal(t, "signal:HUP", c.Watch[2].Name)
	assert.Equal(t, "proc:4242", c.Watch[3].Name)
	assert.Equal(t, "file:/etc/hosts", c.Watch[4].Name)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, c.Watch, 5)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseConfigUnknownKey(t *testing.T) {
	_, err := ParseConfig("[[watch]]\nkind = \"read\"\nfdd = 3\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fdd")
}

func TestParseConfigBadInterval(t *testing.T) {
	_, err := ParseConfig("[[watch]]\nkind = \"timer\"\ninterval = \"soon\"\n")
	assert.Error(t, err)
}

func TestNormalizeDefaults(t *testing.T) {
	c := &Config{Watch: []Source{{Kind: KindWrite, FD: 1}}}
	require.NoError(t, c.Normalize())
	assert.Equal(t, defaultEvents, c.Events)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "write:1", c.Watch[0].Name)
}

func TestNormalizeErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
		is   error
	}{
		{"no watches", Config{}, ErrNoWatches},
		{"unknown kind", Config{Watch: []Source{{Kind: "socket"}}}, ErrUnknownKind},
		{"negative fd", Config{Watch: []Source{{Kind: KindRead, FD: -1}}}, nil},
		{"zero interval", Config{Watch: []Source{{Kind: KindTicker}}}, nil},
		{"bad signal", Config{Watch: []Source{{Kind: KindSignal, Signal: "SIGNOPE"}}}, nil},
		{"bad pid", Config{Watch: []Source{{Kind: KindProc}}}, nil},
		{"empty path", Config{Watch: []Source{{Kind: KindFile}}}, nil},
		{"bad exit signal", Config{ExitOn: []string{"x"}, Watch: []Source{{Kind: KindRead}}}, nil},
		{"bad level", Config{Log: LogConfig{Level: "loud"}, Watch: []Source{{Kind: KindRead}}}, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Normalize()
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestParseSignal(t *testing.T) {
	for in, want := range map[string]syscall.Signal{
		"SIGHUP":  syscall.SIGHUP,
		"hup":     syscall.SIGHUP,
		" int ":   syscall.SIGINT,
		"sigusr1": syscall.SIGUSR1,
		"WINCH":   syscall.SIGWINCH,
	} {
		got, err := ParseSignal(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSignal("KILLALL")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]logiface.Level{
		"info":    logiface.LevelInformational,
		"DEBUG":   logiface.LevelDebug,
		"err":     logiface.LevelError,
		"error":   logiface.LevelError,
		"warn":    logiface.LevelWarning,
		"warning": logiface.LevelWarning,
		"trace":   logiface.LevelTrace,
		"off":     logiface.LevelDisabled,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}
