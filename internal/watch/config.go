// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
)

// Kind is the kind of event source a watch observes.
type Kind string

const (
	KindRead   Kind = "read"
	KindWrite  Kind = "write"
	KindTimer  Kind = "timer"
	KindTicker Kind = "ticker"
	KindSignal Kind = "signal"
	KindProc   Kind = "proc"
	KindFile   Kind = "file"
)

const defaultEvents = 64

var (
	ErrNoWatches   = errors.New("watch: nothing to watch")
	ErrUnknownKind = errors.New("watch: unknown kind")
)

// Config is the kwatch configuration file.
type Config struct {
	// Events is the size of the result buffer handed to each wait.
	Events int `toml:"events"`
	// ExitOn lists signals that end the watch loop once observed.
	ExitOn []string `toml:"exit_on"`

	Log   LogConfig `toml:"log"`
	Watch []Source  `toml:"watch"`
}

// LogConfig selects the log level and an optional rotated log file.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Source is one [[watch]] entry.
type Source struct {
	Kind     Kind     `toml:"kind"`
	Name     string   `toml:"name"`
	FD       int      `toml:"fd"`
	ID       uint64   `toml:"id"`
	Interval Duration `toml:"interval"`
	Signal   string   `toml:"signal"`
	PID      int      `toml:"pid"`
	Path     string   `toml:"path"`
}

// Duration decodes TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err := checkDecode(md, err); err != nil {
		return nil, fmt.Errorf("watch: load %s: %w", path, err)
	}
	return &c, nil
}

// ParseConfig decodes a TOML document.
func ParseConfig(data string) (*Config, error) {
	var c Config
	md, err := toml.Decode(data, &c)
	if err := checkDecode(md, err); err != nil {
		return nil, fmt.Errorf("watch: parse: %w", err)
	}
	return &c, nil
}

func checkDecode(md toml.MetaData, err error) error {
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys %v", undecoded)
	}
	return nil
}

// Normalize fills defaults and validates every source.
func (c *Config) Normalize() error {
	if c.Events <= 0 {
		c.Events = defaultEvents
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	for _, name := range c.ExitOn {
		if _, err := ParseSignal(name); err != nil {
			return err
		}
	}
	if len(c.Watch) == 0 {
		return ErrNoWatches
	}
	for i := range c.Watch {
		if err := c.Watch[i].validate(); err != nil {
			return fmt.Errorf("watch[%d]: %w", i, err)
		}
	}
	return nil
}

func (s *Source) validate() error {
	switch s.Kind {
	case KindRead, KindWrite:
		if s.FD < 0 {
			return fmt.Errorf("%s: negative fd %d", s.Kind, s.FD)
		}
	case KindTimer, KindTicker:
		if s.Interval.Duration <= 0 {
			return fmt.Errorf("%s: interval must be positive", s.Kind)
		}
	case KindSignal:
		if _, err := ParseSignal(s.Signal); err != nil {
			return err
		}
	case KindProc:
		if s.PID <= 0 {
			return fmt.Errorf("proc: invalid pid %d", s.PID)
		}
	case KindFile:
		if s.Path == "" {
			return errors.New("file: empty path")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
	}
	if s.Name == "" {
		s.Name = s.defaultName()
	}
	return nil
}

func (s *Source) defaultName() string {
	switch s.Kind {
	case KindRead, KindWrite:
		return fmt.Sprintf("%s:%d", s.Kind, s.FD)
	case KindTimer, KindTicker:
		return fmt.Sprintf("%s:%s", s.Kind, s.Interval.Duration)
	case KindSignal:
		return "signal:" + strings.ToUpper(s.Signal)
	case KindProc:
		return fmt.Sprintf("proc:%d", s.PID)
	default:
		return "file:" + s.Path
	}
}

var signals = map[string]syscall.Signal{
	"SIGHUP":   syscall.SIGHUP,
	"SIGINT":   syscall.SIGINT,
	"SIGQUIT":  syscall.SIGQUIT,
	"SIGTERM":  syscall.SIGTERM,
	"SIGUSR1":  syscall.SIGUSR1,
	"SIGUSR2":  syscall.SIGUSR2,
	"SIGALRM":  syscall.SIGALRM,
	"SIGCHLD":  syscall.SIGCHLD,
	"SIGWINCH": syscall.SIGWINCH,
}

// ParseSignal accepts "SIGHUP", "hup" or "HUP".
func ParseSignal(name string) (syscall.Signal, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(key, "SIG") {
		key = "SIG" + key
	}
	if sig, ok := signals[key]; ok {
		return sig, nil
	}
	return 0, fmt.Errorf("watch: unknown signal %q", name)
}
