// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command kwatch logs kqueue events for descriptors, timers, signals,
// processes and files.
//
//	kwatch -read 0 -ticker 1s -signal HUP -pid 123 -file /etc/hosts
//	kwatch -config kwatch.toml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/cheng-zhongliang/kevent/internal/watch"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "kwatch:", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "kwatch:", err)
		os.Exit(1)
	}
}

func run(cfg *watch.Config) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}

	logger, closer, err := watch.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	w, err := watch.New(cfg, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(context.Background())
}

// parseFlags builds the configuration from the optional -config file and
// the command line. Watches given as flags are appended to the file's.
func parseFlags(args []string, output io.Writer) (*watch.Config, error) {
	var (
		cfg     = &watch.Config{}
		extra   []watch.Source
		exitOn  []string
		path    string
		level   string
		logFile string
		events  int
	)

	fs := flag.NewFlagSet("kwatch", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&path, "config", "", "TOML configuration `file`")
	fs.StringVar(&level, "log-level", "", "log `level` (err, warning, notice, info, debug, trace)")
	fs.StringVar(&logFile, "log-file", "", "write logs to a rotated `file` instead of stderr")
	fs.IntVar(&events, "events", 0, "result buffer size per wait")

	fs.Func("read", "watch read readiness of `fd`", fdSource(&extra, watch.KindRead))
	fs.Func("write", "watch write readiness of `fd`", fdSource(&extra, watch.KindWrite))
	fs.Func("timer", "fire once after `duration`", intervalSource(&extra, watch.KindTimer))
	fs.Func("ticker", "fire every `duration`", intervalSource(&extra, watch.KindTicker))
	fs.Func("signal", "watch delivery of `signal`", func(s string) error {
		if _, err := watch.ParseSignal(s); err != nil {
			return err
		}
		extra = append(extra, watch.Source{Kind: watch.KindSignal, Signal: s})
		return nil
	})
	fs.Func("pid", "watch exit of process `pid`", func(s string) error {
		pid, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		extra = append(extra, watch.Source{Kind: watch.KindProc, PID: pid})
		return nil
	})
	fs.Func("file", "watch changes to `path`", func(s string) error {
		extra = append(extra, watch.Source{Kind: watch.KindFile, Path: s})
		return nil
	})
	fs.Func("exit-on", "stop once `signal` is seen (default INT and TERM)", func(s string) error {
		if _, err := watch.ParseSignal(s); err != nil {
			return err
		}
		exitOn = append(exitOn, s)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	if path != "" {
		loaded, err := watch.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Watch = append(cfg.Watch, extra...)
	cfg.ExitOn = append(cfg.ExitOn, exitOn...)
	if len(cfg.ExitOn) == 0 {
		cfg.ExitOn = []string{"INT", "TERM"}
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if events > 0 {
		cfg.Events = events
	}
	return cfg, nil
}

func fdSource(dst *[]watch.Source, kind watch.Kind) func(string) error {
	return func(s string) error {
		fd, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = append(*dst, watch.Source{Kind: kind, FD: fd})
		return nil
	}
}

func intervalSource(dst *[]watch.Source, kind watch.Kind) func(string) error {
	return func(s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*dst = append(*dst, watch.Source{Kind: kind, Interval: watch.Duration{Duration: d}})
		return nil
	}
}
