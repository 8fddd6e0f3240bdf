//go:build darwin || freebsd
// +build darwin freebsd

// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"syscall"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/cheng-zhongliang/kevent"
)

// wakeIdent is the user event used to interrupt a blocked wait. It must fit
// the 32-bit ident of 32-bit FreeBSD.
const wakeIdent = math.MaxUint32

const fileNotes = kevent.NoteWrite | kevent.NoteExtend | kevent.NoteAttrib |
	kevent.NoteLink | kevent.NoteRename | kevent.NoteDelete | kevent.NoteRevoke

type key struct {
	ident  uint64
	filter kevent.Filter
}

type registration struct {
	source *Source
	// fd is owned by the watcher (opened for a file source), -1 otherwise
	fd   int
	exit bool
	// configured is false for exit signals that are not also a source
	configured bool
}

// Watcher registers the configured sources on one kqueue and logs every
// event the kernel reports for them.
type Watcher struct {
	cfg     *Config
	logger  *Logger
	queue   *kevent.Queue
	regs    map[key]*registration
	pending []kevent.Change
	signals signalSet
	started bool
	// wait is the blocking call of the loop
	wait func(changes []kevent.Change, events []kevent.Event, timeout kevent.Timeout) (int, error)
}

// New opens the queue for cfg. cfg is normalized first.
func New(cfg *Config, logger *Logger) (*Watcher, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	queue, err := kevent.Open()
	if err != nil {
		return nil, fmt.Errorf("watch: open queue: %w", err)
	}

	return &Watcher{
		cfg:    cfg,
		logger: logger,
		queue:  queue,
		regs:   make(map[key]*registration),
		wait:   queue.SubmitAndWait,
	}, nil
}

// Start submits one change per source and reports per-source registration
// failures. It fails if none of the configured sources could be registered;
// exit signals alone do not count.
func (w *Watcher) Start() error {
	if w.started {
		return nil
	}
	if err := w.register(); err != nil {
		for k := range w.regs {
			w.drop(k)
		}
		return err
	}
	w.started = true
	return nil
}

func (w *Watcher) register() error {
	changes := []kevent.Change{kevent.User(wakeIdent)}
	for i := range w.cfg.Watch {
		change, reg, err := w.prepare(&w.cfg.Watch[i], i)
		if err != nil {
			w.logger.Err().
				Str(`source`, w.cfg.Watch[i].Name).
				Err(err).
				Log(`cannot prepare source`)
			continue
		}
		k := key{change.Ident(), change.Filter()}
		if prev, ok := w.regs[k]; ok {
			w.logger.Err().
				Str(`source`, reg.source.Name).
				Str(`previous`, prev.source.Name).
				Stringer(`filter`, k.filter).
				Uint64(`ident`, k.ident).
				Log(`duplicate source`)
			if reg.fd >= 0 {
				unix.Close(reg.fd)
			}
			continue
		}
		w.regs[k] = reg
		changes = append(changes, change)
	}
	for _, name := range w.cfg.ExitOn {
		sig, _ := ParseSignal(name)
		k := key{uint64(sig), kevent.FilterSignal}
		if reg, ok := w.regs[k]; ok {
			reg.exit = true
			continue
		}
		w.signals.subscribe(sig)
		w.regs[k] = &registration{
			source: &Source{Kind: KindSignal, Name: "exit:" + name, Signal: name},
			fd:     -1,
			exit:   true,
		}
		changes = append(changes, kevent.Signal(sig))
	}

	for i := range changes {
		changes[i] = changes[i].WithFlags(changes[i].Flags() | kevent.FlagReceipt)
	}

	receipts := make([]kevent.Event, len(changes))
	n, err := w.queue.SubmitAndWait(changes, receipts, kevent.Immediate)
	if err != nil {
		return fmt.Errorf("watch: register: %w", err)
	}

	registered := 0
	for _, rc := range receipts[:n] {
		k := key{rc.Ident(), rc.Filter()}
		if rc.Filter() == kevent.FilterUser && rc.Ident() == wakeIdent {
			if err := rc.Err(); err != nil {
				return fmt.Errorf("watch: register wakeup: %w", err)
			}
			continue
		}
		reg, ok := w.regs[k]
		if !ok {
			continue
		}
		if err := rc.Err(); err != nil {
			w.logger.Err().
				Str(`source`, reg.source.Name).
				Stringer(`filter`, rc.Filter()).
				Uint64(`ident`, rc.Ident()).
				Err(err).
				Log(`registration failed`)
			w.drop(k)
			continue
		}
		if reg.configured {
			registered++
		}
		w.logger.Debug().
			Str(`source`, reg.source.Name).
			Stringer(`filter`, rc.Filter()).
			Uint64(`ident`, rc.Ident()).
			Log(`registered`)
	}
	if registered == 0 {
		return ErrNoWatches
	}

	w.logger.Info().
		Int(`sources`, registered).
		Int(`events`, w.cfg.Events).
		Log(`watching`)
	return nil
}

func (w *Watcher) prepare(s *Source, index int) (kevent.Change, *registration, error) {
	reg := &registration{source: s, fd: -1, configured: true}
	switch s.Kind {
	case KindRead:
		return kevent.Read(s.FD, kevent.FlagClear), reg, nil
	case KindWrite:
		return kevent.Write(s.FD, kevent.FlagClear), reg, nil
	case KindTimer, KindTicker:
		if s.ID == 0 {
			s.ID = uint64(index) + 1
		}
		if s.Kind == KindTimer {
			return kevent.Timer(s.ID, s.Interval.Duration), reg, nil
		}
		return kevent.Ticker(s.ID, s.Interval.Duration), reg, nil
	case KindSignal:
		sig, err := ParseSignal(s.Signal)
		if err != nil {
			return kevent.Change{}, nil, err
		}
		w.signals.subscribe(sig)
		return kevent.Signal(sig), reg, nil
	case KindProc:
		return kevent.ProcExit(s.PID), reg, nil
	case KindFile:
		fd, err := unix.Open(s.Path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			return kevent.Change{}, nil, fmt.Errorf("open %s: %w", s.Path, err)
		}
		reg.fd = fd
		return kevent.Vnode(fd, fileNotes), reg, nil
	}
	return kevent.Change{}, nil, fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
}

// Run registers the sources if Start was not called, then waits for events
// until an exit signal is seen, ctx is done or the queue fails.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		_, err := w.queue.SubmitAndWait([]kevent.Change{kevent.Trigger(wakeIdent)}, nil, kevent.Immediate)
		return err
	})
	g.Go(func() error {
		defer cancel()
		return w.loop()
	})

	return g.Wait()
}

func (w *Watcher) loop() error {
	events := make([]kevent.Event, w.cfg.Events)
	for {
		changes := w.pending
		w.pending = nil

		n, err := w.wait(changes, events, kevent.Forever)
		if errors.Is(err, kevent.ErrInterrupted) {
			// changes are applied before the wait starts
			w.logger.Debug().Log(`wait interrupted`)
			continue
		}
		if err != nil {
			return fmt.Errorf("watch: wait: %w", err)
		}

		for _, ev := range events[:n] {
			if ev.Filter() == kevent.FilterUser && ev.Ident() == wakeIdent {
				w.logger.Info().Log(`stopping`)
				return nil
			}
			if w.handle(ev) {
				return nil
			}
		}
	}
}

// handle logs ev and reports whether the loop should stop.
func (w *Watcher) handle(ev kevent.Event) bool {
	k := key{ev.Ident(), ev.Filter()}
	reg, ok := w.regs[k]
	if !ok {
		w.logger.Warning().
			Stringer(`event`, ev).
			Log(`event for unknown source`)
		return false
	}

	if err := ev.Err(); err != nil {
		w.logger.Err().
			Str(`source`, reg.source.Name).
			Uint64(`ident`, ev.Ident()).
			Err(err).
			Log(`source failed`)
		w.drop(k)
		return false
	}

	w.logger.Info().
		Str(`source`, reg.source.Name).
		Str(`kind`, string(reg.source.Kind)).
		Stringer(`filter`, ev.Filter()).
		Uint64(`ident`, ev.Ident()).
		Int64(`data`, ev.Data()).
		Stringer(`flags`, ev.Flags()).
		Call(func(b *logiface.Builder[*stumpy.Event]) {
			if ev.Fflags() != 0 {
				b.Str(`fflags`, fmt.Sprintf("%#x", uint32(ev.Fflags())))
			}
		}).
		Log(`event`)

	if reg.exit {
		w.logger.Notice().
			Str(`signal`, syscall.Signal(ev.Ident()).String()).
			Log(`exit signal received`)
		return true
	}

	switch {
	case reg.source.Kind == KindTimer, reg.source.Kind == KindProc:
		// one-shot, the kernel already dropped it
		w.drop(k)
	case ev.EOF() && (reg.source.Kind == KindRead || reg.source.Kind == KindWrite):
		w.pending = append(w.pending, kevent.Delete(k.ident, k.filter))
		w.drop(k)
	case reg.source.Kind == KindFile && ev.Fflags()&(kevent.NoteDelete|kevent.NoteRevoke) != 0:
		// closing the descriptor removes the registration
		w.drop(k)
	}
	return false
}

func (w *Watcher) drop(k key) {
	reg, ok := w.regs[k]
	if !ok {
		return
	}
	delete(w.regs, k)
	if reg.fd >= 0 {
		unix.Close(reg.fd)
	}
}

// Close releases the queue, any opened files and ignored signals.
func (w *Watcher) Close() error {
	for k := range w.regs {
		w.drop(k)
	}
	w.signals.reset()
	return w.queue.Close()
}
