// Copyright 2025 Victor Butler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Defaults applied by New when the corresponding option is zero.
const (
	DefaultDebounce     = 2 * time.Second
	DefaultPollInterval = 5 * time.Second
)

// 🏃 ProcessFunc runs one full processing pass over the manifest.
type ProcessFunc func(ctx context.Context) error

// 🔧 Options contains configuration for a watch loop.
type Options struct {
	// Path is the manifest file to watch; its containing directory is
	// monitored so editors that replace the file are still seen
	Path string
	// Debounce is the quiescence window used to coalesce rapid change
	// signals into one triggered pass
	Debounce time.Duration
	// Poll selects mtime/size polling instead of fsnotify events
	Poll bool
	// PollInterval is the polling cadence when Poll is set
	PollInterval time.Duration
	// Process is invoked for each triggered pass
	Process ProcessFunc
	// OnTrigger, if set, is called once per qualifying change signal
	OnTrigger func(path string)
}

// 🎮 Loop owns the Idle → Debouncing → Processing state machine. Change and
// shutdown signals arrive on channels into one control loop, so ordering and
// shutdown draining are deterministic. Each Loop instance is independent.
type Loop struct {
	opts    Options
	changes chan struct{}
}

// 🏭 New creates a new watch loop with the given options.
func New(opts Options) (*Loop, error) {
	if opts.Path == "" {
		return nil, errors.Errorf("path is required")
	}
	if opts.Process == nil {
		return nil, errors.Errorf("process func is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Loop{
		opts:    opts,
		changes: make(chan struct{}, 1),
	}, nil
}

// 🔔 Notify queues a change signal. Signals are level-triggered: repeated
// notifications collapse into at most one queued signal.
func (l *Loop) Notify() {
	select {
	case l.changes <- struct{}{}:
	default:
	}
}

// 🏃 Run performs one startup pass, then watches for manifest changes until
// ctx is cancelled. A startup pass failure aborts before entering watch
// mode; later pass failures are logged and the loop returns to idle. An
// in-flight pass is allowed to finish before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	// Startup pass: synchronize with the manifest's state at launch before
	// reacting to any later edits.
	if err := l.opts.Process(ctx); err != nil {
		return errors.Errorf("startup pass: %w", err)
	}

	sourceCtx, stopSource := context.WithCancel(ctx)
	defer stopSource()
	if l.opts.Poll {
		go l.pollForChanges(sourceCtx)
	} else {
		watcher, err := l.watchForChanges(sourceCtx)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	logger.Info().
		Str("path", l.opts.Path).
		Dur("debounce", l.opts.Debounce).
		Bool("poll", l.opts.Poll).
		Msg("watching manifest")

	var (
		debounce   *time.Timer
		debounceC  <-chan time.Time
		processing bool
		pending    bool
	)
	done := make(chan error, 1)

	stopDebounce := func() {
		if debounce != nil {
			debounce.Stop()
			debounce = nil
			debounceC = nil
		}
	}
	startDebounce := func() {
		stopDebounce()
		debounce = time.NewTimer(l.opts.Debounce)
		debounceC = debounce.C
		logger.Debug().Str("state", "debouncing").Msg("change signal received")
	}

	for {
		select {
		case <-ctx.Done():
			stopDebounce()
			if processing {
				// Graceful drain: the in-flight pass finishes, no new
				// passes start.
				if err := <-done; err != nil {
					logger.Error().Err(err).Msg("final pass failed during shutdown")
				}
			}
			logger.Info().Str("state", "terminated").Msg("watch loop stopped")
			return nil

		case <-l.changes:
			if l.opts.OnTrigger != nil {
				l.opts.OnTrigger(l.opts.Path)
			}
			if processing {
				// At most one follow-up pass: repeated changes during
				// processing collapse into a single pending flag.
				pending = true
				logger.Debug().Str("state", "processing").Msg("change queued as pending")
				continue
			}
			startDebounce()

		case <-debounceC:
			debounce = nil
			debounceC = nil
			processing = true
			logger.Debug().Str("state", "processing").Msg("debounce window elapsed")
			go func() {
				done <- l.opts.Process(ctx)
			}()

		case err := <-done:
			processing = false
			if err != nil {
				// Run-level failure: log and return to idle, the watch
				// loop itself stays alive.
				logger.Error().Err(err).Msg("processing pass failed")
			}
			if pending {
				pending = false
				startDebounce()
			} else {
				logger.Debug().Str("state", "idle").Msg("processing pass finished")
			}
		}
	}
}

// 👀 watchForChanges forwards qualifying fsnotify events on the manifest's
// directory into the change channel.
func (l *Loop) watchForChanges(ctx context.Context) (*fsnotify.Watcher, error) {
	logger := zerolog.Ctx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating watcher: %w", err)
	}

	// Watch the containing directory: editors and cataloging tools often
	// replace the manifest wholesale, which a file-level watch would lose.
	dir := filepath.Dir(l.opts.Path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Errorf("watching directory %s: %w", dir, err)
	}

	base := filepath.Base(l.opts.Path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug().
					Str("file", event.Name).
					Str("event", event.Op.String()).
					Msg("manifest change event")
				l.Notify()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error().Err(err).Msg("watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	return watcher, nil
}
