package watch

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ⏱️ pollForChanges stats the manifest on a fixed cadence and emits a change
// signal when its size or modification time moves. Fallback for filesystems
// where inotify events are unreliable (network mounts, some containers).
func (l *Loop) pollForChanges(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	var lastMod time.Time
	var lastSize int64
	if info, err := os.Stat(l.opts.Path); err == nil {
		lastMod = info.ModTime()
		lastSize = info.Size()
	}

	ticker := time.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			info, err := os.Stat(l.opts.Path)
			if err != nil {
				// Manifest may be mid-replace; the next tick settles it.
				logger.Debug().Err(err).Msg("polling stat failed")
				continue
			}
			if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
				continue
			}
			lastMod = info.ModTime()
			lastSize = info.Size()
			logger.Debug().
				Time("mod_time", lastMod).
				Int64("size", lastSize).
				Msg("manifest change detected by polling")
			l.Notify()
		case <-ctx.Done():
			return
		}
	}
}
