package status

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-friendly console feedback about sync activity,
// alongside the structured zerolog output.
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 🏁 LogRunStarted announces the start of a processing pass.
func (u *UserLogger) LogRunStarted(records int) {
	msg := fmt.Sprintf("Syncing %d records", records)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📚"}).Println(msg)
	u.log.Info().Int("records", records).Msg(msg)
}

// 🏁 LogRunComplete announces the end of a processing pass.
func (u *UserLogger) LogRunComplete(results []RecordResult) {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		msg := fmt.Sprintf("Sync finished with %d of %d records failing", failed, len(results))
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
		u.log.Warn().Int("failed", failed).Msg(msg)
		return
	}
	msg := fmt.Sprintf("Sync finished, %d records up to date", len(results))
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(msg)
	u.log.Info().Msg(msg)
}

// 👀 LogWatchTriggered announces a qualifying manifest change.
func (u *UserLogger) LogWatchTriggered(path string) {
	msg := fmt.Sprintf("Manifest changed: %s", path)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "👀"}).Println(msg)
	u.log.Info().Str("path", path).Msg(msg)
}

// 🛑 LogShutdown announces a graceful shutdown.
func (u *UserLogger) LogShutdown() {
	msg := "Shutting down"
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🛑"}).Println(msg)
	u.log.Info().Msg(msg)
}

// ❌ LogRunError announces a run-level failure (manifest unreadable or
// unparseable); the watch loop stays alive.
func (u *UserLogger) LogRunError(err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Sync pass failed")
	pterm.Error.Println(err)
	u.log.Error().Err(err).Msg("sync pass failed")
}
