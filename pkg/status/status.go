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

package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// 📊 Outcome is the terminal state of one copy task.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCopied          // File was copied (new or overwritten)
	OutcomeSkipped         // Destination already present with matching size
	OutcomeFailed          // Source missing or copy error
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileResult is the terminal per-task outcome for one media file.
type FileResult struct {
	Source      string  // Absolute source path
	Destination string  // Absolute destination path
	Outcome     Outcome // Terminal outcome
	Bytes       int64   // Bytes copied (zero for skipped/failed)
	Err         error   // Failure reason when Outcome is OutcomeFailed
}

// 📚 RecordResult aggregates the per-file outcomes for one manifest record.
// It exists only for the duration of one processing pass.
type RecordResult struct {
	Record string       // Record label (short title)
	Files  []FileResult // Per-file outcomes, completion order
	Err    error        // Record-level failure (planning error)
}

// ✅ OK reports whether the record completed without any failure.
func (r RecordResult) OK() bool {
	if r.Err != nil {
		return false
	}
	for _, f := range r.Files {
		if f.Outcome == OutcomeFailed {
			return false
		}
	}
	return true
}

// 🧮 Counts returns the number of copied, skipped and failed files.
func (r RecordResult) Counts() (copied, skipped, failed int) {
	for _, f := range r.Files {
		switch f.Outcome {
		case OutcomeCopied:
			copied++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return copied, skipped, failed
}

// 📝 Summary returns the one-line per-record message collected into the run
// result.
func (r RecordResult) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: failed: %v", r.Record, r.Err)
	}
	copied, skipped, failed := r.Counts()
	if failed > 0 {
		return fmt.Sprintf("%s: %d copied, %d skipped, %d failed", r.Record, copied, skipped, failed)
	}
	return fmt.Sprintf("%s: %d copied, %d skipped", r.Record, copied, skipped)
}

// 🔧 Manager collects per-file and per-record outcomes across one processing
// pass and makes every outcome observable through the log.
type Manager struct {
	logger    *zerolog.Logger
	formatter FileFormatter

	mu      sync.Mutex
	records []RecordResult
}

// 🏭 NewManager creates a new status manager.
func NewManager(logger *zerolog.Logger, formatter FileFormatter) *Manager {
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &Manager{
		logger:    logger,
		formatter: formatter,
	}
}

// 🏁 StartRun begins tracking a processing pass over total records.
func (m *Manager) StartRun(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	m.logger.Info().Int("records", total).Msg("run started")
}

// 📄 FileDone reports one terminal per-task outcome. Log line order reflects
// completion order, not manifest order.
func (m *Manager) FileDone(ctx context.Context, res FileResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := m.formatter.FormatFileOutcome(res)
	switch res.Outcome {
	case OutcomeFailed:
		m.logger.Error().
			Str("source", res.Source).
			Str("destination", res.Destination).
			Err(res.Err).
			Msg(msg)
	default:
		m.logger.Info().
			Str("source", res.Source).
			Str("destination", res.Destination).
			Str("outcome", res.Outcome.String()).
			Int64("bytes", res.Bytes).
			Msg(msg)
	}
}

// 📚 RecordDone reports one record's aggregate result.
func (m *Manager) RecordDone(ctx context.Context, res RecordResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, res)
	evt := m.logger.Info()
	if !res.OK() {
		evt = m.logger.Error()
	}
	evt.Str("record", res.Record).Msg(res.Summary())
}

// 🏁 FinishRun ends the pass and returns the collected record results.
func (m *Manager) FinishRun(ctx context.Context) []RecordResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	var copied, skipped, failed int
	for _, r := range m.records {
		c, s, f := r.Counts()
		copied += c
		skipped += s
		failed += f
	}
	m.logger.Info().
		Int("records", len(m.records)).
		Int("copied", copied).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("run complete")

	out := make([]RecordResult, len(m.records))
	copy(out, m.records)
	m.records = nil
	return out
}
