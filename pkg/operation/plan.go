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

package operation

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/manifest"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/template"
	"gitlab.com/tozd/go/errors"
)

// 📋 CopyTask is one planned file copy. Tasks are ephemeral: created per run
// and discarded after execution.
type CopyTask struct {
	Source      string // Absolute path under inputRoot/books
	Destination string // Absolute path under the record's target directory
}

// 📋 Plan is a record's resolved target directory plus its copy set.
type Plan struct {
	TargetDir string
	Tasks     []CopyTask
}

// 🗺️ plan resolves a record's target directory, creates it, and builds one
// CopyTask per eligible audio file. Directory creation is the only mutation
// performed here; MkdirAll is idempotent so concurrent records resolving to
// the same directory never conflict.
func (p *Processor) plan(ctx context.Context, rec manifest.Record) (Plan, error) {
	rel := template.Resolve(p.template, rec)
	targetDir := filepath.Join(p.outputRoot, filepath.FromSlash(rel))

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return Plan{}, errors.Errorf("creating target directory: %w", err)
	}

	var tasks []CopyTask
	for _, f := range rec.AudioFiles() {
		if p.shouldIgnore(ctx, f.RelativePath) {
			continue
		}
		tasks = append(tasks, CopyTask{
			Source:      filepath.Join(p.inputRoot, manifest.BooksDirName, filepath.FromSlash(f.RelativePath)),
			Destination: filepath.Join(targetDir, filepath.Base(filepath.FromSlash(f.RelativePath))),
		})
	}

	return Plan{TargetDir: targetDir, Tasks: tasks}, nil
}

// 🔍 shouldIgnore checks if a media file should be skipped by pattern
func (p *Processor) shouldIgnore(ctx context.Context, relPath string) bool {
	if len(p.ignorePatterns) == 0 {
		return false
	}

	logger := zerolog.Ctx(ctx)
	for _, pattern := range p.ignorePatterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("path", relPath).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			logger.Debug().Str("file", relPath).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}

	return false
}
