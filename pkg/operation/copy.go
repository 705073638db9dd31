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
	"io"
	"os"

	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🏃 executeTask performs one planned copy and returns its terminal outcome.
// Policy, per task:
//  1. source missing            → failed (siblings unaffected)
//  2. destination missing       → copy
//  3. sizes equal               → skipped (size-only heuristic: same-size
//     files with different content are treated as already synchronized)
//  4. sizes differ              → copy, overwriting the destination
func (p *Processor) executeTask(ctx context.Context, task CopyTask) status.FileResult {
	res := status.FileResult{
		Source:      task.Source,
		Destination: task.Destination,
	}

	srcInfo, err := os.Stat(task.Source)
	if err != nil {
		res.Outcome = status.OutcomeFailed
		if os.IsNotExist(err) {
			res.Err = errors.Errorf("source missing: %s", task.Source)
		} else {
			res.Err = errors.Errorf("statting source: %w", err)
		}
		return res
	}

	dstInfo, err := os.Stat(task.Destination)
	if err == nil && dstInfo.Size() == srcInfo.Size() {
		res.Outcome = status.OutcomeSkipped
		return res
	}

	written, err := copyFileAtomic(task.Source, task.Destination)
	if err != nil {
		res.Outcome = status.OutcomeFailed
		res.Err = err
		return res
	}

	res.Outcome = status.OutcomeCopied
	res.Bytes = written
	return res
}

// 📄 copyFileAtomic copies src to dst via a temp file and rename, so the
// destination is never observable in a half-written state.
func copyFileAtomic(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	tempPath := dst + ".tmp"
	tempFile, err := os.Create(tempPath)
	if err != nil {
		return 0, errors.Errorf("creating temp file: %w", err)
	}

	written, err := io.Copy(tempFile, srcFile)
	if err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return 0, errors.Errorf("copying file content: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return 0, errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, dst); err != nil {
		os.Remove(tempPath)
		return 0, errors.Errorf("renaming temp file: %w", err)
	}

	return written, nil
}
