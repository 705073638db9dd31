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

package operation_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/manifest"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/operation"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/status"
)

// 🧪 testEnv holds a disposable input/output tree and a wired processor
type testEnv struct {
	ctx        context.Context
	inputRoot  string
	outputRoot string
	proc       *operation.Processor
}

// 🧪 createTestEnv creates a test environment
func createTestEnv(t *testing.T, ignorePatterns ...string) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	inputRoot := filepath.Join(tmpDir, "in")
	outputRoot := filepath.Join(tmpDir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(inputRoot, manifest.BooksDirName), 0755))
	require.NoError(t, os.MkdirAll(outputRoot, 0755))

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	proc, err := operation.New(operation.Options{
		InputRoot:      inputRoot,
		OutputRoot:     outputRoot,
		Template:       "{author}/{title_short}",
		IgnorePatterns: ignorePatterns,
		Status:         status.NewManager(&logger, nil),
	})
	require.NoError(t, err, "creating processor should succeed")

	return &testEnv{ctx: ctx, inputRoot: inputRoot, outputRoot: outputRoot, proc: proc}
}

// 🧪 writeSource writes a media file under the input books directory
func (e *testEnv) writeSource(t *testing.T, relPath, content string) {
	t.Helper()
	path := filepath.Join(e.inputRoot, manifest.BooksDirName, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// 🧪 writeManifest writes books.json into the input root
func (e *testEnv) writeManifest(t *testing.T, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.inputRoot, manifest.DefaultName), []byte(data), 0644))
}

// 🧪 outcomes tallies terminal outcomes across a run result
func outcomes(results []status.RecordResult) (copied, skipped, failed int) {
	for _, r := range results {
		c, s, f := r.Counts()
		copied += c
		skipped += s
		failed += f
	}
	return copied, skipped, failed
}

// 🧪 TestNewValidation tests option validation
func TestNewValidation(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	mgr := status.NewManager(&logger, nil)

	tests := []struct {
		name        string
		opts        operation.Options
		errContains string
	}{
		{
			name:        "missing_input_root",
			opts:        operation.Options{OutputRoot: "b", Template: "{author}", Status: mgr},
			errContains: "input root is required",
		},
		{
			name:        "missing_output_root",
			opts:        operation.Options{InputRoot: "a", Template: "{author}", Status: mgr},
			errContains: "output root is required",
		},
		{
			name:        "missing_template",
			opts:        operation.Options{InputRoot: "a", OutputRoot: "b", Status: mgr},
			errContains: "template is required",
		},
		{
			name:        "missing_status_manager",
			opts:        operation.Options{InputRoot: "a", OutputRoot: "b", Template: "{author}"},
			errContains: "status manager is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := operation.New(tt.opts)
			require.Error(t, err, "should return error")
			assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
		})
	}
}

// 🧪 TestProcessCopiesAudioFiles tests a full pass over a fresh output tree
func TestProcessCopiesAudioFiles(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "psalm.m4b", "audio-bytes")
	env.writeSource(t, "psalm.jpg", "cover-bytes")
	env.writeManifest(t, `[{
		"author": "Becky Chambers",
		"title_short": "A Psalm for the Wild-Built",
		"files": [
			{"path": "psalm.m4b", "kind": "audio", "media_type": "audio/mp4"},
			{"path": "psalm.jpg", "kind": "other", "media_type": "image/jpeg"}
		]
	}]`)

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")
	require.Len(t, results, 1, "should have 1 record result")
	assert.True(t, results[0].OK(), "record should succeed")

	copied, skipped, failed := outcomes(results)
	assert.Equal(t, 1, copied, "only the audio file should be copied")
	assert.Zero(t, skipped, "nothing should be skipped")
	assert.Zero(t, failed, "nothing should fail")

	dest := filepath.Join(env.outputRoot, "Becky Chambers", "A Psalm for the Wild-Built", "psalm.m4b")
	content, err := os.ReadFile(dest)
	require.NoError(t, err, "destination file should exist")
	assert.Equal(t, "audio-bytes", string(content), "content should match source")

	_, err = os.Stat(filepath.Join(env.outputRoot, "Becky Chambers", "A Psalm for the Wild-Built", "psalm.jpg"))
	assert.True(t, os.IsNotExist(err), "non-audio files should not be copied")
}

// 🧪 TestProcessIdempotence tests that a second unchanged pass copies nothing
func TestProcessIdempotence(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "a.m4b", "aaa")
	env.writeSource(t, "b.mp3", "bbbb")
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [
			{"path": "a.m4b", "kind": "audio"},
			{"path": "b.mp3", "kind": "audio"}
		]
	}]`)

	first, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "first pass should succeed")
	copied, skipped, failed := outcomes(first)
	assert.Equal(t, 2, copied, "first pass should copy both files")
	assert.Zero(t, skipped, "first pass should skip nothing")
	assert.Zero(t, failed, "first pass should fail nothing")

	second, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "second pass should succeed")
	copied, skipped, failed = outcomes(second)
	assert.Zero(t, copied, "second pass should copy nothing")
	assert.Equal(t, 2, skipped, "second pass should skip everything")
	assert.Zero(t, failed, "second pass should fail nothing")
}

// 🧪 TestProcessSizeMismatchOverwrites tests overwrite on size difference
func TestProcessSizeMismatchOverwrites(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "a.m4b", strings.Repeat("s", 200))
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [{"path": "a.m4b", "kind": "audio"}]
	}]`)

	// Pre-seed a stale destination of a different size.
	destDir := filepath.Join(env.outputRoot, "X", "Y")
	require.NoError(t, os.MkdirAll(destDir, 0755))
	dest := filepath.Join(destDir, "a.m4b")
	require.NoError(t, os.WriteFile(dest, []byte(strings.Repeat("d", 100)), 0644))

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")
	copied, _, _ := outcomes(results)
	assert.Equal(t, 1, copied, "size mismatch should trigger a copy")

	info, err := os.Stat(dest)
	require.NoError(t, err, "destination should exist")
	assert.EqualValues(t, 200, info.Size(), "destination should have the source size")
}

// 🧪 TestProcessSameSizeDifferentContent tests the documented size-only heuristic
func TestProcessSameSizeDifferentContent(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "a.m4b", "same-size-1")
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [{"path": "a.m4b", "kind": "audio"}]
	}]`)

	destDir := filepath.Join(env.outputRoot, "X", "Y")
	require.NoError(t, os.MkdirAll(destDir, 0755))
	dest := filepath.Join(destDir, "a.m4b")
	require.NoError(t, os.WriteFile(dest, []byte("same-size-2"), 0644))

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")
	_, skipped, _ := outcomes(results)
	assert.Equal(t, 1, skipped, "equal sizes are treated as synchronized")

	content, err := os.ReadFile(dest)
	require.NoError(t, err, "destination should exist")
	assert.Equal(t, "same-size-2", string(content), "same-size content is never re-copied")
}

// 🧪 TestProcessMissingSourceDoesNotAbortSiblings tests task failure isolation
func TestProcessMissingSourceDoesNotAbortSiblings(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "exists.m4b", "xx")
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [
			{"path": "missing.m4b", "kind": "audio"},
			{"path": "exists.m4b", "kind": "audio"}
		]
	}]`)

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "missing source must not escalate to a run failure")
	require.Len(t, results, 1, "should have 1 record result")
	assert.False(t, results[0].OK(), "record should report partial failure")

	copied, skipped, failed := outcomes(results)
	assert.Equal(t, 1, copied, "sibling file should still be copied")
	assert.Zero(t, skipped, "nothing should be skipped")
	assert.Equal(t, 1, failed, "missing source should fail")
	assert.Contains(t, results[0].Summary(), "1 failed", "summary should surface the failure")

	_, err = os.Stat(filepath.Join(env.outputRoot, "X", "Y", "exists.m4b"))
	assert.NoError(t, err, "sibling destination should exist")
}

// 🧪 TestProcessRecordIsolation tests that one record's failure leaves others intact
func TestProcessRecordIsolation(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "good.m4b", "gg")
	env.writeManifest(t, `[
		{"author": "A", "title_short": "Bad", "files": [{"path": "gone.m4b", "kind": "audio"}]},
		{"author": "B", "title_short": "Good", "files": [{"path": "good.m4b", "kind": "audio"}]}
	]`)

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")
	require.Len(t, results, 2, "should have 2 record results")

	byRecord := map[string]status.RecordResult{}
	for _, r := range results {
		byRecord[r.Record] = r
	}
	assert.False(t, byRecord["Bad"].OK(), "failing record should report failure")
	assert.True(t, byRecord["Good"].OK(), "other record should be unaffected")
}

// 🧪 TestProcessIgnorePatterns tests doublestar filtering of media files
func TestProcessIgnorePatterns(t *testing.T) {
	env := createTestEnv(t, "**/*.aax")
	env.writeSource(t, "keep.m4b", "kk")
	env.writeSource(t, "drm/skip.aax", "ss")
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [
			{"path": "keep.m4b", "kind": "audio"},
			{"path": "drm/skip.aax", "kind": "audio"}
		]
	}]`)

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")
	copied, _, failed := outcomes(results)
	assert.Equal(t, 1, copied, "only the non-ignored file should be copied")
	assert.Zero(t, failed, "ignored files should not even be attempted")
}

// 🧪 TestProcessMissingFieldTemplate tests the undefined path segment
func TestProcessMissingFieldTemplate(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "a.m4b", "xx")
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [{"path": "a.m4b", "kind": "audio"}]
	}]`)

	logger := zerolog.New(zerolog.NewTestWriter(t))
	proc, err := operation.New(operation.Options{
		InputRoot:  env.inputRoot,
		OutputRoot: env.outputRoot,
		Template:   "{nonexistent_field}/{title_short}",
		Status:     status.NewManager(&logger, nil),
	})
	require.NoError(t, err, "creating processor should succeed")

	_, err = proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")

	_, err = os.Stat(filepath.Join(env.outputRoot, "undefined", "Y", "a.m4b"))
	assert.NoError(t, err, "unknown placeholder should resolve to an undefined segment")
}

// 🧪 TestProcessMalformedManifest tests run-level failure
func TestProcessMalformedManifest(t *testing.T) {
	env := createTestEnv(t)
	env.writeManifest(t, `[{"author": "X"`)

	_, err := env.proc.Process(env.ctx)
	require.Error(t, err, "malformed manifest should abort the pass")
	assert.Contains(t, err.Error(), "parsing manifest JSON", "error should be structural")
}

// 🧪 TestProcessNestedSourcePaths tests flattening into the target directory
func TestProcessNestedSourcePaths(t *testing.T) {
	env := createTestEnv(t)
	env.writeSource(t, "nested/dir/part1.mp3", "p1")
	env.writeManifest(t, `[{
		"author": "X",
		"title_short": "Y",
		"files": [{"path": "nested/dir/part1.mp3", "kind": "audio"}]
	}]`)

	results, err := env.proc.Process(env.ctx)
	require.NoError(t, err, "process should succeed")
	copied, _, _ := outcomes(results)
	assert.Equal(t, 1, copied, "nested source should be copied")

	_, err = os.Stat(filepath.Join(env.outputRoot, "X", "Y", "part1.mp3"))
	assert.NoError(t, err, "destination should use the source basename")
}
