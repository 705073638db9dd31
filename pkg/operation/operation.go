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
	"path/filepath"

	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/manifest"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains configuration for the processor. All values arrive
// already validated by the caller.
type Options struct {
	// InputRoot contains the manifest and the books/ media directory
	InputRoot string
	// OutputRoot is the destination library tree
	OutputRoot string
	// Template is the destination path pattern, e.g. "{author}/{title_short}"
	Template string
	// IgnorePatterns are doublestar globs matched against a media file's
	// manifest-relative path; matching files are never copied
	IgnorePatterns []string
	// Status collects per-file and per-record outcomes
	Status *status.Manager
}

// 🎮 Processor runs one full pass over the manifest: plan and execute the
// copy set of every record concurrently, then aggregate results.
type Processor struct {
	inputRoot      string
	outputRoot     string
	template       string
	ignorePatterns []string
	status         *status.Manager
}

// 🏭 New creates a new processor with the given options.
func New(opts Options) (*Processor, error) {
	if opts.InputRoot == "" {
		return nil, errors.Errorf("input root is required")
	}
	if opts.OutputRoot == "" {
		return nil, errors.Errorf("output root is required")
	}
	if opts.Template == "" {
		return nil, errors.Errorf("template is required")
	}
	if opts.Status == nil {
		return nil, errors.Errorf("status manager is required")
	}
	return &Processor{
		inputRoot:      opts.InputRoot,
		outputRoot:     opts.OutputRoot,
		template:       opts.Template,
		ignorePatterns: opts.IgnorePatterns,
		status:         opts.Status,
	}, nil
}

// 📍 ManifestPath returns the fixed manifest location under the input root.
func (p *Processor) ManifestPath() string {
	return filepath.Join(p.inputRoot, manifest.DefaultName)
}
