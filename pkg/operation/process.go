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
	"sync"

	"github.com/rs/zerolog"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/manifest"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/status"
	"golang.org/x/sync/errgroup"
)

// 🏃 Process runs one full pass: load and parse the manifest, fan out the
// copy set of every record concurrently, and return once every task has
// reached a terminal outcome.
//
// Errors are contained at the smallest scope that preserves forward
// progress: task failures never escalate to record failures, record
// failures never escalate to run failures. Only a structural failure
// (manifest unreadable or unparseable) is returned as an error.
func (p *Processor) Process(ctx context.Context) ([]status.RecordResult, error) {
	logger := zerolog.Ctx(ctx)

	records, err := manifest.Load(ctx, p.ManifestPath())
	if err != nil {
		return nil, err
	}

	p.status.StartRun(ctx, len(records))

	// Unbounded fan-out is fine at manifest scale; copy targets are local
	// or mounted filesystems.
	results := make([]status.RecordResult, len(records))
	g := new(errgroup.Group)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			res := p.processRecord(ctx, rec)
			p.status.RecordDone(ctx, res)
			results[i] = res
			return nil
		})
	}
	// Record goroutines always return nil; errors are carried in results.
	_ = g.Wait()

	p.status.FinishRun(ctx)
	logger.Debug().Int("records", len(results)).Msg("processing pass complete")
	return results, nil
}

// 📚 processRecord plans one record's copy set and executes its tasks
// concurrently. A planning failure becomes a record-level result; per-task
// failures are collected without aborting sibling tasks.
func (p *Processor) processRecord(ctx context.Context, rec manifest.Record) status.RecordResult {
	res := status.RecordResult{Record: rec.Key()}

	plan, err := p.plan(ctx, rec)
	if err != nil {
		res.Err = err
		return res
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	for _, task := range plan.Tasks {
		task := task
		g.Go(func() error {
			fileRes := p.executeTask(ctx, task)
			p.status.FileDone(ctx, fileRes)
			mu.Lock()
			res.Files = append(res.Files, fileRes)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return res
}
