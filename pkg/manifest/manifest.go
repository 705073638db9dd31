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

// Package manifest loads and parses the OpenAudible books.json manifest.
package manifest

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📛 DefaultName is the manifest filename OpenAudible writes into its root.
const DefaultName = "books.json"

// 📁 BooksDirName is the subdirectory of the input root holding the media files.
const BooksDirName = "books"

// 🎵 File kinds as they appear in the manifest.
const (
	KindAudio = "audio"
	KindOther = "other"
)

// 📄 MediaFile is one file reference within a Record.
type MediaFile struct {
	RelativePath string `json:"path"`
	Kind         string `json:"kind"`
	MediaType    string `json:"media_type"`
}

// 🔍 IsAudio reports whether this file participates in copying.
func (f MediaFile) IsAudio() bool {
	return f.Kind == KindAudio
}

// 📚 Record is one catalog entry (one audiobook). Records are value types:
// parsed fresh on every manifest load and never mutated afterwards.
type Record struct {
	Author          string  `json:"author"`
	NarratedBy      string  `json:"narrated_by"`
	Title           string  `json:"title"`
	TitleShort      string  `json:"title_short"`
	ASIN            string  `json:"asin"`
	ISBN            string  `json:"isbn"`
	Publisher       string  `json:"publisher"`
	PurchaseDate    string  `json:"purchase_date"`
	ReleaseDate     string  `json:"release_date"`
	Genre           string  `json:"genre"`
	SeriesName      string  `json:"series_name"`
	SeriesSequence  string  `json:"series_sequence"`
	Language        string  `json:"language"`
	RatingAverage   float64 `json:"rating_average"`
	DurationMinutes int     `json:"duration_minutes"`

	Files []MediaFile `json:"files"`
}

// 🎵 AudioFiles returns the subset of files with kind "audio".
func (r Record) AudioFiles() []MediaFile {
	var out []MediaFile
	for _, f := range r.Files {
		if f.IsAudio() {
			out = append(out, f)
		}
	}
	return out
}

// 🏷️ Key returns a stable label for log output.
func (r Record) Key() string {
	if r.TitleShort != "" {
		return r.TitleShort
	}
	if r.Title != "" {
		return r.Title
	}
	if r.ASIN != "" {
		return r.ASIN
	}
	return "(untitled)"
}

// 📝 Parse parses a manifest from JSON bytes. The manifest is an ordered JSON
// array of records; unknown fields are tolerated since the format is owned by
// an external producer.
func Parse(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Errorf("parsing manifest JSON: %w", err)
	}
	return records, nil
}

// 🎯 Load reads the manifest file fully into memory and parses it.
func Load(ctx context.Context, path string) ([]Record, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading manifest file: %w", err)
	}

	records, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("records", len(records)).Msg("manifest parsed")
	return records, nil
}
