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

// Package template expands path patterns like "{author}/{title_short}" into
// concrete relative directory paths using a manifest record's fields.
package template

import (
	"regexp"

	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/manifest"
)

// 🚫 MissingValue is substituted for placeholders naming an unrecognized
// field. Mirrors the behavior library users rely on: resolution never fails,
// the bad segment just shows up literally in the output tree.
const MissingValue = "undefined"

// 🔍 placeholderPattern matches {identifier} where identifier is a run of
// word characters.
var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// 🎯 Resolve substitutes each placeholder in pattern with the string form of
// the corresponding record field. Substitution is strictly positional:
// literal text and separators between placeholders are preserved, and
// repeated placeholders all resolve to the same value. Resolve is a pure
// function of its inputs.
func Resolve(pattern string, rec manifest.Record) string {
	return placeholderPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := rec.Field(name); ok {
			return value
		}
		return MissingValue
	})
}

// 📝 Placeholders returns the placeholder names in pattern, in order of
// appearance, duplicates included.
func Placeholders(pattern string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(pattern, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
