// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

// Identifier names a pass or plugin. It must be unique within one registry.
type Identifier string

// String implements fmt.Stringer.
func (id Identifier) String() string {
	return string(id)
}

// Runtime tags the external caller driving a build, e.g. "play" or "upload".
type Runtime string

// String implements fmt.Stringer.
func (r Runtime) String() string {
	return string(r)
}

// dedupe returns a copy of in with duplicates removed, keeping the first
// occurrence of every value.
func dedupe[T comparable](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
