// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"strings"
)

// Stage is one phase of the pipeline. The zero value is StagePre.
type Stage int

const (
	// StagePre runs before anything is generated. It is the default
	// checkpoint stage observed by the cross-runtime order monitor.
	StagePre Stage = iota
	// StageGeneration creates new build artifacts.
	StageGeneration
	// StageTranspose converts artifacts between representations.
	StageTranspose
	// StageOptimization shrinks or merges what earlier stages produced.
	StageOptimization
	// StagePost runs last, after the build output is final.
	StagePost
)

var stageNames = [...]string{
	StagePre:          "pre",
	StageGeneration:   "generation",
	StageTranspose:    "transpose",
	StageOptimization: "optimization",
	StagePost:         "post",
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	out := make([]Stage, len(stageNames))
	for i := range stageNames {
		out[i] = Stage(i)
	}
	return out
}

// Valid reports whether s is a member of the enumeration.
func (s Stage) Valid() bool {
	return s >= 0 && int(s) < len(stageNames)
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage converts a case-insensitive stage name into a Stage.
func ParseStage(name string) (Stage, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range stageNames {
		if candidate == n {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q: must be one of %s", name, strings.Join(stageNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
