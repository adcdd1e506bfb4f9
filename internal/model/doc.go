// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the vocabulary shared by every layer of the pipeline:
// pass identifiers, the closed set of execution stages, runtime tags, and the
// ordering constraint a pass (or plugin) declares.
//
// # Core Concepts
//
//   - Identifier: the only way one pass refers to another. Ordering edges are
//     identifier pairs, never pointers.
//
//   - Stage: a phase of the pipeline. Stages run strictly in enumeration order
//     and ordering constraints only apply within a single stage.
//
//   - Runtime: the external caller currently driving the pipeline. A
//     constraint may restrict a pass to a subset of runtimes.
//
//   - Constraint: the immutable (stage, runtimes, before, after) declaration
//     attached to a pass. All builder methods return a fresh copy, so a
//     constraint handed to the scheduler can never be changed underneath it.
package model
