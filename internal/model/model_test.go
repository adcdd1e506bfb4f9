// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages_Order(t *testing.T) {
	assert.Equal(t, []Stage{StagePre, StageGeneration, StageTranspose, StageOptimization, StagePost}, Stages())
	assert.Equal(t, "transpose", StageTranspose.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage(" Optimization ")
	require.NoError(t, err)
	assert.Equal(t, StageOptimization, s)

	_, err = ParseStage("cleanup")
	assert.ErrorContains(t, err, `unknown stage "cleanup"`)

	var fromText Stage
	require.NoError(t, fromText.UnmarshalText([]byte("post")))
	assert.Equal(t, StagePost, fromText)

	_, err = Stage(-1).MarshalText()
	assert.Error(t, err)
}

func TestConstraint_IsImmutable(t *testing.T) {
	base := At(StageGeneration).After("a")
	derived := base.After("b").Before("c").On("play")

	assert.Equal(t, []Identifier{"a"}, base.AfterIDs())
	assert.Empty(t, base.BeforeIDs())
	assert.True(t, base.AllRuntimes())

	assert.Equal(t, []Identifier{"a", "b"}, derived.AfterIDs())
	assert.Equal(t, []Identifier{"c"}, derived.BeforeIDs())
	assert.Equal(t, []Runtime{"play"}, derived.Runtimes())

	after := derived.AfterIDs()
	after[0] = "mutated"
	assert.Equal(t, []Identifier{"a", "b"}, derived.AfterIDs(), "accessors return copies")
}

func TestConstraint_Dedupes(t *testing.T) {
	c := At(StagePre).After("x", "x").After("x").On("play", "play")
	assert.Equal(t, []Identifier{"x"}, c.AfterIDs())
	assert.Equal(t, []Runtime{"play"}, c.Runtimes())
	assert.Equal(t, []Identifier{"x"}, c.References())
}

func TestConstraint_Matches(t *testing.T) {
	open := At(StagePre)
	assert.True(t, open.Matches("play", StagePre))
	assert.True(t, open.Matches("upload", StagePre))
	assert.False(t, open.Matches("play", StagePost))

	restricted := At(StagePost).On("upload")
	assert.True(t, restricted.Matches("upload", StagePost))
	assert.False(t, restricted.Matches("play", StagePost))
}

func TestConstraint_String(t *testing.T) {
	c := At(StageTranspose).On("play", "upload").Before("b").After("a")
	assert.Equal(t, "stage=transpose runtimes=[play,upload] before=[b] after=[a]", c.String())
	assert.Equal(t, "stage=pre", At(StagePre).String())
}
