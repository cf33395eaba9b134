package opengl

import (
	"errors"
	"testing"

	"voxel-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignUniform(t *testing.T) {
	assert.Equal(t, 80, alignUniform(80))
	assert.Equal(t, 32, alignUniform(24))
	assert.Equal(t, 4096, alignUniform(4096))
	assert.Equal(t, 16, alignUniform(1))
}

func TestCompareMapping(t *testing.T) {
	fn, err := glCompare(gputypes.CompareFunctionLess)
	require.NoError(t, err)
	assert.Equal(t, uint32(gl.LESS), fn)

	fn, err = glCompare(gputypes.CompareFunctionAlways)
	require.NoError(t, err)
	assert.Equal(t, uint32(gl.ALWAYS), fn)
}

func TestCullMapping(t *testing.T) {
	_, ok := glCull(gputypes.CullModeNone)
	assert.False(t, ok)

	face, ok := glCull(gputypes.CullModeBack)
	assert.True(t, ok)
	assert.Equal(t, uint32(gl.BACK), face)

	assert.Equal(t, uint32(gl.CCW), glFrontFace(gputypes.FrontFaceCCW))
	assert.Equal(t, uint32(gl.CW), glFrontFace(gputypes.FrontFaceCW))
}

func TestVertexFormatMapping(t *testing.T) {
	pos, err := glVertexFormat(gputypes.VertexFormatFloat32x3)
	require.NoError(t, err)
	assert.Equal(t, vertexFormat{3, gl.FLOAT, false}, pos)

	axis, err := glVertexFormat(gputypes.VertexFormatUint32)
	require.NoError(t, err)
	assert.True(t, axis.integer, "integer attributes need glVertexAttribIPointer")
}

func TestDepthFormatMapping(t *testing.T) {
	f, err := glDepthFormat(gputypes.TextureFormatDepth24PlusStencil8)
	require.NoError(t, err)
	assert.Equal(t, uint32(gl.DEPTH24_STENCIL8), f)
	assert.Equal(t, uint32(gl.DEPTH_STENCIL_ATTACHMENT), depthAttachment(gputypes.TextureFormatDepth24PlusStencil8))

	_, err = glDepthFormat(gputypes.TextureFormatRGBA8Unorm)
	assert.Error(t, err)
}

func TestClassifyOutOfMemory(t *testing.T) {
	err := classify("submit", gl.OUT_OF_MEMORY)
	assert.True(t, errors.Is(err, renderer.ErrOutOfMemory))
	assert.Contains(t, err.Error(), "GL_OUT_OF_MEMORY")

	err = classify("submit", gl.INVALID_OPERATION)
	assert.False(t, errors.Is(err, renderer.ErrOutOfMemory))
	assert.Contains(t, err.Error(), "GL_INVALID_OPERATION")
}
