package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
)

// std140 rounds uniform block sizes up to a vec4
const uniformAlignment = 16

func alignUniform(size int) int {
	return (size + uniformAlignment - 1) &^ (uniformAlignment - 1)
}

func glTopology(t gputypes.PrimitiveTopology) (uint32, error) {
	switch t {
	case gputypes.PrimitiveTopologyTriangleList:
		return gl.TRIANGLES, nil
	case gputypes.PrimitiveTopologyTriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case gputypes.PrimitiveTopologyLineList:
		return gl.LINES, nil
	case gputypes.PrimitiveTopologyLineStrip:
		return gl.LINE_STRIP, nil
	case gputypes.PrimitiveTopologyPointList:
		return gl.POINTS, nil
	}
	return 0, fmt.Errorf("unsupported topology %v", t)
}

func glCompare(c gputypes.CompareFunction) (uint32, error) {
	switch c {
	case gputypes.CompareFunctionNever:
		return gl.NEVER, nil
	case gputypes.CompareFunctionLess:
		return gl.LESS, nil
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL, nil
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL, nil
	case gputypes.CompareFunctionGreater:
		return gl.GREATER, nil
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL, nil
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL, nil
	case gputypes.CompareFunctionAlways:
		return gl.ALWAYS, nil
	}
	return 0, fmt.Errorf("unsupported compare function %v", c)
}

// glCull returns the face to cull; ok is false when culling is disabled
func glCull(m gputypes.CullMode) (face uint32, ok bool) {
	switch m {
	case gputypes.CullModeBack:
		return gl.BACK, true
	case gputypes.CullModeFront:
		return gl.FRONT, true
	}
	return 0, false
}

func glFrontFace(f gputypes.FrontFace) uint32 {
	if f == gputypes.FrontFaceCW {
		return gl.CW
	}
	return gl.CCW
}

// vertexFormat describes how a gputypes format maps onto glVertexAttrib*Pointer
type vertexFormat struct {
	components int32
	xtype      uint32
	integer    bool
}

func glVertexFormat(f gputypes.VertexFormat) (vertexFormat, error) {
	switch f {
	case gputypes.VertexFormatFloat32:
		return vertexFormat{1, gl.FLOAT, false}, nil
	case gputypes.VertexFormatFloat32x2:
		return vertexFormat{2, gl.FLOAT, false}, nil
	case gputypes.VertexFormatFloat32x3:
		return vertexFormat{3, gl.FLOAT, false}, nil
	case gputypes.VertexFormatFloat32x4:
		return vertexFormat{4, gl.FLOAT, false}, nil
	case gputypes.VertexFormatUint32:
		return vertexFormat{1, gl.UNSIGNED_INT, true}, nil
	case gputypes.VertexFormatUint32x2:
		return vertexFormat{2, gl.UNSIGNED_INT, true}, nil
	}
	return vertexFormat{}, fmt.Errorf("unsupported vertex format %v", f)
}

func glDepthFormat(f gputypes.TextureFormat) (uint32, error) {
	switch f {
	case gputypes.TextureFormatDepth24PlusStencil8:
		return gl.DEPTH24_STENCIL8, nil
	case gputypes.TextureFormatDepth32Float:
		return gl.DEPTH_COMPONENT32F, nil
	case gputypes.TextureFormatDepth24Plus:
		return gl.DEPTH_COMPONENT24, nil
	}
	return 0, fmt.Errorf("unsupported depth format %v", f)
}

// depthAttachment picks the framebuffer attachment point for a depth format
func depthAttachment(f gputypes.TextureFormat) uint32 {
	if f == gputypes.TextureFormatDepth24PlusStencil8 {
		return gl.DEPTH_STENCIL_ATTACHMENT
	}
	return gl.DEPTH_ATTACHMENT
}
