package opengl

import (
	"errors"
	"fmt"

	"voxel-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glErrorName names a glGetError code
func glErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	}
	return fmt.Sprintf("GL error 0x%04x", code)
}

// classify maps a GL error code onto the renderer taxonomy
func classify(op string, code uint32) error {
	if code == gl.OUT_OF_MEMORY {
		return fmt.Errorf("%s: %s: %w", op, glErrorName(code), renderer.ErrOutOfMemory)
	}
	return fmt.Errorf("%s: %s", op, glErrorName(code))
}

// checkError drains the GL error queue. Out of memory wins over other codes.
func checkError(op string) error {
	var errs []error
	for i := 0; i < 16; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		errs = append(errs, classify(op, code))
	}
	for _, err := range errs {
		if errors.Is(err, renderer.ErrOutOfMemory) {
			return err
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func framebufferStatusName(status uint32) string {
	switch status {
	case gl.FRAMEBUFFER_UNDEFINED:
		return "undefined"
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return "incomplete attachment"
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return "missing attachment"
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return "unsupported"
	case gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return "incomplete multisample"
	}
	return fmt.Sprintf("status 0x%04x", status)
}
