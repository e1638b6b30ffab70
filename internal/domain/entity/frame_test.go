package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validFrame() *FrameBuffer {
	return &FrameBuffer{
		ID:          "f-1",
		Width:       4,
		Height:      2,
		StrideBytes: 4,
		Format:      PixelFormatMono8,
		Pixels:      make([]byte, 8),
	}
}

func TestFrameBufferValidate(t *testing.T) {
	require.NoError(t, validFrame().Validate())
}

func TestFrameBufferValidateUnknownFormat(t *testing.T) {
	fb := validFrame()
	fb.Format = "yuv422"
	require.Error(t, fb.Validate())
}

func TestFrameBufferValidateBadStride(t *testing.T) {
	fb := validFrame()
	fb.StrideBytes = 3
	require.Error(t, fb.Validate())
}

func TestFrameBufferValidateBadPixelLength(t *testing.T) {
	fb := validFrame()
	fb.Pixels = make([]byte, 7)
	require.Error(t, fb.Validate())
}

func TestFrameBufferValidateStridePadding(t *testing.T) {
	// выровненная строка шире видимой части — это допустимо
	fb := validFrame()
	fb.StrideBytes = 8
	fb.Pixels = make([]byte, 16)
	require.NoError(t, fb.Validate())
}

func TestBytesPerPixel(t *testing.T) {
	require.Equal(t, 1, PixelFormatMono8.BytesPerPixel())
	require.Equal(t, 3, PixelFormatBGR24.BytesPerPixel())
	require.Equal(t, 4, PixelFormatBGRA32.BytesPerPixel())
	require.Equal(t, 0, PixelFormat("nv12").BytesPerPixel())
}
