package entity

import (
	"fmt"
	"time"
)

// PixelFormat канонический формат пикселей кадра
type PixelFormat string

const (
	PixelFormatMono8  PixelFormat = "mono8"  // один канал, 1 байт на пиксель
	PixelFormatBGR24  PixelFormat = "bgr24"  // упакованный цвет, 3 байта на пиксель
	PixelFormatBGRA32 PixelFormat = "bgra32" // упакованный цвет с альфой, 4 байта на пиксель
)

// BytesPerPixel возвращает размер одного пикселя в байтах (0 для неизвестного формата).
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatMono8:
		return 1
	case PixelFormatBGR24:
		return 3
	case PixelFormatBGRA32:
		return 4
	default:
		return 0
	}
}

// FrameBuffer неизменяемый снимок одного кадра.
// После публикации буфер никому не принадлежит, кроме получателя:
// цикл захвата не хранит ссылок на него.
type FrameBuffer struct {
	ID          string      // уникальный идентификатор кадра
	Seq         uint64      // порядковый номер в рамках сессии захвата
	Width       int         // ширина в пикселях
	Height      int         // высота в пикселях
	StrideBytes int         // длина строки в байтах
	Format      PixelFormat // канонический формат пикселей
	Pixels      []byte      // len == StrideBytes*Height
	Timestamp   time.Time   // момент получения кадра
	Simulated   bool        // кадр сгенерирован, а не получен с сенсора
}

// Validate проверяет инварианты буфера кадра.
func (fb *FrameBuffer) Validate() error {
	bpp := fb.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("frame %s: unknown pixel format %q", fb.ID, fb.Format)
	}
	if fb.Width <= 0 || fb.Height <= 0 {
		return fmt.Errorf("frame %s: invalid size %dx%d", fb.ID, fb.Width, fb.Height)
	}
	if fb.StrideBytes < fb.Width*bpp {
		return fmt.Errorf("frame %s: stride %d is less than row size %d", fb.ID, fb.StrideBytes, fb.Width*bpp)
	}
	if len(fb.Pixels) != fb.StrideBytes*fb.Height {
		return fmt.Errorf("frame %s: pixel buffer is %d bytes, want %d", fb.ID, len(fb.Pixels), fb.StrideBytes*fb.Height)
	}
	return nil
}
