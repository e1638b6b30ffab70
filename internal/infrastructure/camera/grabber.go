package camera

import (
	"errors"
	"time"
)

var (
	// ErrSensorUnavailable сенсор не найден или не открылся; источник уходит в симуляцию.
	ErrSensorUnavailable = errors.New("sensor is unavailable")

	// errGrabTimeout за отведённое время кадр не пришёл; цикл продолжает опрос.
	errGrabTimeout = errors.New("frame grab timed out")

	// errBadFrame кадр пришёл битым или не того размера; кадр пропускается.
	errBadFrame = errors.New("malformed frame")
)

// streamInfo параметры согласованного потока кадров.
type streamInfo struct {
	Width, Height int
	Decision      FormatDecision
	SensorFormat  string // формат, который сообщил сенсор
}

// grabber низкоуровневый доступ к одному сенсору.
// Реализации не обязаны быть потокобезопасными: цикл захвата
// гарантирует, что grab не вызывается из двух контекстов одновременно.
type grabber interface {
	// open подключается к сенсору и согласует формат потока.
	open() (streamInfo, error)

	// grab ждёт следующий кадр не дольше timeout и пишет его в dst
	// (len(dst) == Width*Height*BytesPerPixel). Возвращает errGrabTimeout
	// при простое сенсора и errBadFrame для кадра, который надо пропустить.
	grab(dst []byte, timeout time.Duration) error

	// release останавливает поток и освобождает ресурсы сенсора. Идемпотентен.
	release()
}
