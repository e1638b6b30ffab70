package port

import (
	"vision-inspector/internal/domain/entity"
)

// FrameSource источник кадров с управлением жизненным циклом.
// Каналы событий буферизованы; доставка не блокирует цикл захвата,
// лишние события при медленном потребителе отбрасываются.
type FrameSource interface {
	// Start запускает цикл захвата асинхронно. Повторный вызов во время работы — no-op.
	Start()

	// Stop останавливает цикл и освобождает ресурсы сенсора. Идемпотентен.
	Stop()

	// State возвращает текущее состояние источника.
	State() entity.SourceState

	// Frames канал опубликованных кадров.
	Frames() <-chan *entity.FrameBuffer

	// StatusChanges канал сообщений о смене режима.
	StatusChanges() <-chan string

	// Errors канал несмертельных ошибок захвата.
	Errors() <-chan string
}
