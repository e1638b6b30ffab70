package port

import (
	"context"

	"vision-inspector/internal/domain/entity"
)

// Detector движок поиска дефектов по кадру
type Detector interface {
	// Load загружает модель и таблицу имён классов.
	Load(modelPath, namesPath string) error

	// Reload атомарно подменяет активную модель.
	Reload(modelPath, namesPath string) error

	// Unload выгружает модель. Повторные вызовы безопасны.
	Unload()

	// Loaded сообщает, загружена ли модель.
	Loaded() bool

	// Analyze прогоняет кадр через модель и возвращает вердикт.
	// Сбои анализа возвращаются внутри результата, не паникой.
	Analyze(ctx context.Context, frame *entity.FrameBuffer) *entity.InferenceResult
}
