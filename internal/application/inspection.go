package app

import (
	"context"
	"errors"
	"sync/atomic"

	"vision-inspector/internal/domain/entity"
	"vision-inspector/internal/domain/port"
)

// TickResult итог одного такта проверки для внешнего таймера.
type TickResult struct {
	Verdict        entity.Verdict
	DetectionCount int
	Status         string
	Error          string
	Skipped        bool                    // такт пропущен: предыдущий анализ ещё идёт
	Result         *entity.InferenceResult // полный результат (nil, если анализ не выполнялся)
}

// InspectionService координирует «последний кадр → модель → вердикт».
// Анализы не ставятся в очередь: пока один идёт, остальные такты
// пропускаются (single-flight).
type InspectionService struct {
	detector  port.Detector
	modelPath string
	namesPath string

	latest    atomic.Pointer[entity.FrameBuffer]
	analyzing atomic.Bool
}

// NewInspectionService создаёт координатор проверки.
// Пути к модели нужны для ленивой загрузки: файлы могут появиться
// в каталоге уже после старта приложения.
func NewInspectionService(detector port.Detector, modelPath, namesPath string) *InspectionService {
	return &InspectionService{
		detector:  detector,
		modelPath: modelPath,
		namesPath: namesPath,
	}
}

// Watch читает кадры источника и запоминает последний. Возвращается
// после закрытия канала или отмены контекста. Подменяется только
// ссылка на неизменяемый буфер, поэтому «рваных» чтений не бывает,
// а слегка устаревший кадр — допустимая цена.
func (s *InspectionService) Watch(ctx context.Context, frames <-chan *entity.FrameBuffer) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			s.latest.Store(f)
		}
	}
}

// LatestFrame последний полученный кадр (nil, если кадров ещё не было).
func (s *InspectionService) LatestFrame() *entity.FrameBuffer {
	return s.latest.Load()
}

// Tick выполняет один такт проверки и возвращает вердикт.
// Если предыдущий анализ ещё не завершён, такт пропускается.
func (s *InspectionService) Tick(ctx context.Context) TickResult {
	if !s.analyzing.CompareAndSwap(false, true) {
		return TickResult{Verdict: entity.VerdictOK, Status: "analysis in progress", Skipped: true}
	}
	defer s.analyzing.Store(false)

	frame := s.latest.Load()
	if frame == nil {
		return TickResult{Verdict: entity.VerdictOK, Status: "waiting for first frame"}
	}

	if !s.detector.Loaded() {
		// ленивая загрузка: настройки могли дописать файлы модели позже
		if err := s.detector.Load(s.modelPath, s.namesPath); err != nil {
			return TickResult{Verdict: entity.VerdictOK, Status: "no model", Error: err.Error()}
		}
	}

	res := s.detector.Analyze(ctx, frame)
	if errors.Is(ctx.Err(), context.Canceled) {
		// отмена — штатный путь завершения, в ошибки не попадает
		return TickResult{Verdict: entity.VerdictOK, Status: "cancelled"}
	}
	return TickResult{
		Verdict:        res.Verdict,
		DetectionCount: len(res.Detections),
		Status:         "analyzed",
		Error:          res.Error,
		Result:         res,
	}
}
