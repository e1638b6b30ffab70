package vision

import (
	"context"
	"fmt"
	"os"
	"sync"

	"vision-inspector/internal/domain/entity"
	"vision-inspector/internal/domain/port"
)

// defaultInputSize сторона входа модели, если метаданные не сообщают форму.
const defaultInputSize = 640

// ModelConfig параметры загруженной модели. Неизменяем после загрузки,
// при перезагрузке заменяется целиком вместе с сессией.
type ModelConfig struct {
	InputWidth          int
	InputHeight         int
	ConfidenceThreshold float64
	IoUThreshold        float64
	ClassNames          []string // индекс = classId
}

// Thresholds пороги фильтрации детекций.
type Thresholds struct {
	Confidence float64
	IoU        float64
}

func (t Thresholds) withDefaults() Thresholds {
	if t.Confidence <= 0 {
		t.Confidence = 0.25
	}
	if t.IoU <= 0 {
		t.IoU = 0.45
	}
	return t
}

// inferenceSession скрывает рантайм модели за узким интерфейсом:
// дисциплина блокировок детектора тестируется без нативной библиотеки.
type inferenceSession interface {
	// inputShape размер входа из метаданных модели; ok=false, если форма динамическая.
	inputShape() (width, height int, ok bool)

	// run один проход модели; отмена проверяется только на границах вызова.
	run(ctx context.Context, input []float32, width, height int) (out []float32, shape []int64, err error)

	// destroy освобождает ресурсы сессии.
	destroy()
}

// Detector держит эксклюзивный дескриптор модели детекции.
// Инференс берёт блокировку на чтение, load/unload/reload — на запись:
// подмена модели дожидается идущих инференсов и блокирует новые,
// поэтому наполовину загруженное состояние снаружи не наблюдаемо.
type Detector struct {
	thresholds  Thresholds
	openSession func(modelPath string) (inferenceSession, error) // подменяется в тестах

	mu   sync.RWMutex
	sess inferenceSession // nil — модель не загружена
	cfg  *ModelConfig
}

// NewDetector создаёт движок детекции с порогами из настроек.
func NewDetector(t Thresholds) *Detector {
	return &Detector{
		thresholds:  t.withDefaults(),
		openSession: openORTSession,
	}
}

// Load загружает модель и таблицу классов. Файлы читаются до захвата
// блокировки, чтобы идущие инференсы не ждали дисковых операций.
func (d *Detector) Load(modelPath, namesPath string) error {
	sess, cfg, err := d.prepare(modelPath, namesPath)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess != nil {
		d.sess.destroy()
	}
	d.sess, d.cfg = sess, cfg
	return nil
}

// Reload атомарно подменяет активную модель: идущие инференсы
// завершаются на старой модели, новые начинаются уже на новой.
func (d *Detector) Reload(modelPath, namesPath string) error {
	return d.Load(modelPath, namesPath)
}

func (d *Detector) prepare(modelPath, namesPath string) (inferenceSession, *ModelConfig, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	names, err := LoadClassNames(namesPath)
	if err != nil {
		return nil, nil, err
	}

	sess, err := d.openSession(modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrModelFile, err)
	}

	w, h, ok := sess.inputShape()
	if !ok {
		w, h = defaultInputSize, defaultInputSize
	}
	cfg := &ModelConfig{
		InputWidth:          w,
		InputHeight:         h,
		ConfidenceThreshold: d.thresholds.Confidence,
		IoUThreshold:        d.thresholds.IoU,
		ClassNames:          names,
	}
	return sess, cfg, nil
}

// Unload выгружает модель. Повторные вызовы безопасны; последующие
// инференсы деградируют мягко, а не падают.
func (d *Detector) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess != nil {
		d.sess.destroy()
		d.sess, d.cfg = nil, nil
	}
}

// Loaded сообщает, загружена ли модель.
func (d *Detector) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sess != nil
}

// Config возвращает параметры активной модели (nil, если не загружена).
func (d *Detector) Config() *ModelConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Analyze прогоняет кадр через модель: letterbox → инференс → декодирование
// → NMS → вердикт. Любой сбой возвращается в результате с вердиктом OK,
// чтобы случайный отказ рантайма не превратился в ложный NG.
func (d *Detector) Analyze(ctx context.Context, frame *entity.FrameBuffer) *entity.InferenceResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.sess == nil {
		return &entity.InferenceResult{Verdict: entity.VerdictOK, Error: ErrNotLoaded.Error()}
	}

	input, pl, err := Letterbox(frame, d.cfg.InputWidth, d.cfg.InputHeight)
	if err != nil {
		return &entity.InferenceResult{Verdict: entity.VerdictOK, Error: fmt.Sprintf("preprocess: %v", err)}
	}

	out, shape, err := d.sess.run(ctx, input, d.cfg.InputWidth, d.cfg.InputHeight)
	if err != nil {
		return &entity.InferenceResult{Verdict: entity.VerdictOK, Error: fmt.Sprintf("inference: %v", err)}
	}

	dets, err := DecodeDetections(out, shape, d.cfg, pl)
	if err != nil {
		return &entity.InferenceResult{Verdict: entity.VerdictOK, Error: fmt.Sprintf("postprocess: %v", err)}
	}
	dets = NonMaxSuppression(dets, d.cfg.IoUThreshold)

	verdict := entity.VerdictOK
	if len(dets) > 0 {
		verdict = entity.VerdictNG
	}
	return &entity.InferenceResult{Verdict: verdict, Detections: dets}
}

// Проверка реализации интерфейса
var _ port.Detector = (*Detector)(nil)
