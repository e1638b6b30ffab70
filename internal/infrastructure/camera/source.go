package camera

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vision-inspector/internal/domain/entity"
	"vision-inspector/internal/domain/port"
)

// Options параметры источника кадров.
type Options struct {
	DeviceID    string        // идентификатор устройства (индекс или путь)
	GrabTimeout time.Duration // таймаут ожидания одного кадра
	StopGrace   time.Duration // сколько ждём выхода цикла при Stop
	SimWidth    int           // размер синтетического кадра
	SimHeight   int
	SimInterval time.Duration // период генерации синтетических кадров
	EventBuffer int           // ёмкость каналов событий
}

func (o Options) withDefaults() Options {
	if o.DeviceID == "" {
		o.DeviceID = "0"
	}
	if o.GrabTimeout <= 0 {
		o.GrabTimeout = 5 * time.Second
	}
	if o.StopGrace <= 0 {
		o.StopGrace = 2 * time.Second
	}
	if o.SimWidth <= 0 {
		o.SimWidth = 640
	}
	if o.SimHeight <= 0 {
		o.SimHeight = 480
	}
	if o.SimInterval <= 0 {
		o.SimInterval = 30 * time.Millisecond
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 16
	}
	return o
}

type scratchKey struct {
	w, h   int
	format entity.PixelFormat
}

// Source захват кадров с реального сенсора с откатом в симуляцию.
// Одновременно работает не больше одного цикла захвата.
type Source struct {
	opts       Options
	newGrabber func(deviceID string) grabber // фабрика реального захвата; подменяется в тестах

	frames chan *entity.FrameBuffer
	status chan string
	errs   chan string

	mu     sync.Mutex // охраняет state и поля жизненного цикла ниже
	state  entity.SourceState
	cancel context.CancelFunc
	done   chan struct{}
	active grabber // текущий захват; нужен Stop для принудительного release

	// retrieveMu токен единственного получателя: запросы кадров к сенсору
	// никогда не идут из двух контекстов одновременно.
	retrieveMu sync.Mutex

	// scratch переиспользуемые буферы конвертации по (w, h, формат).
	// Трогает только горутина цикла захвата.
	scratch map[scratchKey][]byte

	emitted uint64 // опубликовано кадров (atomic)
	dropped uint64 // отброшено событий из-за медленного потребителя (atomic)
}

// NewSource создаёт источник кадров.
func NewSource(opts Options) *Source {
	opts = opts.withDefaults()
	return &Source{
		opts:       opts,
		newGrabber: newSensorGrabber,
		frames:     make(chan *entity.FrameBuffer, opts.EventBuffer),
		status:     make(chan string, opts.EventBuffer),
		errs:       make(chan string, opts.EventBuffer),
		state:      entity.SourceIdle,
		scratch:    make(map[scratchKey][]byte),
	}
}

// State возвращает текущее состояние источника.
func (s *Source) State() entity.SourceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Frames канал опубликованных кадров.
func (s *Source) Frames() <-chan *entity.FrameBuffer { return s.frames }

// StatusChanges канал сообщений о смене режима.
func (s *Source) StatusChanges() <-chan string { return s.status }

// Errors канал несмертельных ошибок захвата.
func (s *Source) Errors() <-chan string { return s.errs }

// Start запускает цикл захвата асинхронно. Повторный вызов во время работы — no-op.
func (s *Source) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.state = entity.SourceConnecting
	go s.run(ctx, done)
}

// Stop останавливает захват и освобождает сенсор. Идемпотентен.
// Если цикл не выходит за отведённый срок, ресурсы сенсора
// освобождаются принудительно: release у захвата идемпотентен.
func (s *Source) Stop() {
	s.mu.Lock()
	if s.done == nil {
		s.state = entity.SourceStopped
		s.mu.Unlock()
		return
	}
	done, cancel, active := s.done, s.cancel, s.active
	s.state = entity.SourceStopping
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(s.opts.StopGrace):
		if active != nil {
			active.release()
		}
	}

	s.mu.Lock()
	if s.done == done {
		s.done, s.cancel, s.active = nil, nil, nil
	}
	s.state = entity.SourceStopped
	s.mu.Unlock()

	log.Printf("Frame source stopped (emitted=%d, dropped=%d)",
		atomic.LoadUint64(&s.emitted), atomic.LoadUint64(&s.dropped))
}

// run внешний цикл: реальный сенсор, при его отказе — симуляция до отмены.
func (s *Source) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.done, s.cancel, s.active = nil, nil, nil
			s.state = entity.SourceStopped
		}
		s.mu.Unlock()
	}()

	err := s.runReal(ctx)
	if err == nil || ctx.Err() != nil {
		// отмена — единственное штатное завершение, ошибкой не считается
		return
	}

	// Сенсор не нашёлся или поток оборвался: это не фатально для
	// приложения, переходим на синтетические кадры. Обратно в реальный
	// режим без явного перезапуска не возвращаемся.
	s.emitError(fmt.Sprintf("сенсор недоступен, переходим в режим симуляции: %v", err))
	s.runSimulated(ctx)
}

// runReal подключается к сенсору и качает кадры до отмены или сбоя транспорта.
func (s *Source) runReal(ctx context.Context) error {
	g := s.newGrabber(s.opts.DeviceID)
	s.mu.Lock()
	s.active = g
	s.mu.Unlock()
	defer g.release()

	info, err := g.open()
	if err != nil {
		if errors.Is(err, ErrSensorUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	s.setState(entity.SourceStreamingReal,
		fmt.Sprintf("камера подключена: %dx%d, формат %s → %s",
			info.Width, info.Height, info.SensorFormat, info.Decision.Format))

	var seq uint64
	for {
		if ctx.Err() != nil {
			return nil
		}

		staging := s.scratchFor(info)
		s.retrieveMu.Lock()
		err := g.grab(staging, s.opts.GrabTimeout)
		s.retrieveMu.Unlock()

		switch {
		case err == nil:
		case errors.Is(err, errGrabTimeout):
			// сенсор простаивает — продолжаем опрос
			continue
		case errors.Is(err, errBadFrame):
			// битый кадр пропускаем, цикл живёт дальше
			continue
		default:
			// транспортный сбой — наружу, внешний цикл уйдёт в симуляцию
			return err
		}

		seq++
		s.publish(info, staging, seq, false)
	}
}

// runSimulated генерирует синтетические кадры с фиксированным периодом до отмены.
func (s *Source) runSimulated(ctx context.Context) {
	gen := newSimulatedSensor(s.opts.SimWidth, s.opts.SimHeight)
	s.setState(entity.SourceStreamingSimulated,
		fmt.Sprintf("режим симуляции: %dx%d, кадр каждые %s",
			gen.info.Width, gen.info.Height, s.opts.SimInterval))

	ticker := time.NewTicker(s.opts.SimInterval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			staging := s.scratchFor(gen.info)
			gen.fill(staging, seq)
			s.publish(gen.info, staging, seq, true)
		}
	}
}

// scratchFor возвращает буфер конвертации под размеры потока,
// переиспользуя прежний при совпадении размеров и формата.
func (s *Source) scratchFor(info streamInfo) []byte {
	key := scratchKey{w: info.Width, h: info.Height, format: info.Decision.Format}
	if b, ok := s.scratch[key]; ok {
		return b
	}
	b := make([]byte, info.Width*info.Height*info.Decision.BytesPerPixel)
	s.scratch[key] = b
	return b
}

// publish оборачивает содержимое staging в свежий неизменяемый FrameBuffer.
// Копия обязательна: staging будет перезаписан следующим кадром.
func (s *Source) publish(info streamInfo, staging []byte, seq uint64, simulated bool) {
	pixels := make([]byte, len(staging))
	copy(pixels, staging)

	fb := &entity.FrameBuffer{
		ID:          uuid.NewString(),
		Seq:         seq,
		Width:       info.Width,
		Height:      info.Height,
		StrideBytes: info.Width * info.Decision.BytesPerPixel,
		Format:      info.Decision.Format,
		Pixels:      pixels,
		Timestamp:   time.Now(),
		Simulated:   simulated,
	}

	select {
	case s.frames <- fb:
		atomic.AddUint64(&s.emitted, 1)
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}

func (s *Source) setState(state entity.SourceState, msg string) {
	s.mu.Lock()
	// во время Stopping/Stopped режимные переходы уже не объявляем
	if s.state == entity.SourceStopping || s.state == entity.SourceStopped {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	if msg != "" {
		s.emitStatus(msg)
	}
}

func (s *Source) emitStatus(msg string) {
	select {
	case s.status <- msg:
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}

func (s *Source) emitError(msg string) {
	select {
	case s.errs <- msg:
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}

// Проверка реализации интерфейса
var _ port.FrameSource = (*Source)(nil)
