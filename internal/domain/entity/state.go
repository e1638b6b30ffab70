package entity

// SourceState состояние источника кадров
type SourceState string

const (
	SourceIdle               SourceState = "idle"                // создан, захват не запускался
	SourceConnecting         SourceState = "connecting"          // идёт подключение к сенсору
	SourceStreamingReal      SourceState = "streaming_real"      // поток кадров с реального сенсора
	SourceStreamingSimulated SourceState = "streaming_simulated" // поток синтетических кадров
	SourceStopping           SourceState = "stopping"            // получен сигнал остановки
	SourceStopped            SourceState = "stopped"             // ресурсы сенсора освобождены
)

// Streaming сообщает, идёт ли сейчас поток кадров.
func (s SourceState) Streaming() bool {
	return s == SourceStreamingReal || s == SourceStreamingSimulated
}
