package camera

import (
	"strings"

	"vision-inspector/internal/domain/entity"
)

// FormatDecision результат согласования формата пикселей с сенсором.
type FormatDecision struct {
	ConverterTarget string             // формат, который просим у конвертера SDK
	Format          entity.PixelFormat // канонический формат буфера кадра
	BytesPerPixel   int
}

// NegotiateFormat выбирает канонический формат по строке формата сенсора.
// Сопоставление нечувствительно к регистру и работает по подстрокам,
// потому что SDK разных сенсоров именуют форматы по-разному
// ("Mono8", "mono8_packed", "BayerRG8" и т.п.). Функция тотальна:
// для неизвестного формата берётся самый широкий упакованный цвет.
func NegotiateFormat(sensorFormat string) FormatDecision {
	f := strings.ToLower(sensorFormat)
	switch {
	case strings.Contains(f, "mono8"):
		// одноканальный формат предпочтителен: меньше данных, конвертация не нужна
		return FormatDecision{ConverterTarget: "Mono8", Format: entity.PixelFormatMono8, BytesPerPixel: 1}
	case strings.Contains(f, "bayer") && strings.Contains(f, "rg8"):
		// сырую мозаику просим конвертировать в упакованный цвет
		return FormatDecision{ConverterTarget: "BGR8", Format: entity.PixelFormatBGR24, BytesPerPixel: 3}
	case strings.Contains(f, "rgb8"), strings.Contains(f, "bgr8"):
		return FormatDecision{ConverterTarget: "BGR8", Format: entity.PixelFormatBGR24, BytesPerPixel: 3}
	case strings.Contains(f, "bgra8"), strings.Contains(f, "rgba8"):
		return FormatDecision{ConverterTarget: "BGRA8", Format: entity.PixelFormatBGRA32, BytesPerPixel: 4}
	default:
		return FormatDecision{ConverterTarget: "BGRA8", Format: entity.PixelFormatBGRA32, BytesPerPixel: 4}
	}
}
