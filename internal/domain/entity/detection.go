package entity

// Verdict итог проверки детали
type Verdict string

const (
	VerdictOK Verdict = "OK" // дефекты не найдены
	VerdictNG Verdict = "NG" // найден хотя бы один дефект
)

// Detection один найденный объект в пиксельных координатах исходного кадра.
type Detection struct {
	X1, Y1    float64 // левый верхний угол рамки
	X2, Y2    float64 // правый нижний угол рамки
	Score     float64 // уверенность модели, [0,1]
	ClassID   int     // индекс класса в таблице имён
	ClassName string  // имя класса (пустое, если индекс вне таблицы)
}

// Width возвращает ширину рамки.
func (d Detection) Width() float64 { return d.X2 - d.X1 }

// Height возвращает высоту рамки.
func (d Detection) Height() float64 { return d.Y2 - d.Y1 }

// Area возвращает площадь рамки.
func (d Detection) Area() float64 { return d.Width() * d.Height() }

// InferenceResult результат одного прогона модели по кадру.
// Создаётся ровно один раз на анализ и после этого не изменяется.
type InferenceResult struct {
	Verdict    Verdict     // OK или NG
	Detections []Detection // выжившие после NMS рамки
	Error      string      // непустое при сбое анализа; вердикт тогда остаётся OK
}
