package vision

import (
	"math"

	"vision-inspector/internal/domain/entity"
)

// Placement параметры letterbox-преобразования. Переносятся как есть
// в обратное отображение координат на этапе постобработки — пересчёт
// на месте привёл бы к расхождению между пре- и постобработкой.
type Placement struct {
	Ratio float64 // коэффициент масштабирования кадра
	PadX  float64 // горизонтальное поле слева
	PadY  float64 // вертикальное поле сверху
}

// Letterbox вписывает кадр в канву targetW×targetH с сохранением
// пропорций и центрированием. Результат — тензор CHW (планарный,
// порядок каналов R,G,B) со значениями в [0,1]; поля остаются нулями.
// Для каждого пикселя канвы берётся билинейная выборка исходного кадра;
// выборки за границей кадра дают нулевой вклад.
func Letterbox(frame *entity.FrameBuffer, targetW, targetH int) ([]float32, Placement, error) {
	if err := frame.Validate(); err != nil {
		return nil, Placement{}, err
	}

	ratio := math.Min(float64(targetW)/float64(frame.Width), float64(targetH)/float64(frame.Height))
	pl := Placement{
		Ratio: ratio,
		PadX:  (float64(targetW) - float64(frame.Width)*ratio) / 2,
		PadY:  (float64(targetH) - float64(frame.Height)*ratio) / 2,
	}

	plane := targetW * targetH
	input := make([]float32, 3*plane)
	for dy := 0; dy < targetH; dy++ {
		sy := (float64(dy)-pl.PadY+0.5)/ratio - 0.5
		for dx := 0; dx < targetW; dx++ {
			sx := (float64(dx)-pl.PadX+0.5)/ratio - 0.5
			r, g, b := sampleBilinear(frame, sx, sy)
			idx := dy*targetW + dx
			input[idx] = r
			input[plane+idx] = g
			input[2*plane+idx] = b
		}
	}
	return input, pl, nil
}

// sampleBilinear билинейная выборка в точке (sx, sy) с нормировкой в [0,1].
func sampleBilinear(frame *entity.FrameBuffer, sx, sy float64) (r, g, b float32) {
	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	fx := sx - float64(x0)
	fy := sy - float64(y0)

	var cr, cg, cb float64
	accumulate := func(x, y int, w float64) {
		if w == 0 || x < 0 || y < 0 || x >= frame.Width || y >= frame.Height {
			return
		}
		pr, pg, pb := pixelRGB(frame, x, y)
		cr += w * pr
		cg += w * pg
		cb += w * pb
	}
	accumulate(x0, y0, (1-fx)*(1-fy))
	accumulate(x0+1, y0, fx*(1-fy))
	accumulate(x0, y0+1, (1-fx)*fy)
	accumulate(x0+1, y0+1, fx*fy)

	return float32(cr / 255), float32(cg / 255), float32(cb / 255)
}

// pixelRGB читает пиксель кадра как RGB в диапазоне [0,255].
// Одноканальный кадр дублируется во все три канала, альфа игнорируется.
func pixelRGB(frame *entity.FrameBuffer, x, y int) (r, g, b float64) {
	off := y*frame.StrideBytes + x*frame.Format.BytesPerPixel()
	p := frame.Pixels
	switch frame.Format {
	case entity.PixelFormatMono8:
		v := float64(p[off])
		return v, v, v
	case entity.PixelFormatBGR24, entity.PixelFormatBGRA32:
		return float64(p[off+2]), float64(p[off+1]), float64(p[off])
	default:
		return 0, 0, 0
	}
}
