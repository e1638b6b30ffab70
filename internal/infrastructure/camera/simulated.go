package camera

import (
	"math/rand"
)

// simulatedSensor генерирует синтетические кадры вместо реального сенсора.
// Рисунок детерминирован по номеру кадра, шум — только внутри «детали».
type simulatedSensor struct {
	info  streamInfo
	noise *rand.Rand
}

func newSimulatedSensor(width, height int) *simulatedSensor {
	return &simulatedSensor{
		info: streamInfo{
			Width:        width,
			Height:       height,
			Decision:     NegotiateFormat("Mono8"),
			SensorFormat: "Mono8 (simulated)",
		},
		noise: rand.New(rand.NewSource(42)),
	}
}

// fill рисует тёмный градиентный фон и яркий квадрат, плывущий по кадру.
func (g *simulatedSensor) fill(dst []byte, seq uint64) {
	w, h := g.info.Width, g.info.Height
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			dst[row+x] = byte((x + y + int(seq)) & 0x3F)
		}
	}

	size := w / 8
	if size < 1 {
		size = 1
	}
	ox := int(seq*3) % maxInt(w-size, 1)
	oy := int(seq*2) % maxInt(h-size, 1)
	for y := oy; y < oy+size && y < h; y++ {
		row := y * w
		for x := ox; x < ox+size && x < w; x++ {
			dst[row+x] = byte(200 + g.noise.Intn(40))
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
