package camera

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulatedSensorInfo(t *testing.T) {
	g := newSimulatedSensor(32, 24)
	require.Equal(t, 32, g.info.Width)
	require.Equal(t, 24, g.info.Height)
	require.Equal(t, 1, g.info.Decision.BytesPerPixel)
}

func TestSimulatedSensorFillMoves(t *testing.T) {
	g := newSimulatedSensor(32, 24)

	a := make([]byte, 32*24)
	b := make([]byte, 32*24)
	g.fill(a, 1)
	g.fill(b, 7)
	// рисунок зависит от номера кадра: квадрат и градиент сдвигаются
	require.NotEqual(t, a, b)
}

func TestSimulatedSensorHasBrightSquare(t *testing.T) {
	g := newSimulatedSensor(32, 24)
	dst := make([]byte, 32*24)
	g.fill(dst, 5)

	bright := 0
	for _, p := range dst {
		if p >= 200 {
			bright++
		}
	}
	// фон ограничен 0x3F, всё яркое — только «деталь»
	size := 32 / 8
	require.Equal(t, size*size, bright)
}

func TestSimulatedSensorTinyFrame(t *testing.T) {
	g := newSimulatedSensor(4, 2)
	dst := make([]byte, 8)
	require.NotPanics(t, func() { g.fill(dst, 100) })
}
