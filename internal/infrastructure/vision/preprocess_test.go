package vision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-inspector/internal/domain/entity"
)

func monoFrame(w, h int, fill func(x, y int) byte) *entity.FrameBuffer {
	pixels := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = fill(x, y)
		}
	}
	return &entity.FrameBuffer{
		ID:          "test",
		Width:       w,
		Height:      h,
		StrideBytes: w,
		Format:      entity.PixelFormatMono8,
		Pixels:      pixels,
	}
}

func TestLetterboxPlacement640x480(t *testing.T) {
	frame := monoFrame(640, 480, func(x, y int) byte { return 128 })

	_, pl, err := Letterbox(frame, 640, 640)
	require.NoError(t, err)
	require.InDelta(t, 1.0, pl.Ratio, 1e-9)
	require.InDelta(t, 0.0, pl.PadX, 1e-9)
	require.InDelta(t, 80.0, pl.PadY, 1e-9)
}

func TestLetterboxIdentitySampling(t *testing.T) {
	// при ratio=1 и нулевых полях выборка попадает точно в центры пикселей
	frame := monoFrame(4, 4, func(x, y int) byte { return byte(16*y + x) })

	input, pl, err := Letterbox(frame, 4, 4)
	require.NoError(t, err)
	require.InDelta(t, 1.0, pl.Ratio, 1e-9)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := float32(16*y+x) / 255
			require.InDelta(t, want, input[y*4+x], 1e-6)
		}
	}
}

func TestLetterboxMonoReplicatesChannels(t *testing.T) {
	frame := monoFrame(4, 4, func(x, y int) byte { return byte(40 + x) })

	input, _, err := Letterbox(frame, 4, 4)
	require.NoError(t, err)

	plane := 16
	for i := 0; i < plane; i++ {
		require.Equal(t, input[i], input[plane+i])
		require.Equal(t, input[i], input[2*plane+i])
	}
}

func TestLetterboxPadIsZero(t *testing.T) {
	frame := monoFrame(640, 480, func(x, y int) byte { return 255 })

	input, pl, err := Letterbox(frame, 640, 640)
	require.NoError(t, err)

	// первые padY-0.5 строк канвы лежат целиком вне кадра
	topRows := int(pl.PadY) - 1
	for y := 0; y < topRows; y++ {
		require.Zero(t, input[y*640], "row %d", y)
	}
	// центр канвы — внутри кадра и ярок
	require.InDelta(t, 1.0, input[320*640+320], 1e-6)
}

func TestLetterboxBGROrder(t *testing.T) {
	// один синий пиксель BGR24: в тензоре R-план нулевой, B-план единичный
	frame := &entity.FrameBuffer{
		ID:          "test",
		Width:       1,
		Height:      1,
		StrideBytes: 3,
		Format:      entity.PixelFormatBGR24,
		Pixels:      []byte{255, 0, 0},
	}

	input, _, err := Letterbox(frame, 1, 1)
	require.NoError(t, err)
	require.InDelta(t, 0.0, input[0], 1e-6) // R
	require.InDelta(t, 0.0, input[1], 1e-6) // G
	require.InDelta(t, 1.0, input[2], 1e-6) // B
}

func TestLetterboxRejectsInvalidFrame(t *testing.T) {
	frame := monoFrame(4, 4, func(x, y int) byte { return 0 })
	frame.Pixels = frame.Pixels[:8]

	_, _, err := Letterbox(frame, 4, 4)
	require.Error(t, err)
}

func TestLetterboxRoundTrip(t *testing.T) {
	// координаты, прогнанные через прямое и обратное отображение,
	// восстанавливаются с точностью до плавающей точки
	frame := monoFrame(640, 480, func(x, y int) byte { return 64 })
	_, pl, err := Letterbox(frame, 640, 640)
	require.NoError(t, err)

	boxes := [][4]float64{
		{270, 135, 370, 185},
		{0, 0, 640, 480},
		{12.5, 33.25, 100.75, 200.5},
	}
	for _, b := range boxes {
		// прямое отображение в пространство входа модели
		mx1 := b[0]*pl.Ratio + pl.PadX
		my1 := b[1]*pl.Ratio + pl.PadY
		mx2 := b[2]*pl.Ratio + pl.PadX
		my2 := b[3]*pl.Ratio + pl.PadY
		// обратное — то, что делает постобработка
		require.InDelta(t, b[0], (mx1-pl.PadX)/pl.Ratio, 1e-3)
		require.InDelta(t, b[1], (my1-pl.PadY)/pl.Ratio, 1e-3)
		require.InDelta(t, b[2], (mx2-pl.PadX)/pl.Ratio, 1e-3)
		require.InDelta(t, b[3], (my2-pl.PadY)/pl.Ratio, 1e-3)
	}
}

func TestLetterboxDownscaleRatio(t *testing.T) {
	frame := monoFrame(1280, 960, func(x, y int) byte { return 10 })

	_, pl, err := Letterbox(frame, 640, 640)
	require.NoError(t, err)
	require.InDelta(t, 0.5, pl.Ratio, 1e-9)
	require.InDelta(t, 0.0, pl.PadX, 1e-9)
	require.InDelta(t, 80.0, pl.PadY, 1e-9)
	require.False(t, math.IsNaN(pl.Ratio))
}
