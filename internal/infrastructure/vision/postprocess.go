package vision

import (
	"fmt"
	"math"
	"sort"

	"vision-inspector/internal/domain/entity"
)

// iouEpsilon защищает IoU от деления на ноль на вырожденных рамках.
const iouEpsilon = 1e-9

// DecodeDetections разбирает сырой выходной тензор модели в кандидатов
// в координатах исходного кадра. Порог уверенности применяется здесь же,
// поэтому любой кандидат на выходе имеет Score >= порога.
func DecodeDetections(out []float32, shape []int64, cfg *ModelConfig, pl Placement) ([]entity.Detection, error) {
	boxes, features, transposed, err := resolveLayout(shape, len(cfg.ClassNames), len(out))
	if err != nil {
		return nil, err
	}
	if pl.Ratio <= 0 {
		return nil, fmt.Errorf("invalid letterbox ratio %v", pl.Ratio)
	}

	at := func(box, feat int) float64 {
		if transposed { // [1, boxes, features]
			return float64(out[box*features+feat])
		}
		return float64(out[feat*boxes+box]) // [1, features, boxes]
	}

	var dets []entity.Detection
	for i := 0; i < boxes; i++ {
		conf := at(i, 4)
		if conf < cfg.ConfidenceThreshold {
			continue
		}

		// каналы после пятого — очки классов; равные очки отдают меньший индекс
		classID := 0
		if features > 5 {
			best := math.Inf(-1)
			for c := 0; c+5 < features; c++ {
				if s := at(i, 5+c); s > best {
					best = s
					classID = c
				}
			}
		}

		// обратное отображение из пространства входа модели в кадр
		cx := (at(i, 0) - pl.PadX) / pl.Ratio
		cy := (at(i, 1) - pl.PadY) / pl.Ratio
		w := at(i, 2) / pl.Ratio
		h := at(i, 3) / pl.Ratio

		det := entity.Detection{
			X1:      cx - w/2,
			Y1:      cy - h/2,
			X2:      cx + w/2,
			Y2:      cy + h/2,
			Score:   conf,
			ClassID: classID,
		}
		if classID < len(cfg.ClassNames) {
			det.ClassName = cfg.ClassNames[classID]
		}
		dets = append(dets, det)
	}
	return dets, nil
}

// resolveLayout определяет ориентацию выходного тензора [1, A, B].
// Ось признаков имеет длину 5+classCount, поэтому сначала сверяемся с
// таблицей классов; если однозначного совпадения нет, работает эвристика
// «меньшая ось — признаки». При равенстве осей считаем раскладку
// [1, features, boxes].
func resolveLayout(shape []int64, classCount, total int) (boxes, features int, transposed bool, err error) {
	if len(shape) != 3 || shape[0] != 1 {
		return 0, 0, false, fmt.Errorf("unexpected output tensor rank %v", shape)
	}
	a, b := int(shape[1]), int(shape[2])
	if a <= 0 || b <= 0 || a*b != total {
		return 0, 0, false, fmt.Errorf("output shape %v does not match %d values", shape, total)
	}

	want := 5 + classCount
	switch {
	case a == want && b != want:
		boxes, features, transposed = b, a, false
	case b == want && a != want:
		boxes, features, transposed = a, b, true
	case a <= b:
		boxes, features, transposed = b, a, false
	default:
		boxes, features, transposed = a, b, true
	}

	if features < 5 {
		return 0, 0, false, fmt.Errorf("output shape %v has no box channels", shape)
	}
	return boxes, features, transposed, nil
}

// NonMaxSuppression жадно подавляет перекрывающиеся рамки внутри каждого
// класса. Порядок выживших: классы в порядке первого появления среди
// кандидатов, внутри класса — по убыванию Score.
func NonMaxSuppression(dets []entity.Detection, iouThreshold float64) []entity.Detection {
	if len(dets) <= 1 {
		return dets
	}

	var order []int
	groups := make(map[int][]entity.Detection)
	for _, d := range dets {
		if _, ok := groups[d.ClassID]; !ok {
			order = append(order, d.ClassID)
		}
		groups[d.ClassID] = append(groups[d.ClassID], d)
	}

	kept := make([]entity.Detection, 0, len(dets))
	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Score > group[j].Score })

		suppressed := make([]bool, len(group))
		for i := range group {
			if suppressed[i] {
				continue
			}
			kept = append(kept, group[i])
			for j := i + 1; j < len(group); j++ {
				if suppressed[j] {
					continue
				}
				if IoU(group[i], group[j]) > iouThreshold {
					suppressed[j] = true
				}
			}
		}
	}
	return kept
}

// IoU отношение площади пересечения к площади объединения двух рамок.
func IoU(a, b entity.Detection) float64 {
	x1 := math.Max(a.X1, b.X1)
	y1 := math.Max(a.Y1, b.Y1)
	x2 := math.Min(a.X2, b.X2)
	y2 := math.Min(a.Y2, b.Y2)

	inter := math.Max(0, x2-x1) * math.Max(0, y2-y1)
	return inter / (a.Area() + b.Area() - inter + iouEpsilon)
}
