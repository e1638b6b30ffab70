package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-inspector/internal/domain/entity"
)

func TestFormatAlertGroupsByClass(t *testing.T) {
	result := &entity.InferenceResult{
		Verdict: entity.VerdictNG,
		Detections: []entity.Detection{
			{ClassName: "scratch", Score: 0.9},
			{ClassName: "dent", Score: 0.8},
			{ClassName: "scratch", Score: 0.7},
		},
	}

	msg := formatAlert(result)
	require.Contains(t, msg, "Дефектов: 3")
	require.Contains(t, msg, "• scratch ×2")
	require.Contains(t, msg, "• dent ×1")
	// классы идут в порядке первого появления
	require.Less(t, strings.Index(msg, "scratch"), strings.Index(msg, "dent"))
}

func TestFormatAlertUnnamedClass(t *testing.T) {
	result := &entity.InferenceResult{
		Verdict:    entity.VerdictNG,
		Detections: []entity.Detection{{ClassID: 7}},
	}

	msg := formatAlert(result)
	require.Contains(t, msg, "класс 7")
}
