package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("INSPECTION_CONFIG", filepath.Join(t.TempDir(), "нет.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0", cfg.Camera.DeviceID)
	require.Equal(t, 5000, cfg.Camera.GrabTimeoutMs)
	require.Equal(t, 640, cfg.Camera.Simulation.Width)
	require.Equal(t, 480, cfg.Camera.Simulation.Height)
	require.Equal(t, 30, cfg.Camera.Simulation.IntervalMs)
	require.Equal(t, "models/model.onnx", cfg.Detection.ModelPath)
	require.InDelta(t, 0.25, cfg.Detection.Confidence, 1e-9)
	require.InDelta(t, 0.45, cfg.Detection.IoU, 1e-9)
	require.Equal(t, 500, cfg.Inspection.TickIntervalMs)
	require.Equal(t, 60, cfg.Inspection.AlertCooldownSec)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspection.yaml")
	body := `
camera:
  device_id: "2"
  grab_timeout_ms: 1500
  simulation:
    width: 320
    height: 240
    interval_ms: 10
detection:
  model_path: /opt/models/best.onnx
  names_path: /opt/models/data.yaml
  confidence_threshold: 0.5
  iou_threshold: 0.6
inspection:
  tick_interval_ms: 250
  alert_cooldown_s: 15
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("TELEGRAM_TOKEN", "token-123")
	t.Setenv("TELEGRAM_CHAT_ID", "-100500")
	t.Setenv("INSPECTION_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token-123", cfg.TelegramToken)
	require.Equal(t, int64(-100500), cfg.TelegramChatID)
	require.Equal(t, "2", cfg.Camera.DeviceID)
	require.Equal(t, 1500, cfg.Camera.GrabTimeoutMs)
	require.Equal(t, 320, cfg.Camera.Simulation.Width)
	require.Equal(t, "/opt/models/best.onnx", cfg.Detection.ModelPath)
	require.InDelta(t, 0.5, cfg.Detection.Confidence, 1e-9)
	require.Equal(t, 250, cfg.Inspection.TickIntervalMs)
	require.Equal(t, 15, cfg.Inspection.AlertCooldownSec)
}

func TestLoadBadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "не число")
	t.Setenv("INSPECTION_CONFIG", filepath.Join(t.TempDir(), "нет.yaml"))

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspection.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera: [oops\n"), 0o644))

	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("INSPECTION_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
