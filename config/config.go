package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config настройки приложения: секреты из окружения (.env),
// операционные параметры из YAML-файла.
type Config struct {
	TelegramToken  string
	TelegramChatID int64
	Settings
}

// Settings операционные настройки из inspection.yaml.
type Settings struct {
	Camera struct {
		DeviceID      string `yaml:"device_id"`
		GrabTimeoutMs int    `yaml:"grab_timeout_ms"`
		Simulation    struct {
			Width      int `yaml:"width"`
			Height     int `yaml:"height"`
			IntervalMs int `yaml:"interval_ms"`
		} `yaml:"simulation"`
	} `yaml:"camera"`
	Detection struct {
		ModelPath  string  `yaml:"model_path"`
		NamesPath  string  `yaml:"names_path"`
		Confidence float64 `yaml:"confidence_threshold"`
		IoU        float64 `yaml:"iou_threshold"`
	} `yaml:"detection"`
	Inspection struct {
		TickIntervalMs   int `yaml:"tick_interval_ms"`
		AlertCooldownSec int `yaml:"alert_cooldown_s"`
	} `yaml:"inspection"`
}

// Load читает .env, переменные окружения и YAML-файл настроек.
// Отсутствующий YAML-файл не ошибка: работают значения по умолчанию.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	path := os.Getenv("INSPECTION_CONFIG")
	if path == "" {
		path = "inspection.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg.Settings); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Camera.DeviceID == "" {
		c.Camera.DeviceID = "0"
	}
	if c.Camera.GrabTimeoutMs <= 0 {
		c.Camera.GrabTimeoutMs = 5000
	}
	if c.Camera.Simulation.Width <= 0 {
		c.Camera.Simulation.Width = 640
	}
	if c.Camera.Simulation.Height <= 0 {
		c.Camera.Simulation.Height = 480
	}
	if c.Camera.Simulation.IntervalMs <= 0 {
		c.Camera.Simulation.IntervalMs = 30
	}
	if c.Detection.ModelPath == "" {
		c.Detection.ModelPath = "models/model.onnx"
	}
	if c.Detection.NamesPath == "" {
		c.Detection.NamesPath = "models/names.yaml"
	}
	if c.Detection.Confidence <= 0 {
		c.Detection.Confidence = 0.25
	}
	if c.Detection.IoU <= 0 {
		c.Detection.IoU = 0.45
	}
	if c.Inspection.TickIntervalMs <= 0 {
		c.Inspection.TickIntervalMs = 500
	}
	if c.Inspection.AlertCooldownSec <= 0 {
		c.Inspection.AlertCooldownSec = 60
	}
}
