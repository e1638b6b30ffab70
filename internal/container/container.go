package container

import (
	"time"

	"vision-inspector/config"
	app "vision-inspector/internal/application"
	"vision-inspector/internal/infrastructure/camera"
	"vision-inspector/internal/infrastructure/vision"
)

type Container struct {
	Source     *camera.Source
	Detector   *vision.Detector
	Inspection *app.InspectionService
}

func New(cfg *config.Config) *Container {
	source := camera.NewSource(camera.Options{
		DeviceID:    cfg.Camera.DeviceID,
		GrabTimeout: time.Duration(cfg.Camera.GrabTimeoutMs) * time.Millisecond,
		SimWidth:    cfg.Camera.Simulation.Width,
		SimHeight:   cfg.Camera.Simulation.Height,
		SimInterval: time.Duration(cfg.Camera.Simulation.IntervalMs) * time.Millisecond,
	})
	detector := vision.NewDetector(vision.Thresholds{
		Confidence: cfg.Detection.Confidence,
		IoU:        cfg.Detection.IoU,
	})
	inspection := app.NewInspectionService(detector, cfg.Detection.ModelPath, cfg.Detection.NamesPath)

	return &Container{
		Source:     source,
		Detector:   detector,
		Inspection: inspection,
	}
}
