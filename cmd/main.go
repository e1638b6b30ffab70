package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vision-inspector/config"
	telegram "vision-inspector/internal/api"
	"vision-inspector/internal/container"
	"vision-inspector/internal/domain/entity"
	"vision-inspector/internal/domain/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c := container.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Пробуем загрузить модель сразу; если файлы ещё не выложены,
	// координатор повторит попытку лениво на такте.
	if err := c.Detector.Load(cfg.Detection.ModelPath, cfg.Detection.NamesPath); err != nil {
		log.Printf("Model is not loaded yet: %v", err)
	}

	var notifier port.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		n, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID,
			time.Duration(cfg.Inspection.AlertCooldownSec)*time.Second)
		if err != nil {
			log.Printf("Telegram notifier disabled: %v", err)
		} else {
			notifier = n
		}
	}

	c.Source.Start()
	go c.Inspection.Watch(ctx, c.Source.Frames())
	go func() {
		for msg := range c.Source.StatusChanges() {
			log.Printf("Source: %s", msg)
		}
	}()
	go func() {
		for msg := range c.Source.Errors() {
			log.Printf("Source error: %s", msg)
		}
	}()

	ticker := time.NewTicker(time.Duration(cfg.Inspection.TickIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	log.Println("Inspector is running...")
	for {
		select {
		case <-sig:
			log.Println("Shutting down...")
			cancel()
			c.Source.Stop()
			c.Detector.Unload()
			return
		case <-ticker.C:
			// анализ уходит с горутины таймера; повторный вход
			// координатор отсекает сам
			go runTick(ctx, c, notifier)
		}
	}
}

func runTick(ctx context.Context, c *container.Container, notifier port.Notifier) {
	res := c.Inspection.Tick(ctx)
	if res.Skipped {
		return
	}
	if res.Error != "" {
		log.Printf("Inspection: %s (%s)", res.Status, res.Error)
		return
	}
	if res.Status != "analyzed" {
		log.Printf("Inspection: %s", res.Status)
		return
	}

	log.Printf("Inspection: verdict=%s detections=%d", res.Verdict, res.DetectionCount)
	if res.Verdict == entity.VerdictNG && notifier != nil && res.Result != nil {
		if err := notifier.NotifyNG(ctx, res.Result); err != nil {
			log.Printf("Notify error: %v", err)
		}
	}
}
