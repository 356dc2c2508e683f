// Package main is the entry point for the Midgard PBR viewer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/config"
	"github.com/Faultbox/midgard-pbr/internal/logger"
	"github.com/Faultbox/midgard-pbr/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard PBR Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Scene.Path == "" {
		if cfg.Capturing() {
			logger.Error("capture mode needs a scene path (-scene)")
			os.Exit(1)
		}
		path, err := pickScene()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Error("file dialog failed", zap.Error(err))
			}
			os.Exit(1)
		}
		cfg.Scene.Path = path
	}

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		v.Close()
		os.Exit(1)
	}
	v.Close()

	logger.Info("viewer closed normally")
}

// pickScene asks for a glTF file with the native file dialog.
func pickScene() (string, error) {
	return dialog.File().
		Filter("glTF Scenes", "gltf", "glb").
		Filter("All Files", "*").
		Title("Open glTF Scene").
		Load()
}
