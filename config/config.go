// Package config reads tool settings from the environment and an optional
// .env file.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendAuto  = "auto"
	BackendGlslc = "glslc"
	BackendWGSL  = "wgsl"
)

type Config struct {
	ShaderBackend    string
	GlslcPath        string
	ShaderTargetEnv  string
	ShaderDebugInfo  bool
	ShaderCacheDir   string
	ShaderJobs       int
	DeviceExtensions []string
	DeviceFeatures   []string
	LogLevel         string

	// VulkanValidation enables the Khronos validation layer and routes its
	// messages to the logger.
	VulkanValidation bool
}

// Load reads VKTOOLKIT_ENV_FILE (default .env) if it exists, then builds a
// Config from the environment. Variables already set take precedence over
// the file.
func Load() (Config, error) {
	envy.Reload()
	envFile := envy.Get("VKTOOLKIT_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrapf(err, "load %s", envFile)
	}
	envy.Reload()

	cfg := Config{
		ShaderBackend:    envy.Get("SHADER_BACKEND", BackendAuto),
		GlslcPath:        envy.Get("GLSLC_PATH", "glslc"),
		ShaderTargetEnv:  envy.Get("SHADER_TARGET_ENV", "vulkan1.2"),
		ShaderCacheDir:   envy.Get("SHADER_CACHE_DIR", ""),
		DeviceExtensions: list(envy.Get("DEVICE_EXTENSIONS", "VK_KHR_swapchain")),
		DeviceFeatures:   list(envy.Get("DEVICE_FEATURES", "")),
		LogLevel:         envy.Get("LOG_LEVEL", "info"),
	}

	switch cfg.ShaderBackend {
	case BackendAuto, BackendGlslc, BackendWGSL:
	default:
		return Config{}, errors.Newf("SHADER_BACKEND: unknown backend %q", cfg.ShaderBackend)
	}

	var err error
	cfg.ShaderDebugInfo, err = strconv.ParseBool(envy.Get("SHADER_DEBUG_INFO", "true"))
	if err != nil {
		return Config{}, errors.Wrap(err, "SHADER_DEBUG_INFO")
	}

	cfg.ShaderJobs, err = strconv.Atoi(envy.Get("SHADER_JOBS", strconv.Itoa(runtime.NumCPU())))
	if err != nil {
		return Config{}, errors.Wrap(err, "SHADER_JOBS")
	}
	if cfg.ShaderJobs < 1 {
		return Config{}, errors.Newf("SHADER_JOBS: must be at least 1, got %d", cfg.ShaderJobs)
	}

	cfg.VulkanValidation, err = strconv.ParseBool(envy.Get("VULKAN_VALIDATION", "false"))
	if err != nil {
		return Config{}, errors.Wrap(err, "VULKAN_VALIDATION")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, errors.Wrap(err, "LOG_LEVEL")
	}

	return cfg, nil
}

// list splits a comma separated value, dropping empty items.
func list(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
