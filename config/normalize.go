package config

import (
	"strings"

	"mediaremote-go/x/mathx"
)

const (
	minGuardMs      = 50
	minTransfer     = 256
	maxTransfer     = 4096
	maxQueueCap     = 64
	defaultQueueCap = 10
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Radio.Backend = strings.ToLower(cfg.Radio.Backend)

	// Guard delays may be tuned but never below the host poll interval.
	cfg.HID.GuardMs = mathx.Max(cfg.HID.GuardMs, minGuardMs)

	if cfg.Panel.MaxTransfer == 0 {
		cfg.Panel.MaxTransfer = 3072
	}
	cfg.Panel.MaxTransfer = mathx.Clamp(cfg.Panel.MaxTransfer, minTransfer, maxTransfer)

	if cfg.Buttons.QueueCap == 0 {
		cfg.Buttons.QueueCap = defaultQueueCap
	}
	cfg.Buttons.QueueCap = mathx.Clamp(cfg.Buttons.QueueCap, 1, maxQueueCap)
}
