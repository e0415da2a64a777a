package vault

import (
	"context"
	"fmt"

	"github.com/meridianlabs/meridian-desk/internal/logger"
)

// BackendHealth is the probe outcome for one backend.
type BackendHealth struct {
	// Available reports whether the backend accepted the probe.
	Available bool
	// Error holds the probe failure, empty when available.
	Error string
}

// HealthCheckResult is the ephemeral outcome of probing every backend.
// It is recomputed on demand and never persisted.
type HealthCheckResult struct {
	// Platform is the platform secret manager's health.
	Platform BackendHealth
	// EncryptedFile is the encrypted file backend's health.
	EncryptedFile BackendHealth
	// LegacyFile is the legacy plaintext backend's health.
	LegacyFile BackendHealth
	// LegacyFilePresent reports whether a legacy plaintext file exists on disk.
	LegacyFilePresent bool
	// LegacyFilePath is where the legacy file lives (or would live).
	LegacyFilePath string
}

// HealthCheck probes every backend. A failed probe on one backend never
// blocks evaluation of the others; probe panics and errors become
// per-backend error strings.
func (v *Vault) HealthCheck(ctx context.Context) *HealthCheckResult {
	result := &HealthCheckResult{
		Platform:          runProbe(ctx, "platform", v.platform.probe),
		EncryptedFile:     runProbe(ctx, "encrypted_file", v.encrypted.probe),
		LegacyFile:        runProbe(ctx, "legacy_file", v.legacy.probe),
		LegacyFilePresent: v.legacy.present(),
		LegacyFilePath:    v.legacy.path,
	}

	logger.DebugKV(ctx, "Vault health check complete",
		"platform", result.Platform.Available,
		"encrypted_file", result.EncryptedFile.Available,
		"legacy_file", result.LegacyFile.Available,
		"legacy_present", result.LegacyFilePresent)

	return result
}

// runProbe executes one backend probe, converting errors and panics into a
// BackendHealth value.
func runProbe(ctx context.Context, name string, probe func() error) (health BackendHealth) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "Vault probe '%s' panic recovered: %v", name, r)

			health = BackendHealth{Available: false, Error: fmt.Sprintf("probe panic: %v", r)}
		}
	}()

	if err := probe(); err != nil {
		logger.Debugf(ctx, "Vault probe '%s' failed: %v", name, err)

		return BackendHealth{Available: false, Error: err.Error()}
	}

	return BackendHealth{Available: true}
}
