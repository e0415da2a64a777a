package vault

import (
	"github.com/meridianlabs/meridian-desk/internal/config"
)

// ResolveSource maps the configured preference onto a concrete source using
// the given health snapshot. An explicit preference is honored only when its
// backend is healthy, otherwise the result is SourceNone. The "auto"
// preference walks platform → encrypted file → legacy plaintext and picks
// the first healthy option; the legacy file additionally has to exist, since
// auto mode must never create a new plaintext file.
func ResolveSource(preference string, health *HealthCheckResult) Source {
	switch preference {
	case config.VaultPreferencePlatform:
		if health.Platform.Available {
			return SourcePlatform
		}

		return SourceNone
	case config.VaultPreferenceEncryptedFile:
		if health.EncryptedFile.Available {
			return SourceEncryptedFile
		}

		return SourceNone
	case config.VaultPreferenceLegacyFile:
		if health.LegacyFile.Available {
			return SourceLegacyFile
		}

		return SourceNone
	case config.VaultPreferenceAuto:
		return resolveAuto(health)
	default:
		return SourceNone
	}
}

// resolveAuto picks the first healthy backend in fixed order.
func resolveAuto(health *HealthCheckResult) Source {
	switch {
	case health.Platform.Available:
		return SourcePlatform
	case health.EncryptedFile.Available:
		return SourceEncryptedFile
	case health.LegacyFile.Available && health.LegacyFilePresent:
		return SourceLegacyFile
	default:
		return SourceNone
	}
}
