package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridianlabs/meridian-desk/internal/constants"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

// LegacyWarningDismissed reports whether the user already dismissed the
// plaintext-storage warning. The dismissal is a marker file so it survives
// restarts.
func (v *Vault) LegacyWarningDismissed() bool {
	_, err := os.Stat(filepath.Join(v.dir, warningFlagFileName))

	return err == nil
}

// DismissLegacyWarning persists the warning dismissal.
func (v *Vault) DismissLegacyWarning() error {
	path := filepath.Join(v.dir, warningFlagFileName)

	if err := os.WriteFile(path, []byte("dismissed\n"), constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to persist warning dismissal: %w", err)
	}

	return nil
}

// WarnLegacyUse emits the one-time plaintext-storage warning unless it was
// already dismissed.
func (v *Vault) WarnLegacyUse(ctx context.Context) {
	if v.LegacyWarningDismissed() {
		return
	}

	logger.Warnf(ctx,
		"Credentials are stored in a plaintext file (%s). "+
			"Switch vault_preference to 'platform' or 'encrypted_file', "+
			"or dismiss this warning with 'meridian-desk vault dismiss-warning'.",
		v.legacy.path)
}
