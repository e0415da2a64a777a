package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/meridianlabs/meridian-desk/internal/logger"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

// SaveCredential stores a sign-on credential in the resolved backend.
// The password is read from input so it never lands in shell history.
func (a *App) SaveCredential(ctx context.Context, username string, input io.Reader) error {
	a.resolveSource(ctx)

	if a.source == vault.SourceNone {
		return vault.ErrNoUsableSource
	}

	backend, err := a.vault.Store(a.source)
	if err != nil {
		return err
	}

	fmt.Print("Password: ")

	password, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read the password: %w", err)
	}

	credential := &vault.Credential{
		Username:  username,
		Password:  vault.SecretFromString(strings.TrimRight(password, "\r\n")),
		LoginMode: a.cfg.LoginMode,
	}
	defer credential.Zero()

	if err = backend.Save(ctx, credential); err != nil {
		return fmt.Errorf("failed to store the credential: %w", err)
	}

	logger.Infof(ctx, "Stored the credential for '%s' in the '%s' backend", username, a.source)

	return nil
}

// DismissLegacyWarning permanently silences the plaintext file warning.
func (a *App) DismissLegacyWarning(ctx context.Context) error {
	if err := a.vault.DismissLegacyWarning(); err != nil {
		return fmt.Errorf("failed to record the dismissal: %w", err)
	}

	logger.Info(ctx, "The legacy credential file warning will not be shown again")

	return nil
}
