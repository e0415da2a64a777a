package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/meridianlabs/meridian-desk/internal/token"
	"github.com/meridianlabs/meridian-desk/internal/vault"
)

// Status prints the stored tokens and the credential backend health.
func (a *App) Status(ctx context.Context) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(writer, "HOST\tTOKEN\tEXPIRES")

	for _, host := range []string{a.cfg.PrimaryHost, a.cfg.SecondaryHost} {
		fmt.Fprintf(writer, "%s\t%s\n", host, describeRecord(a.store, host))
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to render the token table: %w", err)
	}

	fmt.Println()
	printVaultHealth(a.vault.HealthCheck(ctx), a.cfg.VaultPreference)

	return nil
}

func describeRecord(store *token.Store, host string) string {
	record, err := store.Get(host)
	if err != nil {
		return "absent\t-"
	}

	if !store.IsValid(host, 0) {
		return fmt.Sprintf("expired\t%s", humanize.Time(record.ExpiresAt))
	}

	return fmt.Sprintf("valid\t%s", humanize.Time(record.ExpiresAt))
}

func printVaultHealth(health *vault.HealthCheckResult, preference string) {
	fmt.Printf("Credential storage (preference: %s)\n", preference)
	fmt.Printf("  platform:       %s\n", describeBackend(health.Platform))
	fmt.Printf("  encrypted file: %s\n", describeBackend(health.EncryptedFile))
	fmt.Printf("  legacy file:    %s\n", describeBackend(health.LegacyFile))

	if health.LegacyFilePresent {
		fmt.Printf("  a plaintext credential file exists at %s\n", health.LegacyFilePath)
	}
}

func describeBackend(health vault.BackendHealth) string {
	if health.Available {
		return "available"
	}

	return fmt.Sprintf("unavailable (%s)", health.Error)
}
