// Package main provides vendorctl, the offline companion to the VendorHub
// server: it generates import templates, validates filled-in workbooks and
// inspects the field registry without a database.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/logging"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "vendorctl"
)

func main() {
	if err := rootCmd(time.Now).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	now        func() time.Time
	policyFile string
	logLevel   string

	registry *fields.Registry
	tiers    *tier.Service
}

func (a *app) init() error {
	slog.SetDefault(logging.New(os.Stderr, a.logLevel, "text"))

	a.registry = fields.Default()
	tiers, err := tier.LoadService(a.policyFile, a.registry.AccessLevels())
	if err != nil {
		return err
	}
	a.tiers = tiers
	return nil
}

func rootCmd(now func() time.Time) *cobra.Command {
	a := &app{now: now}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "VendorHub spreadsheet and tier tooling",
		Long: `vendorctl works with VendorHub import workbooks offline.

It can generate the template for a tier, validate a filled-in workbook
against a tier's field access rules, print export filenames and list the
fields each tier can use.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if a.policyFile == "" {
				a.policyFile = os.Getenv("TIER_POLICY_FILE")
			}
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVar(&a.policyFile, "policy", "", "Tier policy YAML file (default: $TIER_POLICY_FILE)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		templateCmd(a),
		validateCmd(a),
		filenameCmd(a),
		fieldsCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// parseTier parses a --tier flag value.
func parseTier(s string) (tier.Level, error) {
	t, ok := tier.Parse(s)
	if !ok {
		return tier.Free, fmt.Errorf("%w %q: use free, tier1, tier2 or tier3", core.ErrInvalidTier, s)
	}
	return t, nil
}
