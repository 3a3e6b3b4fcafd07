package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

func templateCmd(a *app) *cobra.Command {
	var tierName, output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate the import template for a tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTier(tierName)
			if err != nil {
				return err
			}
			data, err := spreadsheet.NewGenerator(a.registry, a.now).Template(t)
			if err != nil {
				return fmt.Errorf("generate template: %w", err)
			}
			if output == "" {
				output = spreadsheet.TemplateFilename(t, a.now())
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d importable columns)\n",
				output, len(a.registry.ImportableFieldsForTier(t)))
			return nil
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "free", "Tier to generate the template for")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: the standard template filename)")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	var tierName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <file.xlsx>",
		Short: "Validate a filled-in workbook against a tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTier(tierName)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sheet, err := spreadsheet.Parse(f, a.registry)
			if err != nil {
				return err
			}
			report := core.NewValidator(a.registry, a.tiers, a.now).ValidateSheet(t, sheet)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(out, sheet, report)
			}

			if report.Summary.Invalid > 0 {
				return fmt.Errorf("%d of %d rows are invalid", report.Summary.Invalid, report.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "free", "Tier to validate against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full validation report as JSON")
	return cmd
}

func printReport(out io.Writer, sheet *spreadsheet.Sheet, report core.ValidationReport) {
	fmt.Fprintf(out, "sheet %q, header on row %d\n", sheet.Name, sheet.HeaderRow)
	if len(report.UnknownColumns) > 0 {
		fmt.Fprintf(out, "ignored columns: %s\n", strings.Join(report.UnknownColumns, ", "))
	}
	for _, row := range report.Rows {
		for _, e := range row.Errors {
			fmt.Fprintf(out, "row %d: %s\n", row.RowNumber, e.Message)
		}
	}
	fmt.Fprintf(out, "%d rows: %d valid, %d invalid\n",
		report.Summary.Total, report.Summary.Valid, report.Summary.Invalid)
}

func filenameCmd(a *app) *cobra.Command {
	var vendorName, tierName string

	cmd := &cobra.Command{
		Use:   "filename",
		Short: "Print the export filename for a vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var t *tier.Level
			if tierName != "" {
				parsed, err := parseTier(tierName)
				if err != nil {
					return err
				}
				t = &parsed
			}
			fmt.Fprintln(cmd.OutOrStdout(), spreadsheet.GenerateFilename(vendorName, t, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&vendorName, "vendor", "", "Vendor name")
	cmd.Flags().StringVar(&tierName, "tier", "", "Tier to include in the filename")
	return cmd
}

func fieldsCmd(a *app) *cobra.Command {
	var tierName string
	var all bool

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields a tier can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTier(tierName)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tFIELD\tTYPE\tTIER\tREQUIRED\tIMPORT")
			list := a.registry.FieldsForTier(t)
			if all {
				list = append(list, a.registry.LockedFieldsForTier(t)...)
			}
			for _, f := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					f.Column, f.Name, f.Type, f.Access.Label(), yesNo(f.Required), importMark(f, t))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %d fields, location limit %s\n",
				t.Label(), len(a.registry.FieldsForTier(t)), limitText(a.tiers.Policy().LocationLimit(t)))
			return nil
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "free", "Tier to list fields for")
	cmd.Flags().BoolVar(&all, "all", false, "Include fields locked above the tier")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func importMark(f fields.FieldMapping, t tier.Level) string {
	switch {
	case f.IsAdmin():
		return "admin"
	case !t.AtLeast(f.Access):
		return "locked"
	case f.Importable:
		return "yes"
	default:
		return "no"
	}
}

func limitText(n int) string {
	if n == tier.Unlimited {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
