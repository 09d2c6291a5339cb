package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Moontok/WorkshopApp/internal/export"
	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cached workshops",
		Long:  `Exports the workshops matching the filters as CSV, to Google Sheets, or as an iCalendar file.`,
	}

	cmd.AddCommand(
		newExportCSVCmd(),
		newExportSheetsCmd(),
		newExportICSCmd(),
	)
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	opts := &filterOptions{}
	var out string
	var roster bool

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write workshops (or their rosters) to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			workshops, _, err := opts.find(cmd)
			if err != nil {
				return err
			}

			write := export.WriteCSV
			if roster {
				write = export.WriteRosterCSV
			}
			if err := writeFile(out, func(w io.Writer) error { return write(w, workshops) }); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d workshops to %s\n", len(workshops), out)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "workshops.csv", "Output file")
	cmd.Flags().BoolVar(&roster, "roster", false, "Write one row per participant instead of per workshop")
	return cmd
}

func newExportSheetsCmd() *cobra.Command {
	opts := &filterOptions{}
	var spreadsheetID, credentials, workshopSheet, rosterSheet string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write workshops to a Google Sheets spreadsheet",
		Long: `Replaces the contents of a sheet in an existing spreadsheet with the matching
workshops. Authenticates with a service account JSON key that has edit access
to the spreadsheet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			workshops, _, err := opts.find(cmd)
			if err != nil {
				return err
			}

			clientOpts, err := export.ServiceAccountOptions(credentials)
			if err != nil {
				return err
			}

			sheetOpts := []export.SheetsOption{export.WithWorkshopSheet(workshopSheet)}
			if rosterSheet != "" {
				sheetOpts = append(sheetOpts, export.WithRosterSheet(rosterSheet))
			}

			exporter, err := export.NewSheetsExporter(cmd.Context(), spreadsheetID, clientOpts, sheetOpts...)
			if err != nil {
				return err
			}
			if err := exporter.Export(cmd.Context(), workshops); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d workshops to spreadsheet %s\n", len(workshops), spreadsheetID)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "Spreadsheet ID")
	cmd.Flags().StringVar(&credentials, "credentials", "", "Service account JSON key file")
	cmd.Flags().StringVar(&workshopSheet, "sheet", export.DefaultWorkshopSheet, "Sheet receiving the workshop table")
	cmd.Flags().StringVar(&rosterSheet, "roster-sheet", "", "Also write the roster to this sheet")
	_ = cmd.MarkFlagRequired("spreadsheet")
	_ = cmd.MarkFlagRequired("credentials")
	return cmd
}

func newExportICSCmd() *cobra.Command {
	opts := &filterOptions{}
	var out string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write workshop sessions to an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			workshops, _, err := opts.find(cmd)
			if err != nil {
				return err
			}

			now := time.Now()
			if err := writeFile(out, func(w io.Writer) error { return export.WriteICS(w, workshops, now) }); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d workshops to %s\n", len(workshops), out)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "workshops.ics", "Output file")
	return cmd
}

// writeFile creates path and hands it to write. "-" writes to stdout.
func writeFile(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	logger.Debug("Export written", logger.Fields{"path": path})
	return nil
}

