package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/govscout/govscout/internal/jsonl"
	"github.com/govscout/govscout/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "data",
	Short:   "Export stored opportunities as JSON Lines",
	Long: `Write every stored opportunity, contacts included, as one JSON object
per line. Output goes to stdout unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if out == "" || out == "-" {
			_, err := jsonl.Export(ctx, s, os.Stdout)
			return err
		}

		n, err := jsonl.ExportFile(ctx, s, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s Exported %d opportunities to %s\n", ui.RenderPass("✓"), n, out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "data",
	Short:   "Import opportunities from a JSON Lines file",
	Long: `Load opportunities from a JSONL file produced by 'govscout export'.

Existing records with the same notice ID are replaced. Lines without a
notice ID are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := jsonl.Import(ctx, s, args[0], jsonl.ImportOptions{DryRun: dryRun})
		if err != nil {
			return err
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %s %d of %d records\n", ui.RenderPass("✓"), verb, result.Imported, result.Read)
		if result.Skipped > 0 {
			fmt.Printf("   Skipped (no notice ID): %d\n", result.Skipped)
		}
		if len(result.Errors) > 0 {
			fmt.Printf("%s %d records failed:\n", ui.RenderWarn("⚠"), len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("   %s\n", e)
			}
			return fmt.Errorf("%d records failed to import", len(result.Errors))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	importCmd.Flags().Bool("dry-run", false, "Parse and validate without writing")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
