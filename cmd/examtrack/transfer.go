package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"examtrack/internal/studytips"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Append exams from a CSV, JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp("import")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Import(args[0], format)
		if err != nil {
			return err
		}
		for _, rj := range res.Rejected {
			fmt.Fprintf(os.Stderr, "row %d skipped: %s\n", rj.Row, rj.Reason)
		}
		fmt.Printf("Imported %d exam(s), skipped %d\n", len(res.Accepted), len(res.Rejected))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write all exams as CSV, JSON or YAML (stdout if no file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else if format == "" {
			format = "csv"
		}

		a, err := newApp("export")
		if err != nil {
			return err
		}
		defer a.Close()

		var w io.Writer = os.Stdout
		if path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			defer f.Close()
			w = f
		}

		if err := a.Export(w, path, format); err != nil {
			return err
		}
		if path != "" {
			fmt.Printf("Exported %d exam(s) to %s\n", len(a.Exams()), path)
		}
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|system]",
	Short: "Show or set the display theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("theme")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			t, err := a.Theme()
			if err != nil {
				return err
			}
			fmt.Println(t)
			return nil
		}

		t, err := a.SetTheme(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Theme set to %s\n", t)
		return nil
	},
}

var tipsCmd = &cobra.Command{
	Use:   "tips ID",
	Short: "Stream generated study tips for an exam",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("tips")
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.StreamTips(cmd.Context(), args[0], func(chunk string) error {
			_, err := fmt.Print(chunk)
			return err
		})
		fmt.Println()
		if errors.Is(err, studytips.ErrNotConfigured) {
			return fmt.Errorf("%w: set the variable named by study_tips.api_key_env (default API_KEY) or add it to .env", err)
		}
		return err
	},
}

func init() {
	importCmd.Flags().StringP("format", "f", "", "csv, json or yaml (default: from extension)")
	exportCmd.Flags().StringP("format", "f", "", "csv, json or yaml (default: from extension, csv on stdout)")

	rootCmd.AddCommand(importCmd, exportCmd, themeCmd, tipsCmd)
}
