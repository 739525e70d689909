package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"examtrack/internal/model"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show every milestone in date order",
	RunE: func(cmd *cobra.Command, args []string) error {
		upcoming, _ := cmd.Flags().GetInt("upcoming")

		a, err := newApp("timeline")
		if err != nil {
			return err
		}
		defer a.Close()

		var events []model.TimelineEvent
		if upcoming > 0 {
			events = a.Upcoming(upcoming)
		} else {
			events = a.Timeline()
		}
		if len(events) == 0 {
			fmt.Println("No dates yet.")
			return nil
		}

		for _, ev := range events {
			fmt.Printf("%-12s  %-10s  %s\n", ev.Date.Format(), ev.Type, ev.ExamName)
		}
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Show a month with its milestones",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		when := time.Now()
		if len(args) == 1 {
			t, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("month must look like 2025-03: %w", err)
			}
			when = t
		}

		a, err := newApp("calendar")
		if err != nil {
			return err
		}
		defer a.Close()

		m := a.Calendar(when.Year(), when.Month())
		fmt.Printf("%s %d\n", m.Month, m.Year)
		fmt.Println(" Su  Mo  Tu  We  Th  Fr  Sa")
		for _, week := range m.Weeks {
			for _, day := range week {
				switch {
				case day == 0:
					fmt.Print("    ")
				case len(m.Events[day]) > 0:
					fmt.Printf(" %2d*", day)
				default:
					fmt.Printf(" %2d ", day)
				}
			}
			fmt.Println()
		}

		days := make([]int, 0, len(m.Events))
		for day := range m.Events {
			days = append(days, day)
		}
		sort.Ints(days)
		if len(days) > 0 {
			fmt.Println()
		}
		for _, day := range days {
			for _, ev := range m.Events[day] {
				fmt.Printf("%2d  %-10s  %s\n", day, ev.Type, ev.ExamName)
			}
		}
		return nil
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List every attached document",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("docs")
		if err != nil {
			return err
		}
		defer a.Close()

		docs := a.Documents()
		if len(docs) == 0 {
			fmt.Println("No documents attached.")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%-8s  %-30s  %-28s  %s\n", shortID(d.ExamID), d.ExamName, d.MimeType, d.Name)
		}
		return nil
	},
}

var docsExtractCmd = &cobra.Command{
	Use:   "extract ID [NAME]",
	Short: "Write an exam's attachments back to disk",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		name := ""
		if len(args) == 2 {
			name = args[1]
		}

		a, err := newApp("docs-extract")
		if err != nil {
			return err
		}
		defer a.Close()

		paths, err := a.ExtractDocuments(args[0], name, dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	timelineCmd.Flags().IntP("upcoming", "u", 0, "only the next N milestones from today")
	docsExtractCmd.Flags().StringP("dir", "d", ".", "destination directory")
	docsCmd.AddCommand(docsExtractCmd)

	rootCmd.AddCommand(timelineCmd, calendarCmd, docsCmd)
}
