package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"examtrack/internal/app"
	"examtrack/internal/model"
)

// dateFlags maps flag names to the draft date they set.
var dateFlags = []struct {
	name  string
	usage string
	field func(*model.Draft) **model.Date
}{
	{"apply", "application date (YYYY-MM-DD)", func(d *model.Draft) **model.Date { return &d.ApplyDate }},
	{"last", "last date to apply", func(d *model.Draft) **model.Date { return &d.LastDate }},
	{"admit", "admit card date", func(d *model.Draft) **model.Date { return &d.AdmitCardDate }},
	{"prelims", "prelims exam date", func(d *model.Draft) **model.Date { return &d.PrelimsDate }},
	{"mains", "mains exam date", func(d *model.Draft) **model.Date { return &d.MainsDate }},
	{"result", "result date", func(d *model.Draft) **model.Date { return &d.ResultDate }},
}

func addDraftFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("name", "n", "", "exam name")
	f.StringP("category", "c", "", "category: "+joinCategories())
	f.String("app-no", "", "application number")
	f.String("reg-no", "", "registration number")
	f.String("notes", "", "free-form notes")
	for _, d := range dateFlags {
		f.String(d.name, "", d.usage+"; empty clears it")
	}
	f.StringArrayP("attach", "a", nil, "file to attach (repeatable)")
}

func joinCategories() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// applyDraftFlags copies every flag the user set onto d.
func applyDraftFlags(cmd *cobra.Command, d *model.Draft) error {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("name", &d.ExamName)
	str("app-no", &d.ApplicationNo)
	str("reg-no", &d.RegistrationNo)
	str("notes", &d.Notes)

	if f.Changed("category") {
		raw, _ := f.GetString("category")
		c, err := app.ParseCategory(raw)
		if err != nil {
			return err
		}
		d.Category = c
	}

	for _, df := range dateFlags {
		if !f.Changed(df.name) {
			continue
		}
		raw, _ := f.GetString(df.name)
		v, err := model.DatePtr(raw)
		if err != nil {
			return fmt.Errorf("--%s: %w", df.name, err)
		}
		*df.field(d) = v
	}
	return nil
}

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add an exam",
	Example: `  examtrack add -n "Bank PO 2025" -c Bank --last 2025-03-01 --prelims 2025-04-20 -a admit.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var draft model.Draft
		if err := applyDraftFlags(cmd, &draft); err != nil {
			return err
		}
		attach, _ := cmd.Flags().GetStringArray("attach")

		a, err := newApp("add")
		if err != nil {
			return err
		}
		defer a.Close()

		exam, err := a.AddExam(cmd.Context(), draft, attach)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s) with %d attachment(s)\n", exam.ExamName, shortID(exam.ID), len(exam.Attachments))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit an exam; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attach, _ := cmd.Flags().GetStringArray("attach")
		detach, _ := cmd.Flags().GetStringArray("detach")
		status, _ := cmd.Flags().GetString("status")

		a, err := newApp("edit")
		if err != nil {
			return err
		}
		defer a.Close()

		exam, err := a.EditExam(cmd.Context(), args[0], app.EditRequest{
			Edit: func(d *model.Draft) error {
				if cmd.Flags().Changed("status") {
					st, err := app.ParseStatus(status)
					if err != nil {
						return err
					}
					d.Status = st
				}
				return applyDraftFlags(cmd, d)
			},
			Add:    attach,
			Remove: detach,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (%s)\n", exam.ExamName, shortID(exam.ID))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Set an exam's status (Upcoming, Ongoing, Completed, Expired)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("status")
		if err != nil {
			return err
		}
		defer a.Close()

		exam, err := a.SetStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", exam.ExamName, exam.Status)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show every field of an exam",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("show")
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", e.ExamName)
		fmt.Printf("  ID:              %s\n", e.ID)
		fmt.Printf("  Category:        %s\n", e.Category)
		fmt.Printf("  Status:          %s\n", e.Status)
		fmt.Printf("  Application No:  %s\n", orNA(e.ApplicationNo))
		fmt.Printf("  Registration No: %s\n", orNA(e.RegistrationNo))
		fmt.Printf("  Applied:         %s\n", e.ApplyDate.Value().Format())
		fmt.Printf("  Last Date:       %s\n", e.LastDate.Value().Format())
		fmt.Printf("  Admit Card:      %s\n", e.AdmitCardDate.Value().Format())
		fmt.Printf("  Prelims:         %s\n", e.PrelimsDate.Value().Format())
		fmt.Printf("  Mains:           %s\n", e.MainsDate.Value().Format())
		fmt.Printf("  Result:          %s\n", e.ResultDate.Value().Format())
		if e.Notes != "" {
			fmt.Printf("  Notes:           %s\n", e.Notes)
		}
		for _, att := range e.Attachments {
			fmt.Printf("  Attachment:      %s (%s)\n", att.Name, att.MimeType)
		}
		fmt.Printf("  Updated:         %s\n", e.UpdatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [QUERY]",
	Short: "List exams on a dashboard tab, optionally filtered",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, _ := cmd.Flags().GetString("tab")
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		a, err := newApp("list")
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := a.List(tab, query)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Println("No exams found.")
			return nil
		}

		for _, e := range found {
			fmt.Printf("%-8s  %-30s  %-8s  %-10s  last:%s\n",
				shortID(e.ID), e.ExamName, e.Category, e.Status, e.LastDate.Value().Format())
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an exam",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("rm")
		if err != nil {
			return err
		}
		defer a.Close()

		exam, err := a.Get(args[0])
		if err != nil {
			return err
		}
		ok, err := confirm(fmt.Sprintf("Delete %q and its %d attachment(s)?", exam.ExamName, len(exam.Attachments)), yes)
		if err != nil || !ok {
			return err
		}

		if _, err := a.DeleteExam(exam.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", exam.ExamName)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every exam",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("clear")
		if err != nil {
			return err
		}
		defer a.Close()

		n := len(a.Exams())
		ok, err := confirm(fmt.Sprintf("Delete all %d exam(s)? This cannot be undone.", n), yes)
		if err != nil || !ok {
			return err
		}

		if err := a.ClearAll(); err != nil {
			return err
		}
		fmt.Printf("Deleted %d exam(s)\n", n)
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func init() {
	addDraftFlags(addCmd)
	addDraftFlags(editCmd)
	editCmd.Flags().StringArray("detach", nil, "name of an attachment to remove (repeatable)")
	editCmd.Flags().String("status", "", "new status")
	listCmd.Flags().StringP("tab", "t", "upcoming", "tab: upcoming, ongoing or completed")
	rmCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	clearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(addCmd, editCmd, statusCmd, showCmd, listCmd, rmCmd, clearCmd)
}
