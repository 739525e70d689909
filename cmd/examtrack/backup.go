package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("keys-init")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		again, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != again {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.InitKeys(pass); err != nil {
			return err
		}
		fmt.Println("Key pair created. Keep the passphrase safe: snapshots cannot be restored without it.")
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Store an encrypted snapshot of all exams in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("backup")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Stored snapshot %s\n", name)
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("snapshots")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.Snapshots(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [SNAPSHOT]",
	Short: "Replace all exams with a snapshot (newest if none given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		a, err := newApp("restore")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := confirm(fmt.Sprintf("Replace all %d exam(s) with the snapshot?", len(a.Exams())), yes)
		if err != nil || !ok {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		restored, n, err := a.Restore(cmd.Context(), name, pass)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored %d exam(s) from %s\n", n, restored)
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysInitCmd)
	restoreCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(keysCmd, backupCmd, snapshotsCmd, restoreCmd)
}
