package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/pamforge/internal/config"
	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/shred"
)

func NewShredCommand(cfg *config.Config) *cobra.Command {
	var (
		force     bool
		passes    int
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "shred [paths...]",
		Short: "Securely delete files",
		Long: `Securely delete input CSVs and generated artifacts to prevent recovery.

This command overwrites files with random data multiple times before deletion
to make recovery more difficult. Use with caution - this operation is irreversible.

Examples:
  pamforge shred servers.csv                     # Delete the input CSV
  pamforge shred pam_records_import.json pam_commands.txt
  pamforge shred --recursive onboarding/         # Delete directory recursively
  pamforge shred --passes 5 servers.csv          # Custom overwrite passes

Security Note:
Modern SSDs with wear leveling may still retain data. For maximum security,
use full disk encryption and proper key management.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return pferrors.UserError{
					Message:    "No files specified",
					Suggestion: "Provide one or more file paths to shred",
				}
			}
			if passes < 1 || passes > 10 {
				return pferrors.UserError{
					Message:    "Invalid number of passes",
					Suggestion: "Passes must be between 1 and 10",
				}
			}

			var files []string
			for _, path := range args {
				collected, err := shred.Collect(path, recursive)
				if err != nil {
					return err
				}
				files = append(files, collected...)
			}
			if len(files) == 0 {
				fmt.Println("No files found to shred")
				return nil
			}

			fmt.Printf("Files to be securely deleted (%d passes):\n", passes)
			for _, file := range files {
				fmt.Printf("  %s\n", file)
			}
			fmt.Println()

			if !force {
				if cfg.NonInteractive {
					return pferrors.UserError{
						Message:    "Confirmation required",
						Suggestion: "Pass --force when running non-interactively",
					}
				}
				fmt.Print("⚠️  This operation is IRREVERSIBLE. Continue? (y/N): ")
				var response string
				_, _ = fmt.Scanln(&response)
				if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
					fmt.Println("Operation cancelled")
					return nil
				}
			}

			shredded := shred.Files(files, passes, cfg.Logger)
			cfg.Logger.Info("Securely deleted %d/%d files", shredded, len(files))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force deletion without confirmation")
	cmd.Flags().IntVarP(&passes, "passes", "n", shred.DefaultPasses, "Number of overwrite passes")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recursively shred directories")

	return cmd
}
