package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/pamforge/internal/config"
)

const exampleConfig = `version: 1

# Gateway UID that executes connections and rotations.
gateway: ""

# Input CSV: hostname,initial_admin_user,initial_admin_password
csv: servers_to_import.csv
# no_header: true   # strict headerless three-column input

folders:
  users: PAM_Users
  resources: PAM_Resources
  # parent: Datacenter   # nest both folders under an existing shared folder

connection:
  protocol: rdp          # rdp, ssh, vnc, sql-server, mysql, postgresql
  # port: 3390           # override the protocol default
  os: Windows
  ssl_verification: false
  recording: false

rotation:
  # admin: ""            # credential UID performing resets; empty = self-administered
  # schedule: '{"type":"DAILY","time":"02:00","tz":"UTC"}'

probe:
  enabled: false
  port: 5986
  timeout_ms: 3000
  # workers: 16

output:
  records: pam_records_import.json
  commands: pam_commands.txt
`

func NewInitCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pamforge configuration",
		Long:  "Create a pamforge.yaml file with example configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfg.Path); err == nil {
				return fmt.Errorf("%s already exists. Remove it first if you want to reinitialize", cfg.Path)
			}

			if err := os.WriteFile(cfg.Path, []byte(exampleConfig), 0644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cfg.Logger.Info("Created %s", cfg.Path)
			cfg.Logger.Info("Next steps:")
			cfg.Logger.Info("  1. Set 'gateway' to your gateway UID")
			cfg.Logger.Info("  2. Prepare the host CSV (hostname,initial_admin_user,initial_admin_password)")
			cfg.Logger.Info("  3. Run 'pamforge probe' to check host reachability")
			cfg.Logger.Info("  4. Run 'pamforge generate --dry-run' to preview the artifacts")
			return nil
		},
	}

	return cmd
}
