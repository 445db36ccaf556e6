package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/pamforge/internal/config"
	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/inventory"
	"github.com/systmms/pamforge/internal/probe"
)

// NewProbeCommand runs the connectivity check on its own, without
// generating anything. Useful for sizing a run before onboarding.
func NewProbeCommand(cfg *config.Config) *cobra.Command {
	var (
		csvPath  string
		noHeader bool
		port     int
		timeout  time.Duration
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check host reachability without generating artifacts",
		Long: `Probe loads the host CSV and tests whether each host accepts a TCP
connection on the target port. Results are advisory: a reachable port
does not guarantee the onboarding will succeed, and an unreachable one
only means this machine could not connect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := inventory.Load(csvPath, inventory.Options{NoHeader: noHeader}, cfg.Logger)
			if err != nil {
				return err
			}
			defer func() {
				for i := range entries {
					entries[i].Password.Destroy()
				}
			}()
			if len(entries) == 0 {
				return pferrors.UserError{
					Message:    "No valid host entries in " + csvPath,
					Suggestion: "Check the CSV has hostname,initial_admin_user,initial_admin_password rows",
				}
			}

			cfg.Logger.Info("Probing %d hosts on TCP %d (%d workers)", len(entries), port, workers)
			reachable, err := probe.Filter(cmd.Context(), entries, probe.Options{
				Port:    port,
				Timeout: timeout,
				Workers: workers,
			}, cfg.Logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HOST\tSTATUS")
			up := make(map[string]bool, len(reachable))
			for _, e := range reachable {
				up[e.Hostname] = true
			}
			for _, e := range entries {
				status := "unreachable"
				if up[e.Hostname] {
					status = "reachable"
				}
				fmt.Fprintf(w, "%s\t%s\n", e.Hostname, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			cfg.Logger.Info("%d/%d hosts reachable", len(reachable), len(entries))
			if len(reachable) == 0 {
				return pferrors.UserError{
					Message:    "No hosts reachable",
					Suggestion: "Check firewall rules for the probe port and that hosts resolve from this machine",
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", config.Defaults().CSV, "CSV with hostname,initial_admin_user,initial_admin_password")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the CSV as strict headerless three-column input")
	cmd.Flags().IntVar(&port, "port", config.Defaults().Probe.Port, "TCP port to probe")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "Per-probe timeout")
	cmd.Flags().IntVar(&workers, "workers", probe.DefaultWorkers(), "Probe worker count")

	return cmd
}
