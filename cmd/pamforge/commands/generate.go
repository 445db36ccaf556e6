package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/pamforge/internal/config"
	"github.com/systmms/pamforge/internal/logging"
	"github.com/systmms/pamforge/internal/pipeline"
	"github.com/systmms/pamforge/internal/records"
	"github.com/systmms/pamforge/internal/script"
)

func NewGenerateCommand(cfg *config.Config) *cobra.Command {
	var (
		gateway        string
		csvPath        string
		noHeader       bool
		userFolder     string
		resourceFolder string
		parentFolder   string

		protocol      string
		port          int
		osTag         string
		sslVerify     bool
		recording     bool
		rotationAdmin string
		scheduleJSON  string
		skipConfig    bool

		connectivityCheck bool
		probePort         int
		probeTimeout      time.Duration
		workers           int

		outRecords  string
		outCommands string
		dryRun      bool
		shredAfter  bool
	)

	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the PAM import JSON and provisioning command script",
		Long: `Generate reads the host CSV, deduplicates it, optionally probes each
host for reachability, and writes two artifacts: the record import JSON
and a four-stage keeper command script (import, configuration binding,
connection wiring, rotation scheduling).

No artifact is touched until the whole run has been validated; use
--dry-run to preview what would be written.

Examples:
  pamforge generate --gateway GW123 --csv servers.csv
  pamforge generate --gateway GW123 --protocol ssh --parent-folder Datacenter
  pamforge generate --gateway GW123 --connectivity-check --workers 16
  pamforge generate --gateway GW123 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadOrDefaults(); err != nil {
				return err
			}
			def := cfg.Definition

			// Flags override file values only when set explicitly.
			flags := cmd.Flags()
			if flags.Changed("gateway") {
				def.Gateway = gateway
			}
			if flags.Changed("csv") {
				def.CSV = csvPath
			}
			if flags.Changed("no-header") {
				def.NoHeader = noHeader
			}
			if flags.Changed("user-folder") {
				def.Folders.Users = userFolder
			}
			if flags.Changed("resource-folder") {
				def.Folders.Resources = resourceFolder
			}
			if flags.Changed("parent-folder") {
				def.Folders.Parent = parentFolder
			}
			if flags.Changed("protocol") {
				def.Connection.Protocol = protocol
			}
			if flags.Changed("port") {
				def.Connection.Port = port
			}
			if flags.Changed("os") {
				def.Connection.OperatingSystem = osTag
			}
			if flags.Changed("enable-ssl-verification") {
				def.Connection.SSLVerification = sslVerify
			}
			if flags.Changed("enable-recording") {
				def.Connection.Recording = recording
			}
			if flags.Changed("rotation-admin") {
				def.Rotation.Admin = rotationAdmin
			}
			if flags.Changed("schedule-json") {
				def.Rotation.Schedule = scheduleJSON
			}
			if flags.Changed("skip-config") {
				def.SkipConfigBinding = skipConfig
			}
			if flags.Changed("connectivity-check") {
				def.Probe.Enabled = connectivityCheck
			}
			if flags.Changed("probe-port") {
				def.Probe.Port = probePort
			}
			if flags.Changed("probe-timeout") {
				def.Probe.TimeoutMs = int(probeTimeout.Milliseconds())
			}
			if flags.Changed("workers") {
				def.Probe.Workers = workers
			}
			if flags.Changed("out-records") {
				def.Output.Records = outRecords
			}
			if flags.Changed("out-commands") {
				def.Output.Commands = outCommands
			}
			if flags.Changed("dry-run") {
				def.DryRun = dryRun
			}
			if flags.Changed("shred") {
				def.Shred = shredAfter
			}

			// Every run leaves a durable log trail even when no
			// artifact gets written.
			if cfg.LogFile == "" {
				runLog := logging.RunLogPath(time.Now())
				if err := cfg.Logger.AttachFile(runLog); err != nil {
					return err
				}
				cfg.Logger.Debug("Run log: %s", runLog)
			}
			defer func() { _ = cfg.Logger.Close() }()

			return pipeline.Run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&gateway, "gateway", "", "Gateway UID to bind configurations to (required unless set in config)")
	cmd.Flags().StringVar(&csvPath, "csv", defaults.CSV, "CSV with hostname,initial_admin_user,initial_admin_password")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the CSV as strict headerless three-column input")
	cmd.Flags().StringVar(&userFolder, "user-folder", defaults.Folders.Users, "Shared folder for credential records")
	cmd.Flags().StringVar(&resourceFolder, "resource-folder", defaults.Folders.Resources, "Shared folder for machine records")
	cmd.Flags().StringVar(&parentFolder, "parent-folder", "", "Existing parent shared-folder path to nest both folders under")
	cmd.Flags().StringVar(&protocol, "protocol", defaults.Connection.Protocol, "Connection protocol: "+strings.Join(records.Protocols(), ", "))
	cmd.Flags().IntVar(&port, "port", 0, "Connection port override (default: protocol default)")
	cmd.Flags().StringVar(&osTag, "os", defaults.Connection.OperatingSystem, "Operating system tag on machine records")
	cmd.Flags().BoolVar(&sslVerify, "enable-ssl-verification", false, "Enable the SSL verification flag on machine records")
	cmd.Flags().BoolVar(&recording, "enable-recording", false, "Enable session recording on connection commands")
	cmd.Flags().StringVar(&rotationAdmin, "rotation-admin", "", "Credential UID performing rotations (default: self-administered)")
	cmd.Flags().StringVar(&scheduleJSON, "schedule-json", script.DefaultSchedule, "Rotation schedule JSON, passed through verbatim")
	cmd.Flags().BoolVar(&skipConfig, "skip-config", false, "Skip the configuration-binding stage (folders already bound)")
	cmd.Flags().BoolVar(&connectivityCheck, "connectivity-check", false, "Probe hosts before generating and drop unreachable ones")
	cmd.Flags().IntVar(&probePort, "probe-port", defaults.Probe.Port, "TCP port the connectivity check probes")
	cmd.Flags().DurationVar(&probeTimeout, "probe-timeout", time.Duration(defaults.Probe.TimeoutMs)*time.Millisecond, "Per-probe timeout")
	cmd.Flags().IntVar(&workers, "workers", 0, "Probe worker count (default: min(32, 5*CPUs))")
	cmd.Flags().StringVar(&outRecords, "out-records", defaults.Output.Records, "Record import JSON output path")
	cmd.Flags().StringVar(&outCommands, "out-commands", defaults.Output.Commands, "Command script output path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would be written without touching the filesystem")
	cmd.Flags().BoolVar(&shredAfter, "shred", false, "Securely delete the input CSV and artifacts after a successful run")

	return cmd
}
