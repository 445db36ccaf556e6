// Package pipeline drives one generation run: load, optionally probe,
// generate records, compose commands, write artifacts, optionally
// shred. A single control flow runs the stages sequentially; the only
// concurrency lives inside the prober.
package pipeline

import (
	"context"
	"time"

	"github.com/systmms/pamforge/internal/artifact"
	"github.com/systmms/pamforge/internal/config"
	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/inventory"
	"github.com/systmms/pamforge/internal/probe"
	"github.com/systmms/pamforge/internal/records"
	"github.com/systmms/pamforge/internal/script"
	"github.com/systmms/pamforge/internal/shred"
)

// Run executes one generation run. Fatal preconditions (missing CSV,
// missing gateway, zero surviving hosts) abort before any artifact is
// written; an interrupt aborts between stages so the writer is never
// reached mid-cancel.
func Run(ctx context.Context, cfg *config.Config) error {
	def := cfg.Definition
	log := cfg.Logger

	if def.Gateway == "" {
		return pferrors.ConfigError{
			Field:      "gateway",
			Message:    "gateway reference is required",
			Suggestion: "Pass --gateway or set 'gateway' in pamforge.yaml",
		}
	}

	entries, err := inventory.Load(def.CSV, inventory.Options{NoHeader: def.NoHeader}, log)
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
			Message:    "No valid host entries in " + def.CSV,
			Suggestion: "Check the CSV has hostname,initial_admin_user,initial_admin_password rows",
		}
	}

	working := entries
	if def.Probe.Enabled {
		log.Info("Running best-effort TCP %d probe on %d hosts", def.Probe.Port, len(working))
		working, err = probe.Filter(ctx, working, probe.Options{
			Port:    def.Probe.Port,
			Timeout: time.Duration(def.Probe.TimeoutMs) * time.Millisecond,
			Workers: def.Probe.Workers,
		}, log)
		if err != nil {
			return err
		}
		if len(working) == 0 {
			return pferrors.UserError{
				Message:    "No reachable hosts remain after probing",
				Suggestion: "Check firewall rules for the probe port, or rerun without --connectivity-check",
			}
		}
	}
	log.Info("Processing %d servers", len(working))

	batch, err := records.Generate(working, records.Options{
		UserFolder:      def.Folders.Users,
		ResourceFolder:  def.Folders.Resources,
		ParentFolder:    def.Folders.Parent,
		Protocol:        def.Connection.Protocol,
		Port:            def.Connection.Port,
		OperatingSystem: def.Connection.OperatingSystem,
		SSLVerification: def.Connection.SSLVerification,
	})
	if err != nil {
		return err
	}

	commands, err := script.Compose(working, script.Options{
		Gateway:        def.Gateway,
		RecordsFile:    def.Output.Records,
		UserFolder:     def.Folders.Users,
		ResourceFolder: def.Folders.Resources,
		ParentFolder:   def.Folders.Parent,
		Protocol:       def.Connection.Protocol,
		Port:           def.Connection.Port,
		Recording:      def.Connection.Recording,
		RotationAdmin:  def.Rotation.Admin,
		Schedule:       def.Rotation.Schedule,
		SkipConfig:     def.SkipConfigBinding,
	})
	if err != nil {
		return err
	}

	// An interrupt during probing or generation must not reach the
	// writer at all.
	if err := ctx.Err(); err != nil {
		return err
	}

	writer := artifact.NewWriter(log, def.DryRun)
	if err := writer.WriteBatch(def.Output.Records, batch); err != nil {
		return err
	}
	if err := writer.WriteScript(def.Output.Commands, commands); err != nil {
		return err
	}

	if def.Shred && !def.DryRun {
		log.Info("Shredding input and generated artifacts")
		shred.Files([]string{def.CSV, def.Output.Records, def.Output.Commands}, shred.DefaultPasses, log)
	}

	return nil
}
