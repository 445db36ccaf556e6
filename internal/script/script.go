// Package script composes the ordered provisioning command sequence.
// Commands are assembled as typed field/value pairs and only serialized
// to text at emission, keeping the stage-ordering logic separate from
// string formatting. Stage order is fixed: import, configuration
// binding, connection wiring, rotation scheduling; each stage only
// references entities created by an earlier stage, addressed by vault
// path (folder plus title), never by the transient import identifier.
package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/inventory"
	"github.com/systmms/pamforge/internal/records"
)

// DefaultSchedule is the rotation schedule used when the caller
// supplies none: daily at 02:00 UTC.
const DefaultSchedule = `{"type":"DAILY","time":"02:00","tz":"UTC"}`

// Flag is one typed option on a command line.
type Flag struct {
	Name  string
	Value string
	// Bare flags render without a value (e.g. --enable).
	Bare bool
	// Eq flags render as name=value instead of name value.
	Eq bool
}

// Command is one executable line, kept structured until rendering.
type Command struct {
	Words []string
	Flags []Flag
}

func (c Command) String() string {
	parts := append([]string{}, c.Words...)
	for _, f := range c.Flags {
		switch {
		case f.Bare:
			parts = append(parts, f.Name)
		case f.Eq:
			parts = append(parts, f.Name+"="+f.Value)
		default:
			parts = append(parts, f.Name, f.Value)
		}
	}
	return strings.Join(parts, " ")
}

// Stage is one fixed step of the provisioning sequence.
type Stage struct {
	Name     string
	Commands []Command
}

// Script is a complete, ordered provisioning command sequence.
type Script struct {
	Title       string
	GeneratedAt time.Time
	Stages      []Stage
}

// Options configures command composition.
type Options struct {
	// Gateway references the agent that will execute connections and
	// rotations. Required.
	Gateway string
	// RecordsFile is the import JSON the first stage loads.
	RecordsFile string

	UserFolder     string
	ResourceFolder string
	ParentFolder   string

	Protocol string
	Port     int // 0 = protocol default

	// Recording adds session-recording flags to connection wiring.
	// When disabled the flags are absent entirely; the interpreter
	// accepts no disabling form.
	Recording bool

	// RotationAdmin references a centralized rotation credential.
	// Empty falls back to self-administered rotation.
	RotationAdmin string
	// Schedule is passed through verbatim (single quotes normalized to
	// double quotes); well-formedness is the caller's responsibility.
	Schedule string

	SkipConfig bool

	// GeneratedAt stamps the header comment only, never an executable
	// line. Zero means the current UTC time.
	GeneratedAt time.Time
}

// folderPath returns the post-import vault path of a shared folder,
// accounting for the parent-folder move emitted in the configuration
// stage.
func folderPath(parent, folder string) string {
	if parent == "" {
		return "/" + folder
	}
	return "/" + parent + "/" + folder
}

func quoted(s string) string {
	return `"` + s + `"`
}

// Compose builds the four-stage command sequence for entries. For a
// fixed entry order and fixed options the result renders byte-for-byte
// identically (given the same GeneratedAt).
func Compose(entries []inventory.HostEntry, opts Options) (*Script, error) {
	if opts.Gateway == "" {
		return nil, pferrors.ConfigError{
			Field:      "gateway",
			Message:    "gateway reference is required",
			Suggestion: "Pass --gateway with the gateway UID",
		}
	}
	port := opts.Port
	if port <= 0 {
		var err error
		port, err = records.DefaultPort(opts.Protocol)
		if err != nil {
			return nil, err
		}
	}
	schedule := opts.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	// The downstream interpreter requires double-quoted JSON.
	schedule = strings.ReplaceAll(schedule, "'", `"`)

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	// Connection and rotation commands reference the configuration by
	// its folder's post-move vault path.
	configPath := folderPath(opts.ParentFolder, opts.ResourceFolder)

	s := &Script{
		Title:       "PAM onboarding commands",
		GeneratedAt: generatedAt,
	}

	// Stage 1: bulk import of the serialized record batch.
	s.Stages = append(s.Stages, Stage{
		Name: "IMPORT",
		Commands: []Command{{
			Words: []string{"keeper", "import", opts.RecordsFile},
			Flags: []Flag{{Name: "--format", Value: "json"}},
		}},
	})

	// Stage 2: configuration binding, one config per managed folder,
	// plus folder moves when nesting under a parent. Skippable when
	// the folders are already bound.
	if !opts.SkipConfig {
		binding := Stage{Name: "CONFIGURATION"}
		for _, folder := range []string{opts.UserFolder, opts.ResourceFolder} {
			binding.Commands = append(binding.Commands, Command{
				Words: []string{"keeper", "pam", "config", "new"},
				Flags: []Flag{
					{Name: "--environment", Value: "local"},
					{Name: "--title", Value: quoted("Config for " + folder)},
					{Name: "--shared-folder", Value: quoted(folder)},
					{Name: "-g", Value: opts.Gateway},
					{Name: "--connections", Value: "on", Eq: true},
					{Name: "--rotation", Value: "on", Eq: true},
				},
			})
		}
		if opts.ParentFolder != "" {
			for _, folder := range []string{opts.UserFolder, opts.ResourceFolder} {
				binding.Commands = append(binding.Commands, Command{
					Words: []string{
						"keeper", "folder", "move",
						quoted("/" + folder),
						quoted(folderPath(opts.ParentFolder, folder)),
					},
				})
			}
		}
		s.Stages = append(s.Stages, binding)
	}

	// Stage 3: connection wiring, one command per resource.
	wiring := Stage{Name: "CONNECTIONS"}
	for _, entry := range entries {
		machinePath := folderPath(opts.ParentFolder, opts.ResourceFolder) + "/" + entry.Hostname
		userPath := folderPath(opts.ParentFolder, opts.UserFolder) + "/" + records.UserTitle(entry.Hostname)
		flags := []Flag{
			{Name: "--config", Value: quoted(configPath)},
			{Name: "--admin-user", Value: quoted(userPath)},
			{Name: "--protocol", Value: opts.Protocol},
			{Name: "--connections", Value: "on"},
			{Name: "--connections-override-port", Value: strconv.Itoa(port)},
		}
		if opts.Recording {
			flags = append(flags,
				Flag{Name: "--connections-recording", Value: "on"},
				Flag{Name: "--typescript-recording", Value: "on"},
			)
		}
		wiring.Commands = append(wiring.Commands, Command{
			Words: []string{"keeper", "pam", "connection", "edit", quoted(machinePath)},
			Flags: flags,
		})
	}
	s.Stages = append(s.Stages, wiring)

	// Stage 4: rotation scheduling, one command per credential.
	rotation := Stage{Name: "ROTATION"}
	for _, entry := range entries {
		machinePath := folderPath(opts.ParentFolder, opts.ResourceFolder) + "/" + entry.Hostname
		userPath := folderPath(opts.ParentFolder, opts.UserFolder) + "/" + records.UserTitle(entry.Hostname)
		flags := []Flag{
			{Name: "--record", Value: quoted(userPath)},
			{Name: "--resource", Value: quoted(machinePath)},
			{Name: "--config", Value: quoted(configPath)},
			{Name: "--enable", Bare: true},
			{Name: "--force", Bare: true},
		}
		if opts.RotationAdmin != "" {
			flags = append(flags, Flag{Name: "--admin-user", Value: opts.RotationAdmin})
		}
		flags = append(flags, Flag{Name: "-sj", Value: "'" + schedule + "'"})
		rotation.Commands = append(rotation.Commands, Command{
			Words: []string{"keeper", "pam", "rotation", "set"},
			Flags: flags,
		})
	}
	s.Stages = append(s.Stages, rotation)

	return s, nil
}

// CommandCount returns the number of executable lines in the script.
func (s *Script) CommandCount() int {
	n := 0
	for _, stage := range s.Stages {
		n += len(stage.Commands)
	}
	return n
}

// Render serializes the script: a leading comment block with title and
// ISO-8601 UTC generation timestamp, then each stage under a commented
// header, one command per line.
func (s *Script) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# ==== %s generated %s ====\n",
		s.Title, s.GeneratedAt.UTC().Format("2006-01-02T15:04Z"))
	for _, stage := range s.Stages {
		fmt.Fprintf(&b, "\n# ---- %s ----\n", stage.Name)
		for _, cmd := range stage.Commands {
			b.WriteString(cmd.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
