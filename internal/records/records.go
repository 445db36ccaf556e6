// Package records synthesizes the cross-referenced PAM record batch
// from a loaded host inventory. Generation is a pure transformation:
// one pamUser and one pamMachine per host, linked by a run-scoped
// identifier that is meaningless after import.
package records

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/inventory"
)

// defaultPorts maps each supported connection protocol to its
// conventional port.
var defaultPorts = map[string]int{
	"rdp":        3389,
	"ssh":        22,
	"vnc":        5900,
	"sql-server": 1433,
	"mysql":      3306,
	"postgresql": 5432,
}

// Protocols returns the supported protocol names, sorted.
func Protocols() []string {
	names := make([]string, 0, len(defaultPorts))
	for name := range defaultPorts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPort returns the conventional port for protocol.
func DefaultPort(protocol string) (int, error) {
	port, ok := defaultPorts[protocol]
	if !ok {
		return 0, pferrors.ConfigError{
			Field:      "protocol",
			Value:      protocol,
			Message:    "unsupported protocol",
			Suggestion: "Choose one of: " + strings.Join(Protocols(), ", "),
		}
	}
	return port, nil
}

// Options holds the generation configuration shared by the record
// batch and the command script.
type Options struct {
	UserFolder      string
	ResourceFolder  string
	ParentFolder    string
	Protocol        string
	Port            int // 0 = protocol default
	OperatingSystem string
	SSLVerification bool
}

// EffectivePort resolves the port override against the protocol default.
func (o Options) EffectivePort() (int, error) {
	if o.Port > 0 {
		if o.Port > 65535 {
			return 0, pferrors.ConfigError{
				Field:   "port",
				Value:   o.Port,
				Message: "port out of range",
			}
		}
		return o.Port, nil
	}
	return DefaultPort(o.Protocol)
}

// Folder is a record's placement descriptor inside a shared folder.
type Folder struct {
	SharedFolder string `json:"shared_folder"`
	CanEdit      bool   `json:"can_edit"`
	CanShare     bool   `json:"can_share"`
}

// UserRecord is the pamUser credential record for one host.
type UserRecord struct {
	Type     string   `json:"$type"`
	UID      string   `json:"uid"`
	Title    string   `json:"title"`
	Login    string   `json:"login"`
	Password string   `json:"password"`
	Folders  []Folder `json:"folders"`
}

// Settings is the pamSettings placeholder. It must always be present,
// even empty, or the import rejects the record.
type Settings struct {
	Connection  map[string]any `json:"connection"`
	PortForward map[string]any `json:"portForward"`
}

// HostPort is the pamHostname connection block.
type HostPort struct {
	HostName string `json:"hostName"`
	Port     string `json:"port"`
}

// CustomFields carries the pamMachine connection metadata.
type CustomFields struct {
	Settings        Settings `json:"$pamSettings"`
	Hostname        HostPort `json:"$pamHostname"`
	SSLVerification bool     `json:"$checkbox:sslVerification"`
	OperatingSystem string   `json:"operatingSystem"`
}

// MachineRecord is the pamMachine resource record for one host. Links
// references the owning credential by run-scoped identifier.
type MachineRecord struct {
	Type         string       `json:"$type"`
	Title        string       `json:"title"`
	Login        string       `json:"login"`
	Password     string       `json:"password"`
	Folders      []Folder     `json:"folders"`
	CustomFields CustomFields `json:"custom_fields"`
	Links        []string     `json:"links"`
}

// SharedFolder is a shared-folder definition in the import wrapper.
// The generator never creates these directly; the list is emitted
// empty so the wrapper shape stays import-compatible.
type SharedFolder struct {
	Path string `json:"path"`
}

// Pair is the credential/resource record pair generated for one host.
type Pair struct {
	User    UserRecord
	Machine MachineRecord
}

// Batch is one run's generated record set.
type Batch struct {
	SharedFolders []SharedFolder
	Pairs         []Pair
}

// MarshalJSON emits the import wrapper: shared_folders plus the flat
// records list, user before machine for each host.
func (b *Batch) MarshalJSON() ([]byte, error) {
	records := make([]any, 0, len(b.Pairs)*2)
	for i := range b.Pairs {
		records = append(records, b.Pairs[i].User, b.Pairs[i].Machine)
	}
	return json.Marshal(struct {
		SharedFolders []SharedFolder `json:"shared_folders"`
		Records       []any          `json:"records"`
	}{
		SharedFolders: b.SharedFolders,
		Records:       records,
	})
}

// UserTitle is the fixed naming convention for credential records. The
// command script addresses records by folder plus this title, so it
// must stay in lockstep with generation.
func UserTitle(hostname string) string {
	return hostname + " Local Admin"
}

// newRunID returns a collision-resistant identifier unique within a
// run. The value never leaves the generated batch.
func newRunID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Generate produces the record batch for entries. Entries are assumed
// deduplicated and ordered by the loader; order is preserved.
func Generate(entries []inventory.HostEntry, opts Options) (*Batch, error) {
	port, err := opts.EffectivePort()
	if err != nil {
		return nil, err
	}
	portStr := strconv.Itoa(port)

	batch := &Batch{
		SharedFolders: []SharedFolder{},
		Pairs:         make([]Pair, 0, len(entries)),
	}

	for _, entry := range entries {
		password, err := entry.Password.Reveal()
		if err != nil {
			return nil, fmt.Errorf("failed to unseal credential for %s: %w", entry.Hostname, err)
		}
		uid := newRunID()

		user := UserRecord{
			Type:     "pamUser",
			UID:      uid,
			Title:    UserTitle(entry.Hostname),
			Login:    entry.Username,
			Password: password,
			Folders: []Folder{{
				SharedFolder: opts.UserFolder,
				CanEdit:      true,
				CanShare:     true,
			}},
		}

		machine := MachineRecord{
			Type:     "pamMachine",
			Title:    entry.Hostname,
			Login:    "stub",
			Password: "stub",
			Folders: []Folder{{
				SharedFolder: opts.ResourceFolder,
				CanEdit:      true,
				CanShare:     true,
			}},
			CustomFields: CustomFields{
				Settings: Settings{
					Connection:  map[string]any{},
					PortForward: map[string]any{},
				},
				Hostname: HostPort{
					HostName: entry.Hostname,
					Port:     portStr,
				},
				SSLVerification: opts.SSLVerification,
				OperatingSystem: opts.OperatingSystem,
			},
			Links: []string{uid},
		}

		batch.Pairs = append(batch.Pairs, Pair{User: user, Machine: machine})
	}

	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return batch, nil
}

// Validate checks the batch's internal invariants: identifiers are
// unique and every machine references exactly its own pair's
// credential. A failure here is a programming error, not a recoverable
// runtime condition.
func (b *Batch) Validate() error {
	uids := make(map[string]bool, len(b.Pairs))
	for i := range b.Pairs {
		pair := &b.Pairs[i]
		if pair.User.UID == "" {
			return fmt.Errorf("record batch corrupt: missing identifier for %q", pair.User.Title)
		}
		if uids[pair.User.UID] {
			return fmt.Errorf("record batch corrupt: identifier collision %q", pair.User.UID)
		}
		uids[pair.User.UID] = true
		if len(pair.Machine.Links) != 1 || pair.Machine.Links[0] != pair.User.UID {
			return fmt.Errorf("record batch corrupt: %q does not reference its credential", pair.Machine.Title)
		}
	}
	return nil
}
