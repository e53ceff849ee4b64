// Package cli implements the aquarium command-line tool. Each subcommand
// opens the configured store, rebuilds the owner's tank and runs one
// operation against it.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sort"

	"github.com/piwi3910/Aquarium/internal/config"
	"github.com/piwi3910/Aquarium/internal/model"
	"github.com/piwi3910/Aquarium/internal/project"
	"github.com/piwi3910/Aquarium/internal/session"
	"github.com/piwi3910/Aquarium/internal/store"
)

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("invalid usage")

// DefaultConfigFile is read when -config is not given.
const DefaultConfigFile = "aquarium.yaml"

type command struct {
	summary string
	run     func(a *app, args []string) error
}

var commands = map[string]command{
	"place":    {"drop a new object near a world point", runPlace},
	"move":     {"nudge an object one or more tiles", runMove},
	"remove":   {"remove objects by id", runRemove},
	"list":     {"list placed objects", runList},
	"stats":    {"print tank coverage", runStats},
	"arrange":  {"drop catalog items in bulk (Name=qty ...)", runArrange},
	"import":   {"insert objects from a CSV, Excel or DXF file", runImport},
	"export":   {"write the tank as PDF, labels, Excel, DXF or JSON", runExport},
	"catalog":  {"list or import decor presets", runCatalog},
	"template": {"save, apply or list layout templates", runTemplate},
	"backup":   {"write every stored object, the catalog and preferences to JSON", runBackup},
	"restore":  {"load a backup written by the backup command", runRestore},
	"edit":     {"open the tank in the terminal editor", runEdit},
}

// preferences is the subset of SettingsManager the commands use. The file
// backend keeps the same data in a JSON file.
type preferences interface {
	Config() model.AppConfig
	SetConfig(c model.AppConfig)
	TouchOwner(owner string)
	Save() error
}

type filePreferences struct {
	path   string
	config model.AppConfig
}

func loadFilePreferences(path string) *filePreferences {
	cfg, err := project.LoadAppConfig(path)
	if err != nil {
		log.Printf("[CLI] Warning: failed to load preferences from %s: %v (using defaults)", path, err)
		cfg = model.DefaultAppConfig()
	}
	return &filePreferences{path: path, config: cfg}
}

func (p *filePreferences) Config() model.AppConfig     { return p.config }
func (p *filePreferences) SetConfig(c model.AppConfig) { p.config = c }
func (p *filePreferences) TouchOwner(owner string)     { p.config.TouchRecentOwner(owner) }
func (p *filePreferences) Save() error                 { return project.SaveAppConfig(p.path, p.config) }

type app struct {
	cfg   *config.Config
	out   io.Writer
	store session.ObjectStore
	prefs preferences

	sess *session.Session
}

// Run parses global flags, then dispatches to the named subcommand.
func Run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("aquarium", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", DefaultConfigFile, "path to the YAML config file")
	owner := fs.String("owner", "", "tank owner; overrides owner_id from the config")
	fs.Usage = func() { printUsage(stdout, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stdout, fs)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		printUsage(stdout, fs)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, rest[0])
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *owner != "" {
		cfg.OwnerID = *owner
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(cfg, stdout)
	if err != nil {
		return err
	}
	defer a.close()
	return cmd.run(a, rest[1:])
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: aquarium [-config file] [-owner id] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fs.PrintDefaults()
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, out: out}
	switch cfg.Storage.Backend {
	case config.BackendGdata:
		gs, err := store.OpenGdataStore(cfg.Storage.AppName)
		if err != nil {
			return nil, err
		}
		a.store = gs
		a.prefs = store.NewSettingsManager(gs.Manager())
	default:
		a.store = project.NewFileStore(a.dataFile(cfg.Storage.Path, "objects.json", project.DefaultObjectsPath))
		a.prefs = loadFilePreferences(a.dataFile("", "config.json", project.DefaultConfigPath))
	}
	return a, nil
}

// dataFile resolves a data file: an explicit path wins, then data_dir,
// then the default location under ~/.aquarium.
func (a *app) dataFile(explicit, name string, fallback func() string) string {
	if explicit != "" {
		return explicit
	}
	if a.cfg.Storage.DataDir != "" {
		return filepath.Join(a.cfg.Storage.DataDir, name)
	}
	return fallback()
}

func (a *app) catalogPath() string {
	return a.dataFile("", "catalog.json", project.DefaultCatalogPath)
}

func (a *app) templatesPath() string {
	return a.dataFile("", "templates.json", project.DefaultTemplatesPath)
}

func (a *app) catalog() (model.Catalog, error) {
	cat, err := project.LoadCatalog(a.catalogPath())
	if err != nil {
		return model.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// session opens the owner's tank on first use.
func (a *app) session() (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	sess, err := session.Open(a.cfg.WorldSettings(), a.store, a.cfg.OwnerID)
	if err != nil {
		return nil, err
	}
	a.prefs.TouchOwner(a.cfg.OwnerID)
	a.sess = sess
	return sess, nil
}

func (a *app) close() {
	if err := a.prefs.Save(); err != nil {
		log.Printf("[CLI] Warning: failed to save preferences: %v", err)
	}
}

// newFlagSet returns a subcommand flag set that reports errors instead of
// exiting.
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w: %v", fs.Name(), ErrUsage, err)
	}
	return nil
}
