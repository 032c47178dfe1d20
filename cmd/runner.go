package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	music      *services.MusicService
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      repositories.Storage
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// Store replaces the configured database, mainly for tests.
	Store repositories.Storage
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	music := services.NewMusicService(opts.Config.Backend.URL, opts.HTTPClient)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		music:      music,
		api:        music.API(),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, generateCommand, harmonizeCommand, reharmonizeCommand, downloadCommand,
		favoritesCommand, themeCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// defaultConfigPath is the file the setup commands read and write unless told otherwise.
func (r *Runner) defaultConfigPath() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// storage opens the configured database on first use.
func (r *Runner) storage() (repositories.Storage, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.OpenStorage(r.config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage %s: %w", r.config.Storage.Path, err)
	}
	r.logger.Debug("storage opened", "path", r.config.Storage.Path)

	r.db = db
	r.store = repositories.NewKVStore(db)
	return r.store, nil
}

func (r *Runner) favorites() (*repositories.FavoritesRepository, error) {
	store, err := r.storage()
	if err != nil {
		return nil, err
	}
	return repositories.NewFavoritesRepository(store), nil
}

func (r *Runner) theme() (*repositories.ThemeRepository, error) {
	store, err := r.storage()
	if err != nil {
		return nil, err
	}
	return repositories.NewThemeRepository(store), nil
}

// Close releases the database opened by [Runner.storage].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
