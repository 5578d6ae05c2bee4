package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"encore/internal/auth"
	"encore/internal/catalog"
	"encore/internal/recommend"
	"encore/internal/repositories"
	"encore/internal/shared"
	"encore/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, listenerCommand, recommendCommand, syncCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDatabase opens and configures the sqlite database from config.
// The caller owns the returned handle.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// newClient builds a catalog client from config.
func (r *Runner) newClient() catalog.Client {
	return catalog.NewSpotifyClient(r.config.Recommend.Market, r.httpClient)
}

// buildEngine assembles the recommendation engine and its collaborators on
// top of an open database handle.
func (r *Runner) buildEngine(db *sql.DB) (*recommend.Engine, *repositories.HistoryRepository, error) {
	refresher, err := auth.NewRefresher(r.config.Credentials.Spotify, r.logger)
	if err != nil {
		return nil, nil, err
	}

	resolver := auth.NewResolver(repositories.NewCredentialRepository(db), r.logger)
	taste := repositories.NewTasteRepository(db)
	history := repositories.NewHistoryRepository(db)

	engine := recommend.NewEngine(r.newClient(), resolver, refresher, taste,
		r.config.Recommend.DefaultLimit, nil, r.logger)
	return engine, history, nil
}

// buildTasteEngine assembles the taste sync engine.
func (r *Runner) buildTasteEngine(db *sql.DB) *tasks.TasteEngine {
	resolver := auth.NewResolver(repositories.NewCredentialRepository(db), r.logger)
	taste := repositories.NewTasteRepository(db)
	factory := func() catalog.Client { return r.newClient() }
	return tasks.NewTasteEngine(factory, resolver, taste, r.logger)
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
