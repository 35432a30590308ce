package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/config"
	"github.com/fwojciec/locrag/fs"
	"github.com/fwojciec/locrag/gemini"
	"github.com/fwojciec/locrag/goquery"
	"github.com/fwojciec/locrag/htmltomarkdown"
	lochttp "github.com/fwojciec/locrag/http"
	"github.com/fwojciec/locrag/ratelimit"
	"github.com/fwojciec/locrag/readability"
	"github.com/fwojciec/locrag/rod"
	locslog "github.com/fwojciec/locrag/slog"
	"github.com/fwojciec/locrag/sqlite"
	"github.com/fwojciec/locrag/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", locrag.ErrorMessage(err))
	}

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads the environment. Replaced in tests.
	Getenv func(string) string

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close releases everything opened by Run.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run parses args, wires the services and runs the selected command.
// Errors are printed to stderr before being returned.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("locrag"),
		kong.Description("Chat with your documents using Gemini File Search."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	cfg, err := config.Load(cli.Config, m.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", locrag.ErrorMessage(err))
		if strings.Contains(locrag.ErrorMessage(err), "GEMINI_API_KEY") {
			fmt.Fprintln(stderr, "Get an API key at https://aistudio.google.com/apikey and export GEMINI_API_KEY.")
		}
		return err
	}

	defer m.Close()
	if err := m.run(ctx, cfg, cli, kongCtx, deps); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", locrag.ErrorMessage(err))
		return err
	}
	return nil
}

func (m *Main) run(ctx context.Context, cfg *config.Config, cli *CLI, kongCtx *kong.Context, deps *Dependencies) error {
	if err := m.wire(ctx, cfg, deps); err != nil {
		return err
	}

	if err := deps.Session.Open(ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", locrag.ErrorMessage(err))
	}
	if cli.AutoCreate && usesStore(kongCtx.Command()) && deps.Session.State() == locrag.StateNoStore {
		if err := createStore(deps); err != nil {
			return err
		}
	}
	return kongCtx.Run(deps)
}

// usesStore reports whether command reads from or writes to the current
// store. Only those commands trigger --auto-create.
func usesStore(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	switch name {
	case "chat", "tui", "ask", "upload", "posts":
		return true
	}
	return false
}

// wire builds the services described by cfg into deps.
func (m *Main) wire(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	logger, logCloser, err := locslog.NewLogger(locslog.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}, nil)
	if err != nil {
		return err
	}
	m.closers = append(m.closers, logCloser)

	registry, err := m.openRegistry(cfg.Registry)
	if err != nil {
		return err
	}
	registry = locslog.NewLoggingRegistry(registry, logger)
	if cfg.Gemini.StoreName != "" {
		registry = locrag.NewOverrideRegistry(cfg.Gemini.StoreName, registry)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return locrag.WrapError(locrag.ECONFIG, "connect to Gemini", err)
	}

	var store locrag.DocumentStore = gemini.NewDocumentStore(client,
		gemini.WithQueryModel(cfg.Gemini.Model),
		gemini.WithTopK(cfg.Retrieval.TopK),
		gemini.WithPoller(gemini.Poller{Interval: cfg.Upload.PollInterval, Timeout: cfg.Upload.Timeout}),
	)
	store = locslog.NewLoggingDocumentStore(store, logger)

	opts := []gemini.ComposerOption{
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTemperature(cfg.Answer.Temperature),
	}
	if cfg.Answer.MaxContextTokens > 0 {
		counter, err := gemini.NewTokenCounter(cfg.Gemini.Model)
		if err != nil {
			return locrag.WrapError(locrag.ECONFIG, "token counter", err)
		}
		opts = append(opts, gemini.WithTokenBudget(counter, cfg.Answer.MaxContextTokens))
	}
	composer := locslog.NewLoggingComposer(gemini.NewComposer(client, opts...), logger)

	session := locrag.NewSession(store, composer, registry)
	session.StoreDisplayName = cfg.Gemini.StoreDisplayName
	session.Posts = locslog.NewLoggingPostWriter(gemini.NewPostWriter(client, cfg.Gemini.Model), logger)
	session.Images = gemini.NewImageGenerator(client, cfg.Gemini.ImageModel)

	renderer := rod.NewFetcher(
		rod.WithRenderTimeout(cfg.Fetch.RenderTimeout),
		rod.WithPrivateNetworks(cfg.Fetch.AllowPrivateNetworks),
	)
	m.closers = append(m.closers, renderer)
	fetch := func(next locrag.Fetcher) locrag.Fetcher {
		return locslog.NewLoggingFetcher(ratelimit.NewFetcher(next,
			ratelimit.WithRequestsPerSecond(cfg.Fetch.RequestsPerSecond),
			ratelimit.WithRetries(cfg.Fetch.Retries),
			ratelimit.WithLogger(logger),
		), logger)
	}

	deps.Session = session
	deps.Store = store
	deps.MaxUploadBytes = cfg.Upload.MaxBytes
	deps.Fetcher = fetch(lochttp.NewFetcher(
		lochttp.WithTimeout(cfg.Fetch.Timeout),
		lochttp.WithMaxPageBytes(cfg.Fetch.MaxPageBytes),
		lochttp.WithPrivateNetworks(cfg.Fetch.AllowPrivateNetworks),
	))
	deps.RenderFetcher = fetch(renderer)
	deps.Extractor = locrag.Extractors{
		goquery.NewExtractor(),
		trafilatura.NewExtractor(),
		readability.NewExtractor(),
	}
	deps.Converter = htmltomarkdown.NewConverter()
	return nil
}

func (m *Main) openRegistry(cfg config.RegistryConfig) (locrag.StoreRegistry, error) {
	if cfg.Type != config.RegistrySQLite {
		return fs.NewRegistry(cfg.Location()), nil
	}
	db := sqlite.NewDB(cfg.Location())
	if err := db.Open(); err != nil {
		return nil, locrag.WrapError(locrag.EIO, "open registry", err)
	}
	m.closers = append(m.closers, db)
	return sqlite.NewRegistry(db), nil
}
