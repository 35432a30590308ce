package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/config"
	"github.com/fwojciec/locrag/fs"
	"github.com/fwojciec/locrag/gemini"
	"github.com/fwojciec/locrag/goquery"
	"github.com/fwojciec/locrag/gocache"
	"github.com/fwojciec/locrag/htmltomarkdown"
	lochttp "github.com/fwojciec/locrag/http"
	"github.com/fwojciec/locrag/prometheus"
	"github.com/fwojciec/locrag/ratelimit"
	"github.com/fwojciec/locrag/readability"
	"github.com/fwojciec/locrag/rod"
	locslog "github.com/fwojciec/locrag/slog"
	"github.com/fwojciec/locrag/sqlite"
	"github.com/fwojciec/locrag/trafilatura"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", locrag.ErrorMessage(err))
	}

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// CLI defines the server flags.
type CLI struct {
	Config string `short:"c" type:"path" help:"Path to a locrag.yaml config file"`
	Addr   string `help:"Listen address (overrides server.addr)"`
}

// Main represents the web server program.
type Main struct {
	Getenv func(string) string

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close releases everything opened while building the server.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run loads the configuration and serves until ctx is cancelled.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("locrag-web"),
		kong.Description("Web interface for chatting with your documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}
	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	cfg, err := config.Load(cli.Config, m.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", locrag.ErrorMessage(err))
		return err
	}
	if cli.Addr != "" {
		cfg.Server.Addr = cli.Addr
	}

	defer m.Close()
	srv, logger, err := m.NewServer(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", locrag.ErrorMessage(err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	return nil
}

// NewServer wires the services described by cfg into an HTTP server. Logs
// go to logOut and, when configured, to a rotating file.
func (m *Main) NewServer(ctx context.Context, cfg *config.Config, logOut io.Writer) (*lochttp.Server, *slog.Logger, error) {
	logger, logCloser, err := locslog.NewLogger(locslog.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}, logOut)
	if err != nil {
		return nil, nil, err
	}
	m.closers = append(m.closers, logCloser)

	registry, err := m.openRegistry(cfg.Registry)
	if err != nil {
		return nil, nil, err
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
		return nil, nil, locrag.WrapError(locrag.ECONFIG, "connect to Gemini", err)
	}

	var store locrag.DocumentStore = gemini.NewDocumentStore(client,
		gemini.WithQueryModel(cfg.Gemini.Model),
		gemini.WithTopK(cfg.Retrieval.TopK),
		gemini.WithPoller(gemini.Poller{Interval: cfg.Upload.PollInterval, Timeout: cfg.Upload.Timeout}),
	)
	store = locslog.NewLoggingDocumentStore(prometheus.NewDocumentStore(store), logger)

	opts := []gemini.ComposerOption{
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTemperature(cfg.Answer.Temperature),
	}
	if cfg.Answer.MaxContextTokens > 0 {
		counter, err := gemini.NewTokenCounter(cfg.Gemini.Model)
		if err != nil {
			return nil, nil, locrag.WrapError(locrag.ECONFIG, "token counter", err)
		}
		opts = append(opts, gemini.WithTokenBudget(counter, cfg.Answer.MaxContextTokens))
	}
	var composer locrag.AnswerComposer = gemini.NewComposer(client, opts...)
	composer = locslog.NewLoggingComposer(prometheus.NewComposer(composer), logger)

	posts := locslog.NewLoggingPostWriter(gemini.NewPostWriter(client, cfg.Gemini.Model), logger)
	images := gemini.NewImageGenerator(client, cfg.Gemini.ImageModel)

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

	srv := lochttp.NewServer()
	srv.Addr = cfg.Server.Addr
	srv.ReadTimeout = cfg.Server.ReadTimeout
	srv.WriteTimeout = cfg.Server.WriteTimeout
	srv.CORSOrigins = cfg.Server.CORSOrigins
	srv.MetricsPath = cfg.Server.MetricsPath
	srv.MaxUploadBytes = cfg.Upload.MaxBytes
	srv.Logger = logger
	srv.Sessions = gocache.NewSessionStore(cfg.Server.SessionTTL, func(id string) {
		prometheus.SessionsActive.Dec()
		logger.Debug("session expired", "session", id)
	})
	srv.NewSession = func() *locrag.Session {
		s := locrag.NewSession(store, composer, registry)
		s.StoreDisplayName = cfg.Gemini.StoreDisplayName
		s.Posts = posts
		s.Images = images
		return s
	}
	srv.Fetcher = fetch(lochttp.NewFetcher(
		lochttp.WithTimeout(cfg.Fetch.Timeout),
		lochttp.WithMaxPageBytes(cfg.Fetch.MaxPageBytes),
		lochttp.WithPrivateNetworks(cfg.Fetch.AllowPrivateNetworks),
	))
	srv.RenderFetcher = fetch(renderer)
	srv.Extractor = locrag.Extractors{
		goquery.NewExtractor(),
		trafilatura.NewExtractor(),
		readability.NewExtractor(),
	}
	srv.Converter = htmltomarkdown.NewConverter()
	return srv, logger, nil
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
