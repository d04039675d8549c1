package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/mapfish/printplan/internal/config"
	"github.com/mapfish/printplan/internal/ctxlog"
	"github.com/mapfish/printplan/internal/demo"
	"github.com/mapfish/printplan/internal/fetch"
	"github.com/mapfish/printplan/internal/planner"
	"github.com/mapfish/printplan/internal/processor"
	"github.com/zclconf/go-cty/cty"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: build the demo processor graph, fill its attributes, and
// optionally exercise the fetcher against one URI.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp constructs a fully initialized App, including its own isolated
// logger. Unlike the graph/fetch work Run performs, construction cannot
// fail; cfg is expected to have been validated by NewConfig.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("logger configured successfully")

	return &App{outW: outW, logger: logger, config: cfg}
}

// Run builds the demo dependency graph, fills its attributes, prints a
// summary of the resulting plan, and, if a FetchURI was configured,
// dispatches one fetch request through the config-resolving fetcher and
// prints its response.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	graph, live, err := a.buildGraph(ctx)
	if err != nil {
		return fmt.Errorf("app: building graph: %w", err)
	}
	a.printGraph(graph, live)

	if err := a.walkGraph(ctx, graph); err != nil {
		return fmt.Errorf("app: walking graph: %w", err)
	}

	if a.config.FetchURI == "" {
		return nil
	}
	return a.runFetch(ctx)
}

func (a *App) buildGraph(ctx context.Context) (*planner.Graph, map[string]any, error) {
	processors := []processor.Processor{
		&demo.Greeting{Text: "hello from printplan"},
		&demo.Shout{},
		&demo.WordCount{},
		&demo.Summary{},
		&demo.OutputFormatReader{},
	}
	attrs := map[string]cty.Type{
		"outputFormat": cty.String,
	}

	graph, err := planner.Build(ctx, processors, attrs)
	if err != nil {
		return nil, nil, err
	}

	initial := map[string]any{"outputFormat": a.config.OutputFormat}
	live, err := planner.FillAttributes(ctx, graph, initial)
	if err != nil {
		return nil, nil, err
	}
	return graph, live, nil
}

func (a *App) printGraph(graph *planner.Graph, live map[string]any) {
	fmt.Fprintf(a.outW, "built graph: %d node(s), %d root(s)\n", len(graph.Nodes), len(graph.Roots))
	for _, n := range graph.Roots {
		fmt.Fprintf(a.outW, "  root: %s\n", n.ID)
	}
	for k, v := range live {
		fmt.Fprintf(a.outW, "  attribute %s = %v\n", k, v)
	}
}

// walkGraph runs the built plan through the dependency-order walker. The
// demo processors carry their own Run methods with per-processor
// signatures; actually shuttling values between them is the execution
// layer's concern, so the walk here just logs each node as it would fire.
func (a *App) walkGraph(ctx context.Context, graph *planner.Graph) error {
	var visited atomic.Int64
	err := planner.Walk(ctx, graph, func(_ context.Context, n *planner.Node) error {
		a.logger.Debug("node ready", "node", n.ID)
		visited.Add(1)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "walked %d node(s) in dependency order\n", visited.Load())
	return nil
}

func (a *App) runFetch(ctx context.Context) error {
	var cfg config.Configuration
	if a.config.ResourcesManifest != "" {
		loaded, err := config.LoadManifest(a.config.ResourcesManifest)
		if err != nil {
			return fmt.Errorf("app: loading resource manifest: %w", err)
		}
		cfg = loaded
	}

	factory := fetch.NewFactory(ctx, cfg)
	resp, err := factory.Do(ctx, factory.NewRequest(a.config.FetchURI, ""))
	if err != nil {
		return fmt.Errorf("app: fetching %q: %w", a.config.FetchURI, err)
	}
	defer resp.Close()

	fmt.Fprintf(a.outW, "fetched %s: %d %s\n", a.config.FetchURI, resp.StatusCode, resp.Reason)
	return nil
}
