// Package cmd owns the implementation details of the CLI command.
package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fredbi/launchdash/internal/pkg/chart"
	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/dataset"
	"github.com/fredbi/launchdash/internal/pkg/handler"
	"github.com/fredbi/launchdash/internal/pkg/image"
	"github.com/fredbi/launchdash/internal/pkg/layout"
	"github.com/fredbi/launchdash/internal/pkg/model"
	"github.com/fredbi/launchdash/internal/pkg/reactive"
	"github.com/fredbi/launchdash/internal/pkg/server"
)

// Command holds command line flags and executes the launchdash command.
//
// It knows how to load a configuration file in a [config.Config] and manage CLI flag configuration overrides.
//
// By default, the command serves the interactive dashboard until interrupted. With -report, it only
// reports about the content of the dataset. With -export, it writes a static snapshot of the dashboard
// in its default state, possibly as a PNG image.
type Command struct {
	Config     string
	Data       string
	Addr       string
	OutputFile string
	Report     bool
	Png        bool
	L          *slog.Logger

	out io.Writer
}

// NewCommand builds a CLI command with registered flags and an injected logger.
func NewCommand() *Command {
	// inject a structured logger
	cli := &Command{
		L:   slog.Default().With(slog.String("module", "main")),
		out: os.Stdout,
	}

	cli.registerFlags()

	return cli
}

// Parse command line flags and arguments.
func (*Command) Parse() error {
	return flag.CommandLine.Parse(os.Args[1:])
}

// Fatalf logs an error message then exits. The output is spewed on both stderr and the structured logger output.
func (c *Command) Fatalf(err error) {
	c.L.Error(err.Error())
	log.Fatalf("%v", err)
}

// Execute the CLI with flags and extra arguments, until the process receives SIGINT or SIGTERM.
//
// If no argument is passed, command line arguments (i.e. [os.Args]) are used.
// An extra argument designates the dataset file.
func (c *Command) Execute(args ...string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.ExecuteContext(ctx, args...)
}

// ExecuteContext runs the CLI until the context is canceled.
func (c *Command) ExecuteContext(ctx context.Context, args ...string) error {
	if args == nil { // passing explicit args allows for testing Execute without altering [os.Args]
		args = c.args()
	}

	cfg, cleanup, err := c.prepareConfig(args)
	if err != nil {
		return err
	}
	defer cleanup()

	// 1. load the launch records: the dashboard cannot start without them
	t0 := time.Now()
	ds, err := dataset.Load(cfg.Dataset.File, dataset.WithColumns(cfg.Dataset.Columns))
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	c.L.Info("loaded launch records",
		slog.String("file", cfg.Dataset.File),
		slog.Int("records", ds.Len()),
		slog.Duration("duration", time.Since(t0)),
	)

	if c.Report {
		// just want to report about the content of the dataset
		return c.report(ds)
	}

	if cfg.Outputs.HTMLFile != "" {
		// 2. static export of the dashboard in its default state
		return c.export(ctx, cfg, ds)
	}

	// 2. interactive dashboard
	return c.serve(ctx, cfg, ds)
}

func (*Command) args() []string {
	return flag.CommandLine.Args()
}

func (c *Command) registerFlags() {
	defaults := Command{
		Config:     "",
		Data:       "",
		Addr:       "",
		OutputFile: "",
		Png:        false,
		Report:     false,
	}

	flag.StringVar(&c.Config, "config", defaults.Config, "config file")
	flag.StringVar(&c.Config, "c", defaults.Config, "config file (shorthand)")
	flag.StringVar(&c.Data, "data", defaults.Data, "launch records CSV file (default spacex_launch_dash.csv)")
	flag.StringVar(&c.Data, "d", defaults.Data, "launch records CSV file (shorthand)")
	flag.StringVar(&c.Addr, "addr", defaults.Addr, "listen address of the dashboard (default :8050)")
	flag.StringVar(&c.Addr, "a", defaults.Addr, "listen address of the dashboard (shorthand)")
	flag.StringVar(&c.OutputFile, "export", defaults.OutputFile, "export a static HTML dashboard to a file, or - for standard output")
	flag.StringVar(&c.OutputFile, "o", defaults.OutputFile, "export a static HTML dashboard (shorthand)")
	flag.BoolVar(&c.Report, "r", defaults.Report, "report dataset contents only, no dashboard (shorthand)")
	flag.BoolVar(&c.Report, "report", defaults.Report, "report dataset contents only")
	flag.BoolVar(&c.Png, "png", defaults.Png, "enable PNG screenshot of the exported dashboard")
}

func (c *Command) prepareConfig(args []string) (cfg *config.Config, cleanup func(), err error) {
	if c.Config == "" {
		cfg, err = config.LoadDefaults()
	} else {
		cfg, err = config.Load(c.Config)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if err = c.setConfig(cfg, args); err != nil {
		return nil, nil, fmt.Errorf("preparing config: %w", err)
	}

	if cfg.Outputs.IsTemp && !c.Report {
		cleanup = func() {
			_ = os.Remove(cfg.Outputs.HTMLFile)
		}

		return cfg, cleanup, nil
	}

	return cfg, func() {}, nil
}

// apply CLI flags overrides to YAML config.
func (c *Command) setConfig(cfg *config.Config, args []string) error {
	switch {
	case len(args) > 0:
		cfg.Dataset.File = args[0]
	case c.Data != "":
		cfg.Dataset.File = c.Data
	case c.Config != "" && !filepath.IsAbs(cfg.Dataset.File):
		// the dataset declared by a config file is relative to this file
		cfg.Dataset.File = filepath.Join(filepath.Dir(c.Config), cfg.Dataset.File)
	}

	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	if c.OutputFile != "" && c.OutputFile != "-" {
		// an outfile is defined: infer the PNG file from the HTML file provided
		cfg.Outputs.HTMLFile = inferHTMLFile(c.OutputFile)
		if cfg.Outputs.PngFile == "" && c.Png {
			cfg.Outputs.PngFile = inferImageFile(cfg.Outputs.HTMLFile)
		}
	}

	if c.Report {
		return nil
	}

	switch {
	case c.OutputFile == "-":
		c.L.Info("dashboard exported to standard output as HTML, no PNG image rendered")
		cfg.Outputs.HTMLFile = "-"
	case c.Png && cfg.Outputs.HTMLFile == "":
		c.L.Info("HTML generated as a temporary file to produce PNG")
		tmp, err := os.CreateTemp("", "launchdash.*.html")
		if err != nil {
			return err
		}
		cfg.Outputs.HTMLFile = tmp.Name()
		cfg.Outputs.PngFile = "launchdash.png"
		cfg.Outputs.IsTemp = true
		_ = tmp.Close()
	}

	return nil
}

// report produces a report that explores the launch records.
func (c *Command) report(ds *dataset.Dataset) error {
	enc := json.NewEncoder(c.stdout())
	enc.SetIndent("", " ")

	return enc.Encode(ds.Report())
}

// serve the interactive dashboard until the context is canceled.
func (c *Command) serve(parent context.Context, cfg *config.Config, ds *dataset.Dataset) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	l := layout.Build(cfg, ds)
	rt := reactive.New(reactive.WithQueueSize(cfg.Server.QueueSize))
	if err := handler.New(cfg, ds).Bind(rt, l); err != nil {
		return fmt.Errorf("binding dashboard: %w", err)
	}

	loop := make(chan error, 1)
	go func() {
		loop <- rt.Run(ctx)
	}()

	err := server.New(cfg, l, rt).ListenAndServe(ctx)
	cancel()

	if loopErr := <-loop; loopErr != nil && err == nil {
		err = loopErr
	}

	return err
}

// export renders the dashboard in its default state as a static HTML page, and possibly a PNG image.
func (c *Command) export(ctx context.Context, cfg *config.Config, ds *dataset.Dataset) error {
	page := buildPage(cfg, ds)

	// 1. render the page as HTML, possibly to stdout, possibly to temp file
	htmlWriter, htmlCloser, err := c.getWriter(cfg.Outputs.HTMLFile, "HTML")
	if err != nil {
		return err
	}

	if err := page.Render(htmlWriter); err != nil {
		htmlCloser()

		return fmt.Errorf("rendering page: %w", err)
	}

	htmlCloser()

	if cfg.Outputs.PngFile == "" || cfg.Outputs.HTMLFile == "-" {
		// html only: we're done
		return nil
	}

	// 2. convert the HTML page to a PNG image
	htmlReader, htmlCloser, err := getReader(cfg.Outputs.HTMLFile, "HTML")
	if err != nil {
		return err
	}
	defer htmlCloser()

	pngWriter, pngCloser, err := c.getWriter(cfg.Outputs.PngFile, "PNG")
	if err != nil {
		return err
	}
	defer pngCloser()

	screenshot := cfg.Render.Screenshot
	r := image.New(
		image.WithViewport(screenshot.Width, screenshot.Height),
		image.WithSettle(screenshot.SleepDuration()),
		image.WithWaitVisible("canvas"),
	)

	if err = r.Render(ctx, pngWriter, htmlReader); err != nil {
		return fmt.Errorf("rendering image: %w", err)
	}

	c.L.Info("dashboard snapshot written", slog.String("file", cfg.Outputs.PngFile))

	return nil
}

func (c *Command) stdout() io.Writer {
	if c.out == nil {
		return os.Stdout
	}

	return c.out
}

func getReader(file, kind string) (rdr *os.File, cleanup func(), err error) {
	rdr, err = os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = rdr.Close()
	}

	return rdr, cleanup, nil
}

func (c *Command) getWriter(file, kind string) (wrt io.Writer, cleanup func(), err error) {
	if file == "-" {
		return c.stdout(), func() {}, nil
	}

	f, err := os.Create(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file for writing: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = f.Close()
	}

	return f, cleanup, nil
}

// buildPage stacks the charts of the dashboard in its default state: all sites, full payload range.
func buildPage(cfg *config.Config, ds *dataset.Dataset) *chart.Page {
	h := handler.New(cfg, ds)

	page := chart.NewPage(cfg.Render.Title)
	page.Indent = true
	page.AddChart(h.PieChart(model.AllSites, chart.WithID(layout.ChartElementID(layout.PieChartID))))
	page.AddChart(h.ScatterChart(model.AllSites, ds.PayloadBounds(), chart.WithID(layout.ChartElementID(layout.ScatterChartID))))

	return page
}

func inferHTMLFile(base string) string {
	ext := path.Ext(base)
	file, _ := strings.CutSuffix(base, ext)

	return file + ".html"
}

func inferImageFile(base string) string {
	ext := path.Ext(base)
	file, _ := strings.CutSuffix(base, ext)

	return file + ".png"
}
