// studydash - admin analytics dashboard for the study backend.
//
// Serves the dashboard pages, renders static reports and prints terminal
// snapshots of the backend statistics.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/spf13/pflag"

	"github.com/drew/studydash/internal/config"
	"github.com/drew/studydash/internal/dashboard"
	"github.com/drew/studydash/internal/logging"
	"github.com/drew/studydash/internal/model"
	"github.com/drew/studydash/internal/snapshot"
	"github.com/drew/studydash/internal/stats"
	"github.com/drew/studydash/internal/table"
	"github.com/drew/studydash/internal/ui"
)

// errSilent is returned when the command already reported the failure
var errSilent = errors.New("")

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "snapshot":
		err = runSnapshot(args, os.Stdout)
	case "render":
		err = runRender(args, os.Stdout)
	case "validate":
		err = runValidate(args)
	case "table":
		err = runTable(args, os.Stdout)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown command %q\n\n", cmd)
		usage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: studydash <command> [flags]

Commands:
  serve       Run the dashboard server (reloads the config on change)
  snapshot    Fetch every statistic once and print a summary
  render      Write a static HTML report with every chart
  validate    Validate config files
  table       Print one page of a configured data table

Run 'studydash <command> --help' for the flags of a command.`)
}

// commonFlags are shared by every command that talks to the backend
type commonFlags struct {
	config  string
	verbose bool
	noColor bool
	ui      string
}

func newFlagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&common.config, "config", "c", "", "Path to config file (default: "+config.DefaultPath+")")
	fs.BoolVarP(&common.verbose, "verbose", "v", false, "Verbose logging")
	fs.BoolVar(&common.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&common.ui, "ui", "basic", "UI mode: basic, full")
	return fs
}

// load reads and validates the config, applying the verbose flag
func (c *commonFlags) load() (config.Config, error) {
	cfg, err := config.Reload(c.config)
	if err != nil {
		return config.Config{}, err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func (c *commonFlags) renderer(w io.Writer) *ui.Renderer {
	mode := ui.UIModeBasic
	if c.ui == "full" {
		mode = ui.UIModeFull
	}
	return ui.NewRenderer(w, mode, !c.noColor && ui.ColorEnabled(w))
}

func newStatsClient(cfg config.Config, verbose bool) *stats.Client {
	logger := logging.Discard()
	if verbose {
		logger = logging.New(cfg.Logging)
	}
	return stats.NewClient(cfg.Server.Backend, &http.Client{Timeout: cfg.RequestTimeout()}, logger)
}

func runServe(args []string) error {
	var common commonFlags
	fs := newFlagSet("serve", &common)
	listen := fs.StringP("listen", "l", "", "Listen address (overrides config)")
	noWatch := fs.Bool("no-watch", false, "Do not reload the config file when it changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	logger := logging.New(cfg.Logging)
	srv, err := dashboard.NewServer(cfg, dashboard.Options{Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := common.config
	if path == "" {
		path = config.DefaultPath
	}
	if _, statErr := os.Stat(path); statErr == nil && !*noWatch {
		go func() {
			err := config.Watch(ctx, path, logger, func(next config.Config) {
				if *listen != "" {
					next.Server.Listen = *listen
				}
				if common.verbose {
					next.Logging.Level = "debug"
				}
				srv.SetConfig(next)
			})
			if err != nil {
				logger.Warn("config hot reload disabled", "err", err)
			}
		}()
	}

	return srv.Run(ctx)
}

func runSnapshot(args []string, stdout io.Writer) error {
	var common commonFlags
	fs := newFlagSet("snapshot", &common)
	format := fs.StringP("format", "f", "text", "Output format: text, json, yaml")
	groupFlag := fs.StringP("group", "g", "all", "Study group for the user statistics")
	out := fs.StringP("out", "o", "", "Write the output to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	group, err := model.ParseGroup(*groupFlag)
	if err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}

	client := newStatsClient(cfg, common.verbose)
	snap := snapshot.Take(context.Background(), client, client.BaseURL(), group, time.Now())

	// Files get plain text; the terminal gets colours when it supports them.
	var buf bytes.Buffer
	w := stdout
	if *out != "" {
		w = &buf
	}

	switch *format {
	case "text":
		snap.Print(common.renderer(w))
	default:
		if err := snap.Encode(w, *format); err != nil {
			return err
		}
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(stripansi.Strip(buf.String())), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *out, err)
		}
		fmt.Fprintf(stdout, "Snapshot written to %s\n", *out)
	}

	if _, _, failed := snap.Counts(); failed > 0 {
		return fmt.Errorf("%d of %d statistics could not be fetched", failed, len(snap.Outcomes))
	}
	return nil
}

func runRender(args []string, stdout io.Writer) error {
	var common commonFlags
	fs := newFlagSet("render", &common)
	out := fs.StringP("out", "o", "report.html", "Path of the generated report")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if common.verbose {
		logger = logging.New(cfg.Logging)
	}
	client := newStatsClient(cfg, common.verbose)
	result, err := dashboard.GenerateReport(context.Background(), cfg, client, *out, time.Now(), logger)
	if err != nil {
		return err
	}

	colors := common.renderer(stdout).Colors()
	fmt.Fprintf(stdout, "%s Report written to %s (%d charts)\n", colors.OutcomeSymbol(ui.OutcomeOK), result.Path, result.Rendered)
	if len(result.Failed) > 0 {
		fmt.Fprintf(stdout, "%s Charts without data: %s\n", colors.OutcomeSymbol(ui.OutcomeEmpty), strings.Join(result.Failed, ", "))
	}
	return nil
}

func runValidate(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{config.DefaultPath}
	}

	allValid := true
	for _, file := range files {
		result, err := config.ValidateConfigFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			allValid = false
			continue
		}
		config.PrintValidationResult(file, result)
		if !result.Valid {
			allValid = false
		}
	}

	if !allValid {
		return errSilent
	}
	return nil
}

func runTable(args []string, stdout io.Writer) error {
	var common commonFlags
	fs := newFlagSet("table", &common)
	name := fs.StringP("name", "n", "users", "Configured table to print")
	search := fs.StringP("search", "s", "", "Global search term")
	filters := fs.StringArray("filter", nil, "Column filter as HEADER=VALUE (repeatable)")
	page := fs.IntP("page", "p", 1, "Page to print")
	per := fs.Int("per", 0, "Rows per page (default: table.defaultPageSize)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	src, ok := cfg.Tables[*name]
	if !ok {
		return fmt.Errorf("unknown table %q (configured: %s)", *name, strings.Join(cfg.TableNames(), ", "))
	}

	client := newStatsClient(cfg, common.verbose)
	raw, err := client.TableSource(context.Background(), src.Source)
	if err != nil {
		return fmt.Errorf("could not load %s: %w", src.Title, err)
	}
	data, err := table.Load(src.Format, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("could not load %s: %w", src.Title, err)
	}
	st := table.New(data.Headers, data.Rows, table.Options{
		PageSize: cfg.Table.DefaultPageSize,
		Keywords: cfg.Table.FilterKeywords,
	})

	if err := applyTableFlags(st, *search, *filters, *per, *page); err != nil {
		return err
	}

	view := st.DisplayRows()
	r := common.renderer(stdout)
	r.Section(src.Title)
	r.Table(view.Headers, view.Rows)
	r.EndSection()
	for _, chip := range view.Chips {
		r.Line("%s %s", r.Colors().Gray("filter"), chip.Text())
	}
	r.Line("%s", view.Summary)
	r.Line("Page %d of %d", view.Pagination.Page, view.Pagination.TotalPages)
	return nil
}

// applyTableFlags drives the table state the way the page controls would
func applyTableFlags(st *table.State, search string, filters []string, per, page int) error {
	for _, f := range filters {
		header, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q, expected HEADER=VALUE", f)
		}
		col, err := columnIndex(st.Headers(), header)
		if err != nil {
			return err
		}
		if err := st.SetFilter(col, value); err != nil {
			return err
		}
	}
	if search != "" {
		st.SetSearch(search)
	}
	if per != 0 {
		if err := st.SetPageSize(per); err != nil {
			return err
		}
	}
	if page != 1 {
		if err := st.GotoPage(strconv.Itoa(page)); err != nil {
			return err
		}
	}
	return nil
}

// columnIndex resolves a header name, case-insensitively, or a column number
func columnIndex(headers []string, name string) (int, error) {
	name = strings.TrimSpace(name)
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(headers) {
		return i, nil
	}
	return 0, fmt.Errorf("unknown column %q (columns: %s)", name, strings.Join(headers, ", "))
}
