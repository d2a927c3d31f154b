package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"

	"invdash/internal/config"
	"invdash/internal/dataprocessing"
	"invdash/internal/exporter"
	"invdash/internal/infrastructure"
	"invdash/internal/services"
	"invdash/internal/validation"
	api "invdash/pkg/contracts/api/v1"
	"invdash/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	query       api.InventoryQuery
	file        string
	export      string
	out         string
	unstockRule string
	positional  bool
	logLevel    string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("invreport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.file, "file", config.DefaultInventoryFile, "inventory export to read")
	fs.StringVar(&opts.query.Stock, "stock", api.StockStocked, "all | stocked | unstocked")
	fs.StringVar(&opts.query.Brand, "brand", dataprocessing.AllLabel, "brand to show, or All")
	fs.StringVar(&opts.query.Type, "type", dataprocessing.AllLabel, "type to show, or All")
	fs.StringVar(&opts.query.View, "view", api.ViewAll, "all | slow | reorder")
	fs.IntVar(&opts.query.Limit, "limit", 50, "rows to print; 0 prints every row")
	fs.StringVar(&opts.export, "export", "", "write csv or xlsx instead of printing the table")
	fs.StringVar(&opts.out, "out", "", "export destination (defaults to a timestamped file under exports/)")
	fs.StringVar(&opts.unstockRule, "unstock-rule", string(dataprocessing.UnstockOnHandAndSales), "on_hand_and_sales | sales_only")
	fs.BoolVar(&opts.positional, "positional", true, "rename columns of a headerless export to the expected layout")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "debug | info | warn | error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if err := validator.New().Struct(opts.query); err != nil {
		return nil, err
	}
	switch dataprocessing.UnstockRule(opts.unstockRule) {
	case dataprocessing.UnstockOnHandAndSales, dataprocessing.UnstockSalesOnly:
	default:
		return nil, fmt.Errorf("invalid -unstock-rule %q", opts.unstockRule)
	}
	if opts.export != "" {
		if _, err := exporter.ParseFormat(opts.export); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "invreport: %v\n", err)
		return exitUsage
	}

	logger := infrastructure.NewLoggerWithWriter(stderr, opts.logLevel)

	cfg := config.Default().Inventory
	cfg.FilePath = opts.file
	cfg.UnstockRule = opts.unstockRule
	cfg.PositionalColumns = opts.positional
	// One load serves every query of this run.
	cfg.ReloadPolicy = config.ReloadCached
	cfg.CacheTTL = 0

	svc := services.NewInventoryServiceWithLogger(cfg, nil, logger)
	filter := dataprocessing.Filter{
		Stock: dataprocessing.StockFilter(opts.query.Stock),
		Brand: opts.query.Brand,
		Type:  opts.query.Type,
		View:  dataprocessing.View(opts.query.View),
	}

	if opts.export != "" {
		err = exportReport(ctx, svc, filter, opts, logger, stdout)
	} else {
		err = printReport(ctx, svc, filter, opts.query.Limit, stdout)
	}
	if err != nil {
		fmt.Fprintln(stderr, describeFailure(opts.file, err))
		return exitFailure
	}
	return exitOK
}

func printReport(ctx context.Context, svc *services.InventoryService, f dataprocessing.Filter, limit int, stdout io.Writer) error {
	summary, err := svc.Summary(ctx, f)
	if err != nil {
		return err
	}
	result, err := svc.Items(ctx, f, limit)
	if err != nil {
		return err
	}

	ds := result.Dataset
	fmt.Fprintf(stdout, "Source:    %s (%s, %d rows)\n", ds.Source, ds.Strategy, ds.Len())
	fmt.Fprintf(stdout, "Selection: stock=%s brand=%s type=%s view=%s\n", f.Stock, labelOrAll(f.Brand), labelOrAll(f.Type), viewOrAll(f.View))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "=== SUMMARY ===")
	fmt.Fprintf(stdout, "Total items:      %d\n", summary.TotalItems)
	fmt.Fprintf(stdout, "Slow items:       %d\n", summary.SlowItems)
	fmt.Fprintf(stdout, "Next order items: %d\n", summary.ReorderItems)
	fmt.Fprintf(stdout, "Unstocked items:  %d\n", summary.UnstockedItems)
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "=== ITEMS (%d of %d) ===\n", len(result.Items), result.Total)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tBRAND\tTYPE\tQTY_ON_HND\tWEEK_SUM\tAVG_WEEK\tPRICE\tSLOW\tNXT_ORDER\tUNSTOCK")
	for _, it := range result.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%d\t%d\t%d\n",
			it.Row, orDash(it.Brand), orDash(it.Type), it.QtyOnHand, it.WeekSum, it.AvgWeek,
			price(it), it.SlowItems, it.NextOrder, it.UnstockItems)
	}
	return tw.Flush()
}

func exportReport(ctx context.Context, svc *services.InventoryService, f dataprocessing.Filter, opts *options, logger *slog.Logger, stdout io.Writer) error {
	format, err := exporter.ParseFormat(opts.export)
	if err != nil {
		return err
	}

	dest := opts.out
	if dest == "" {
		dest = filepath.Join(config.DefaultExportDir, exporter.Filename("inventory", format, time.Now()))
	}
	if err := validation.NewSourceValidator(logger).ValidateExportDir(filepath.Dir(dest)); err != nil {
		return err
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if err := svc.Export(ctx, format, f, file); err != nil {
		file.Close()
		os.Remove(dest)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	fmt.Fprintf(stdout, "Exported %s to %s\n", strings.ToUpper(string(format)), dest)
	return nil
}

// describeFailure turns load and schema failures into a message for the
// person running the report.
func describeFailure(path string, err error) string {
	var schemaErr *dataprocessing.SchemaError
	if errors.As(err, &schemaErr) {
		return fmt.Sprintf("Inventory file %s is missing required columns: %s",
			path, strings.Join(schemaErr.Missing, ", "))
	}

	var loadErr *dataprocessing.LoadError
	if errors.As(err, &loadErr) {
		if len(loadErr.Attempts) == 0 {
			return fmt.Sprintf("Inventory file %s could not be opened: %v", path, loadErr.Cause)
		}
		return fmt.Sprintf("Inventory file %s could not be parsed as comma, tab or whitespace separated data: %v",
			path, loadErr.Cause)
	}

	if errors.Is(err, domain.ErrLoadFailure) {
		return fmt.Sprintf("Inventory file %s could not be loaded: %v", path, err)
	}
	return fmt.Sprintf("invreport: %v", err)
}

func price(it domain.InventoryItem) string {
	if !it.Price.Valid {
		return "-"
	}
	return it.Price.Decimal.StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func labelOrAll(s string) string {
	if s == "" {
		return dataprocessing.AllLabel
	}
	return s
}

func viewOrAll(v dataprocessing.View) dataprocessing.View {
	if v == "" {
		return dataprocessing.ViewAll
	}
	return v
}
