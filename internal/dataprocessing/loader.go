package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Strategy names one way of interpreting an export file.
type Strategy string

const (
	StrategyCommaHeader      Strategy = "comma_header"
	StrategyTabHeader        Strategy = "tab_header"
	StrategyWhitespaceHeader Strategy = "whitespace_header"
	StrategyCommaNoHeader    Strategy = "comma_no_header"
	StrategyWorkbook         Strategy = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type parseFunc func(data []byte) (*RawTable, error)

type strategyStep struct {
	name  Strategy
	parse parseFunc
}

// defaultChain is tried in order; the first strategy that parses wins.
var defaultChain = []strategyStep{
	{StrategyCommaHeader, func(b []byte) (*RawTable, error) { return parseDelimited(b, ',', true) }},
	{StrategyTabHeader, func(b []byte) (*RawTable, error) { return parseDelimited(b, '\t', true) }},
	{StrategyWhitespaceHeader, func(b []byte) (*RawTable, error) { return parseWhitespace(b) }},
	{StrategyCommaNoHeader, func(b []byte) (*RawTable, error) { return parseDelimited(b, ',', false) }},
}

// LoadObserver receives the outcome of every load. Implementations must be safe
// for concurrent use.
type LoadObserver interface {
	ObserveLoad(ctx context.Context, strategy Strategy, rows int, duration time.Duration, err error)
}

// Loader reads inventory exports whose delimiter and header layout are unknown.
type Loader struct {
	logger   *slog.Logger
	observer LoadObserver
	chain    []strategyStep
}

// NewLoader creates a loader that logs through the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "inventory_loader")),
		chain:  defaultChain,
	}
}

// WithObserver attaches a load observer (metrics) and returns the loader.
func (l *Loader) WithObserver(o LoadObserver) *Loader {
	l.observer = o
	return l
}

// Load reads the file at path and returns the first successful interpretation.
// Workbooks (.xlsx, .xlsm) are read from their first sheet; everything else goes
// through the delimited strategy chain.
func (l *Loader) Load(ctx context.Context, path string) (table *RawTable, err error) {
	ctx, span := otel.Tracer("invdash/dataprocessing").Start(ctx, "inventory.load")
	defer span.End()
	span.SetAttributes(attribute.String("inventory.path", path))

	start := time.Now()
	defer func() {
		var strategy Strategy
		rows := 0
		if table != nil {
			strategy = table.Strategy
			rows = len(table.Rows)
			span.SetAttributes(attribute.String("inventory.strategy", string(strategy)))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
		}
		if l.observer != nil {
			l.observer.ObserveLoad(ctx, strategy, rows, time.Since(start), err)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		loadErr := &LoadError{Path: path, Cause: err}
		l.logger.ErrorContext(ctx, "inventory file loading failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, loadErr
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	chain := l.chain
	if isWorkbook(path) {
		chain = []strategyStep{{StrategyWorkbook, parseWorkbook}}
	}

	var attempts []StrategyAttempt
	for _, step := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, perr := step.parse(data)
		if perr != nil {
			attempts = append(attempts, StrategyAttempt{Strategy: step.name, Err: perr})
			l.logger.DebugContext(ctx, "load strategy rejected input",
				slog.String("path", path),
				slog.String("strategy", string(step.name)),
				slog.String("error", perr.Error()))
			continue
		}

		t.Source = path
		t.Strategy = step.name
		l.logger.InfoContext(ctx, "inventory file loaded",
			slog.String("path", path),
			slog.String("strategy", string(step.name)),
			slog.Int("rows", len(t.Rows)),
			slog.Int("columns", len(t.Columns)))
		return t, nil
	}

	loadErr := &LoadError{Path: path, Attempts: attempts, Cause: attempts[len(attempts)-1].Err}
	l.logger.ErrorContext(ctx, "inventory file loading failed",
		slog.String("path", path),
		slog.Int("attempts", len(attempts)),
		slog.String("error", loadErr.Cause.Error()))
	return nil, loadErr
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

var errNoData = errors.New("no data rows")

func parseDelimited(data []byte, comma rune, header bool) (*RawTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	// Inch marks such as 12" PIPE appear unquoted in exports.
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return buildTable(records, header)
}

func parseWhitespace(data []byte) (*RawTable, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var records [][]string
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		records = append(records, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return buildTable(records, true)
}

func parseWorkbook(data []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	records := rows[:0]
	for _, row := range rows {
		if len(row) > 0 {
			records = append(records, row)
		}
	}
	return buildTable(records, true)
}

// buildTable turns records into a rectangular table. A row wider than the header
// (or, without a header, the first row) is a structural error.
func buildTable(records [][]string, header bool) (*RawTable, error) {
	if len(records) == 0 {
		return nil, errNoData
	}

	var columns []string
	body := records
	if header {
		columns = make([]string, len(records[0]))
		for i, c := range records[0] {
			columns[i] = strings.TrimSpace(c)
		}
		if err := checkHeader(columns); err != nil {
			return nil, err
		}
		body = records[1:]
	} else {
		columns = make([]string, len(records[0]))
		for i := range columns {
			columns[i] = strconv.Itoa(i)
		}
	}

	width := len(columns)
	rows := make([][]string, 0, len(body))
	for i, rec := range body {
		if len(rec) > width {
			line := i + 1
			if header {
				line++
			}
			return nil, fmt.Errorf("record %d: expected %d fields, saw %d", line, width, len(rec))
		}
		row := make([]string, width)
		copy(row, rec)
		rows = append(rows, row)
	}

	return &RawTable{Columns: columns, Rows: rows}, nil
}

// checkHeader rejects a first row that cannot be a header: one that did not
// split, or that has repeated or numeric names. Blank names are kept as
// "Unnamed: i" unless the whole row is blank.
func checkHeader(columns []string) error {
	if len(columns) < 2 {
		return fmt.Errorf("header has %d column(s), delimiter did not split it", len(columns))
	}
	seen := make(map[string]bool, len(columns))
	blank := 0
	for i, c := range columns {
		if c == "" {
			blank++
			columns[i] = fmt.Sprintf("Unnamed: %d", i)
			continue
		}
		if seen[c] {
			return fmt.Errorf("header column %q is repeated", c)
		}
		if _, err := strconv.ParseFloat(c, 64); err == nil {
			return fmt.Errorf("header column %d (%q) is numeric, first row looks like data", i, c)
		}
		seen[c] = true
	}
	if blank == len(columns) {
		return errors.New("header row is blank")
	}
	return nil
}
