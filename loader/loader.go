// Package loader reads report definitions and fact tables from disk.
//
// Definitions are HJSON documents; since HJSON is a superset of JSON, plain
// JSON definitions load through the same path. Fact rows come from CSV with a
// header row naming the fact attributes.
//
// Example usage:
//
//	ldr := loader.New(loader.WithValidation())
//	def, err := ldr.LoadDefinition("income-statement.hjson")
//	facts, err := ldr.LoadFacts("facts.csv")
package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/finstmt/finstmt/facttable"
	"github.com/finstmt/finstmt/report"
)

// Loader reads report definitions and fact tables.
type Loader struct {
	// Validate runs structural validation on every loaded definition.
	Validate bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithValidation configures the loader to validate every definition it loads,
// so structural problems surface at load time instead of at render time.
func WithValidation() Option {
	return func(l *Loader) {
		l.Validate = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadDefinition reads a report definition from an HJSON or JSON file.
func (l *Loader) LoadDefinition(filename string) (*report.Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return l.LoadDefinitionBytes(filename, data)
}

// LoadDefinitionBytes decodes a report definition from bytes. The filename is
// used in error messages only.
func (l *Loader) LoadDefinitionBytes(filename string, data []byte) (*report.Definition, error) {
	// Decode via an intermediate value so HJSON relaxations (comments,
	// unquoted keys, trailing commas) and plain JSON both land in the same
	// json-tagged struct.
	var raw any
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	var def report.Definition
	if err := json.Unmarshal(normalized, &def); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	if l.Validate {
		if err := report.Validate(&def); err != nil {
			return nil, err
		}
	}

	return &def, nil
}

// LoadFacts reads fact rows from a CSV file.
func (l *Loader) LoadFacts(filename string) (*facttable.Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	table, err := ReadFacts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return table, nil
}

// ReadFacts decodes CSV fact rows. The first record is a header naming the
// columns; year, period, and amount are required, every unrecognized column
// lands in the row's extra attributes.
func ReadFacts(r io.Reader) (*facttable.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(strings.ToLower(name))
	}
	for _, required := range []string{"year", "period", "amount"} {
		if !slices.Contains(columns, required) {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var rows []facttable.Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := decodeRow(columns, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return facttable.New(rows), nil
}

func decodeRow(columns, record []string) (facttable.Row, error) {
	var row facttable.Row

	for i, value := range record {
		if i >= len(columns) {
			return row, fmt.Errorf("unexpected value %q beyond header columns", value)
		}

		var err error
		switch columns[i] {
		case "year":
			row.Year, err = strconv.Atoi(value)
			if err != nil {
				return row, fmt.Errorf("invalid year %q", value)
			}
		case "period":
			row.Period, err = strconv.Atoi(value)
			if err != nil || row.Period < 1 || row.Period > 12 {
				return row, fmt.Errorf("invalid period %q, must be 1-12", value)
			}
		case "amount":
			row.Amount, err = decimal.NewFromString(value)
			if err != nil {
				return row, fmt.Errorf("invalid amount %q", value)
			}
		case "statement_type":
			row.StatementType = value
		case "account":
			row.Account = value
		case "account_name":
			row.AccountName = value
		case "category":
			row.Category = value
		case "sub_category":
			row.SubCategory = value
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[columns[i]] = value
		}
	}

	return row, nil
}
