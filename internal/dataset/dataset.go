// Package dataset holds the tabular input of a figure run: CSV records
// loaded into named columns, each either text (categorical) or numeric.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column is one named column of a Dataset.
type Column struct {
	name    string
	text    []string
	nums    []float64
	numeric bool
}

// TextColumn builds a categorical column. Empty strings are nulls.
func TextColumn(name string, values []string) *Column {
	return &Column{name: name, text: append([]string(nil), values...)}
}

// NumericColumn builds a numeric column. NaN values are nulls.
func NumericColumn(name string, values []float64) *Column {
	text := make([]string, len(values))
	for i, v := range values {
		text[i] = formatFloat(v)
	}
	return &Column{
		name:    name,
		text:    text,
		nums:    append([]float64(nil), values...),
		numeric: true,
	}
}

// inferColumn types a column from raw cells: it is numeric when every
// non-empty cell parses as a float.
func inferColumn(name string, cells []string) *Column {
	nums := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = v
	}
	if !numeric {
		return &Column{name: name, text: cells}
	}
	// Numeric text is canonical so "14" and "14.0" group together.
	text := make([]string, len(nums))
	for i, v := range nums {
		text[i] = formatFloat(v)
	}
	return &Column{name: name, text: text, nums: nums, numeric: true}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Numeric reports whether the column holds numbers.
func (c *Column) Numeric() bool { return c.numeric }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.text) }

// Dataset is an immutable table of equally long columns.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// FromColumns assembles a Dataset. Column names must be unique and all
// columns must have the same length.
func FromColumns(cols ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := d.index[c.name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.name, c.Len(), d.rows)
		}
		d.index[c.name] = i
		d.columns = append(d.columns, c)
	}
	return d, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Columns returns the column names in file order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found (have %s)", name, strings.Join(d.Columns(), ", "))
	}
	return d.columns[i], nil
}

// Floats returns a copy of a numeric column.
func (d *Dataset) Floats(name string) ([]float64, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.numeric {
		return nil, fmt.Errorf("column %q is not numeric", name)
	}
	return append([]float64(nil), c.nums...), nil
}

// Strings returns a copy of a column's cells as text.
func (d *Dataset) Strings(name string) ([]string, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.text...), nil
}

// Subset returns a new Dataset holding the given rows in the given order.
func (d *Dataset) Subset(rows []int) *Dataset {
	out := &Dataset{index: d.index, rows: len(rows)}
	for _, c := range d.columns {
		nc := &Column{name: c.name, numeric: c.numeric, text: make([]string, len(rows))}
		if c.numeric {
			nc.nums = make([]float64, len(rows))
		}
		for i, r := range rows {
			nc.text[i] = c.text[r]
			if c.numeric {
				nc.nums[i] = c.nums[r]
			}
		}
		out.columns = append(out.columns, nc)
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
