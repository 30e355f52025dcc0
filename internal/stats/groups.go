// Package stats computes the summaries the figures are drawn from. Every
// function here is pure over a dataset.Dataset and never touches the
// plotting backend.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"figmgr/internal/dataset"
)

// Group is one partition of a dataset: the rows sharing a key tuple.
type Group struct {
	Key  []string
	Rows []int
}

// Label joins the key values for legends.
func (g Group) Label() string {
	return strings.Join(g.Key, ", ")
}

// IsNull reports whether any key value is null.
func (g Group) IsNull() bool {
	for _, k := range g.Key {
		if k == "" {
			return true
		}
	}
	return false
}

// GroupBy partitions the rows of d by the values of cols. Rows keep their
// original relative order inside each group.
//
// Without an explicit order groups are ascending, null keys last. With an
// order its listed keys come first, then the null group, then the rest.
func GroupBy(d *dataset.Dataset, cols []string, order [][]string) ([]Group, error) {
	if len(cols) == 0 {
		rows := make([]int, d.Len())
		for i := range rows {
			rows[i] = i
		}
		return []Group{{Rows: rows}}, nil
	}

	values := make([][]string, len(cols))
	for j, col := range cols {
		v, err := d.Strings(col)
		if err != nil {
			return nil, err
		}
		values[j] = v
	}

	var groups []Group
	index := make(map[string]int)
	for i := 0; i < d.Len(); i++ {
		key := make([]string, len(cols))
		for j := range cols {
			key[j] = values[j][i]
		}
		id := keyID(key)
		gi, ok := index[id]
		if !ok {
			gi = len(groups)
			index[id] = gi
			groups = append(groups, Group{Key: key})
		}
		groups[gi].Rows = append(groups[gi].Rows, i)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return lessGroup(groups[a], groups[b])
	})
	if len(order) == 0 {
		return groups, nil
	}
	return applyOrder(groups, order, len(cols))
}

func applyOrder(groups []Group, order [][]string, width int) ([]Group, error) {
	taken := make([]bool, len(groups))
	byID := make(map[string]int, len(groups))
	for i, g := range groups {
		byID[keyID(g.Key)] = i
	}

	out := make([]Group, 0, len(groups))
	for _, key := range order {
		if len(key) != width {
			return nil, fmt.Errorf("sort order key %v has %d values, expected %d", key, len(key), width)
		}
		if i, ok := byID[keyID(key)]; ok && !taken[i] {
			out = append(out, groups[i])
			taken[i] = true
		}
	}
	for i, g := range groups {
		if !taken[i] && g.IsNull() {
			out = append(out, g)
			taken[i] = true
		}
	}
	for i, g := range groups {
		if !taken[i] {
			out = append(out, g)
		}
	}
	return out, nil
}

func keyID(key []string) string {
	return strings.Join(key, "\x1f")
}

func lessGroup(a, b Group) bool {
	if an, bn := a.IsNull(), b.IsNull(); an != bn {
		return bn
	}
	return compareKeys(a.Key, b.Key) < 0
}

func compareKeys(a, b []string) int {
	for i := range a {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareValues orders numerically when both values are numbers.
func compareValues(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
