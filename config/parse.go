package config

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// Table is a flat map of dotted keys to raw string values.
type Table map[string]string

// merge copies src into t; src wins.
func (t Table) merge(src Table) {
	maps.Copy(t, src)
}

// Keys returns the table keys in sorted order.
func (t Table) Keys() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func parseProperties(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return Table(p.Map()), nil
}

func parseYAML(r io.Reader) (Table, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	out := Table{}
	flatten("", doc, out)
	return out, nil
}

func parseTOML(r io.Reader) (Table, error) {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	out := Table{}
	flatten("", doc, out)
	return out, nil
}

// flatten writes v into out under dotted keys. Mappings nest with ".";
// sequences of scalars join with ","; sequences holding mappings are indexed.
// Mapping keys are visited in sorted order, so when a dotted key and a nested
// path name the same entry ("app.url" and app: {url}), the dotted key wins.
func flatten(prefix string, v any, out Table) {
	switch val := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(val)) {
			flatten(join(prefix, k), val[k], out)
		}
	case map[any]any:
		named := make(map[string]any, len(val))
		for k, child := range val {
			named[fmt.Sprint(k)] = child
		}
		flatten(prefix, named, out)
	case []map[string]any:
		for i, child := range val {
			flatten(join(prefix, strconv.Itoa(i)), child, out)
		}
	case []any:
		if !allScalar(val) {
			for i, child := range val {
				flatten(join(prefix, strconv.Itoa(i)), child, out)
			}
			return
		}
		parts := make([]string, len(val))
		for i, child := range val {
			parts[i] = scalar(child)
		}
		out[prefix] = strings.Join(parts, ",")
	default:
		if prefix != "" {
			out[prefix] = scalar(val)
		}
	}
}

func allScalar(vals []any) bool {
	for _, v := range vals {
		switch v.(type) {
		case map[string]any, map[any]any, []any, []map[string]any:
			return false
		}
	}
	return true
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
