package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OpenJSONDir loads a directory of collection exports. Each <collection>.json
// file holds one object keyed by document ID. Document order follows the
// sorted IDs so repeated runs see the same sequence.
func OpenJSONDir(dir string) (*Memory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read export dir: %w", err)
	}

	mem := NewMemory()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		collection := strings.TrimSuffix(e.Name(), ".json")
		docs, err := readExport(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", collection, err)
		}
		mem.Add(collection, docs...)
	}
	return mem, nil
}

func readExport(path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var byID map[string]map[string]any
	if err := dec.Decode(&byID); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		data, _ := normalizeJSON(byID[id]).(map[string]any)
		if data == nil {
			data = map[string]any{}
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	return docs, nil
}

// normalizeJSON turns json.Number into int64 or float64.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeJSON(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeJSON(item)
		}
		return out
	}
	return v
}
