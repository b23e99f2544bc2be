// Package chart reshapes comparison results into the tabular structures a
// charting surface consumes: pivoted category rows, distributions and the
// per-chart bundles of the comparison page. Every function is pure and
// substitutes 0 for missing data points.
package chart

import (
	"encoding/json"
	"strconv"
	"strings"
)

// KeyMap is a bidirectional mapping between display labels and the
// identifier-safe keys used as row columns. It is built once from the
// ordered labels; collisions after sanitizing get numeric suffixes, so the
// mapping stays lossless. The key "category" is reserved for Row.
type KeyMap struct {
	keys    []string
	labels  []string
	byLabel map[string]string
	byKey   map[string]string
}

// SanitizeKey replaces every character outside [A-Za-z0-9_] with '_'. An
// empty label becomes "_".
func SanitizeKey(label string) string {
	if label == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NewKeyMap assigns a key to every distinct label in order. A repeated
// label keeps its first key.
func NewKeyMap(labels []string) KeyMap {
	km := KeyMap{
		byLabel: make(map[string]string, len(labels)),
		byKey:   make(map[string]string, len(labels)),
	}
	for _, l := range labels {
		km.add(l)
	}
	return km
}

func (km *KeyMap) add(label string) string {
	if k, ok := km.byLabel[label]; ok {
		return k
	}
	base := SanitizeKey(label)
	key := base
	for n := 2; ; n++ {
		if _, taken := km.byKey[key]; !taken && key != CategoryField {
			break
		}
		key = base + "_" + strconv.Itoa(n)
	}
	km.byLabel[label] = key
	km.byKey[key] = label
	km.keys = append(km.keys, key)
	km.labels = append(km.labels, label)
	return key
}

func (km KeyMap) Key(label string) (string, bool) {
	k, ok := km.byLabel[label]
	return k, ok
}

func (km KeyMap) Label(key string) (string, bool) {
	l, ok := km.byKey[key]
	return l, ok
}

// Keys returns the keys in label order.
func (km KeyMap) Keys() []string { return append([]string(nil), km.keys...) }

func (km KeyMap) Labels() []string { return append([]string(nil), km.labels...) }

func (km KeyMap) Len() int { return len(km.keys) }

type keyEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// MarshalJSON encodes the map as an ordered [{key, label}] list.
func (km KeyMap) MarshalJSON() ([]byte, error) {
	entries := make([]keyEntry, len(km.keys))
	for i := range km.keys {
		entries[i] = keyEntry{Key: km.keys[i], Label: km.labels[i]}
	}
	return json.Marshal(entries)
}

func (km *KeyMap) UnmarshalJSON(data []byte) error {
	var entries []keyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*km = KeyMap{
		byLabel: make(map[string]string, len(entries)),
		byKey:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		km.byLabel[e.Label] = e.Key
		km.byKey[e.Key] = e.Label
		km.keys = append(km.keys, e.Key)
		km.labels = append(km.labels, e.Label)
	}
	return nil
}

//Personal.AI order the ending
