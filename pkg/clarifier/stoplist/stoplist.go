// Package stoplist holds the stopword set used when mining unigrams.
package stoplist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manager holds a stopword set. It is read-only once a run starts.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		s = strings.TrimSpace(s)
		if s != "" {
			stops[s] = struct{}{}
		}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[token]
	return ok
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

// All returns all stopwords, sorted.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

type yamlList struct {
	Terms []string `yaml:"terms"`
}

// LoadFile reads a stopword file. Files ending in .yaml or .yml carry a
// `terms:` list; anything else is one term per line, with blank lines and
// lines starting with '#' ignored.
func LoadFile(path string) (*Manager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stoplist: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return Load(f)
	}
}

// Load reads one stopword per line.
func Load(r io.Reader) (*Manager, error) {
	var terms []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stoplist: %w", err)
	}
	return NewManager(terms), nil
}

// LoadYAML reads a YAML document with a `terms:` list.
func LoadYAML(r io.Reader) (*Manager, error) {
	var doc yamlList
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse stoplist yaml: %w", err)
	}
	return NewManager(doc.Terms), nil
}
