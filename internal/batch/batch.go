// Package batch reads batch pair files for the ranking engine.
package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/clarifier/internal/logging"
	"github.com/cognicore/clarifier/pkg/clarifier"
)

// LoadFromJSONL loads query/items pairs from a JSON Lines file, one
// {"query": "...", "items": [...]} object per line.
func LoadFromJSONL(path string) ([]clarifier.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pairs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pairs, nil
}

// Load reads pairs from r. Blank lines are ignored; malformed lines and
// lines without a query are logged and skipped. Reading no pair at all is
// an error.
func Load(r io.Reader) ([]clarifier.Pair, error) {
	var pairs []clarifier.Pair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p clarifier.Pair
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			logging.Warn().Err(err).Int("line", lineNo).Msg("skipping malformed pair")
			continue
		}
		p.Query = strings.TrimSpace(p.Query)
		if p.Query == "" {
			logging.Warn().Int("line", lineNo).Msg("skipping pair without query")
			continue
		}
		pairs = append(pairs, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no valid pairs found")
	}
	return pairs, nil
}
