package ingest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
)

const itemsFixture = `apple_1	['banana', 'grape']
-----------------------------------------------------------
tropical fruits, fruit list
ok
this list title is far too long to be kept as a list line
-----------------------------------------------------------
bananas and grapes are popular fruits in many countries
short text
`

const queryFixture = `apple_1	['banana', 'grape', 'a very long header that would otherwise pass']
-----------------------------------------------------------
an apple is a fruit such as a crisp fruit
too short
`

func TestParseItems(t *testing.T) {
	lists, texts, err := ParseItems(strings.NewReader(itemsFixture), DefaultLimits())
	if err != nil {
		t.Fatalf("ParseItems: %v", err)
	}

	wantLists := []string{"tropical fruits", "fruit list"}
	if !reflect.DeepEqual(lists, wantLists) {
		t.Errorf("lists = %q, want %q", lists, wantLists)
	}

	wantTexts := []string{"bananas and grapes are popular fruits in many countries"}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Errorf("texts = %q, want %q", texts, wantTexts)
	}
}

func TestParseQuerySkipsHeader(t *testing.T) {
	texts, err := ParseQuery(strings.NewReader(queryFixture), DefaultLimits())
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	want := []string{"an apple is a fruit such as a crisp fruit"}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("texts = %q, want %q", texts, want)
	}
}

func TestParseQueryWithoutDivider(t *testing.T) {
	in := "an apple is a fruit such as a crisp fruit\n"
	texts, err := ParseQuery(strings.NewReader(in), DefaultLimits())
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if len(texts) != 1 {
		t.Errorf("expected 1 text, got %d", len(texts))
	}
}

func TestReadCorpusMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadCorpus(filepath.Join(dir, "missing_items.txt"), filepath.Join(dir, "missing_query.txt"), DefaultLimits())
	if !errors.Is(err, internalerr.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestReadCorpus(t *testing.T) {
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "apple_1_candidates-items.txt")
	queryPath := filepath.Join(dir, "apple_1_candidates-query.txt")

	if err := os.WriteFile(itemsPath, []byte(itemsFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(queryPath, []byte(queryFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := ReadCorpus(itemsPath, queryPath, DefaultLimits())
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}
	if len(c.ItemLists) != 2 || len(c.ItemTexts) != 1 || len(c.QueryTexts) != 1 {
		t.Errorf("unexpected corpus sizes: %+v", c)
	}
}

func TestWriteItemsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	lists := []string{"tropical fruits"}
	texts := []string{"bananas and grapes are popular fruits in many countries"}

	if err := WriteItems(&buf, "apple_1", lists, texts); err != nil {
		t.Fatalf("WriteItems: %v", err)
	}

	gotLists, gotTexts, err := ParseItems(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("ParseItems: %v", err)
	}
	if !reflect.DeepEqual(gotLists, lists) || !reflect.DeepEqual(gotTexts, texts) {
		t.Errorf("round trip mismatch: %q %q", gotLists, gotTexts)
	}
}
