package knowledge

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

// Document is one knowledge-base entry as loaded from the dataset, before
// embedding. The dataset layout is one .txt file per category whose stem is
// the category name, with entries delimited by "Entry N:" markers. Source
// documents are small by design, so entries are indexed whole without any
// further chunking.
type Document struct {
	Category contractx.Category
	Entry    string
	Source   string
	Text     string
}

var entryMarker = regexp.MustCompile(`\bEntry\s+(\d+):`)

// LoadDataset walks the dataset directory and splits every .txt file into
// its entries. Text before the first marker is treated as an intro and
// skipped.
func LoadDataset(root string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read dataset file %s: %w", path, err)
		}

		category := contractx.Category(strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))))
		docs = append(docs, splitEntries(string(raw), category, path)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", root, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("dataset %s contains no entries", root)
	}
	return docs, nil
}

func splitEntries(text string, category contractx.Category, source string) []Document {
	markers := entryMarker.FindAllStringSubmatchIndex(text, -1)
	docs := make([]Document, 0, len(markers))

	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body == "" {
			continue
		}
		docs = append(docs, Document{
			Category: category,
			Entry:    text[m[2]:m[3]],
			Source:   source,
			Text:     body,
		})
	}
	return docs
}
