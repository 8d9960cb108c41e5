package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/drafter.txt
	drafterRaw string

	//go:embed template/reviewer.txt
	reviewerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Drafter    string
	Reviewer   string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Drafter:    strings.TrimSpace(drafterRaw),
		Reviewer:   strings.TrimSpace(reviewerRaw),
	}
}
