package documents

import "context"

// Document is the extracted content handed to a Summarizer.
type Document struct {
	FileName string
	Pages    int
	Text     string
}

// Summary is what a Summarizer produced. Available is false when no real
// summary could be generated; Message then explains why.
type Summary struct {
	Available bool     `json:"available"`
	Message   string   `json:"message"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// Summarizer turns an extracted document into a summary for staff.
type Summarizer interface {
	Summarize(ctx context.Context, doc Document) (Summary, error)
}

// PlaceholderMessage is shown until a real summarizer is configured.
const PlaceholderMessage = "AI summary functionality is under development. Please check back later."

// PlaceholderSummarizer never summarizes.
type PlaceholderSummarizer struct{}

func (PlaceholderSummarizer) Summarize(context.Context, Document) (Summary, error) {
	return Summary{Available: false, Message: PlaceholderMessage}, nil
}
