package search

import "context"

type Document struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Retriever fetches raw documents for the expanded queries. Results only
// enrich the synthesis prompt; a failing retriever never fails augmentation.
type Retriever interface {
	Retrieve(ctx context.Context, queries []string, domains []string) ([]Document, error)
}

// Noop is the default retriever: synthesis relies on the model alone.
type Noop struct{}

func (Noop) Retrieve(context.Context, []string, []string) ([]Document, error) { return nil, nil }
