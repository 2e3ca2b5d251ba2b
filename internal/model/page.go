package model

// PageMetadata is the per-page metadata reported by the crawl provider.
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	SourceURL   string `json:"sourceURL,omitempty"`
	StatusCode  int    `json:"statusCode,omitempty"`
}

// CrawledPage represents a page fetched during crawling.
type CrawledPage struct {
	Markdown string       `json:"markdown"`
	Metadata PageMetadata `json:"metadata"`
}

// CrawlResult holds the outcome of a crawl. Pages have no identity beyond
// their position. An empty Data slice is a valid, successful result.
type CrawlResult struct {
	Success bool          `json:"success"`
	Status  string        `json:"status"`
	Total   int           `json:"total"`
	Data    []CrawledPage `json:"data"`
	Source  string        `json:"source"` // "firecrawl" or "jina"
}

// Markdown returns the markdown of every page in crawl order.
func (r *CrawlResult) Markdown() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Data))
	for _, p := range r.Data {
		out = append(out, p.Markdown)
	}
	return out
}

// FirstMetadata returns the metadata of the first page that has a title,
// falling back to the first page. The zero value is returned for empty results.
func (r *CrawlResult) FirstMetadata() PageMetadata {
	if r == nil || len(r.Data) == 0 {
		return PageMetadata{}
	}
	for _, p := range r.Data {
		if p.Metadata.Title != "" {
			return p.Metadata
		}
	}
	return r.Data[0].Metadata
}
