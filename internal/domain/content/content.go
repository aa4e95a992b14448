package content

// Item is a piece of readable content as served to the pacing engine.
type Item struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// DailySummary is the daily featured lookup result from the text source.
// Extract may be abbreviated; PageKey identifies the page for a follow-up
// full-text fetch.
type DailySummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	PageKey string `json:"page_key"`
	URL     string `json:"url"`
}

// Page is a complete by-name or by-key lookup result.
type Page struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// ItemFromPage converts a full page into an Item.
func ItemFromPage(p Page) Item {
	return Item{Title: p.Title, Text: p.Text, SourceURL: p.URL}
}

// ItemFromSummary converts a daily summary into an (possibly abbreviated) Item.
func ItemFromSummary(s DailySummary) Item {
	return Item{Title: s.Title, Text: s.Extract, SourceURL: s.URL}
}
