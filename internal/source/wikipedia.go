package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"syllaread/internal/domain/content"
)

// Wikipedia fetches content from a MediaWiki deployment: the REST
// featured feed for daily summaries and the action API plain-text
// extracts for complete pages.
type Wikipedia struct {
	baseURL    string
	httpClient *http.Client
}

// NewWikipedia creates a client for the given base URL, e.g.
// "https://en.wikipedia.org".
func NewWikipedia(baseURL string) *Wikipedia {
	return &Wikipedia{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type featuredResponse struct {
	TFA *struct {
		Title  string `json:"title"`
		Titles struct {
			Normalized string `json:"normalized"`
		} `json:"titles"`
		Extract     string `json:"extract"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	} `json:"tfa"`
}

type extractsResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Missing string `json:"missing"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// DailySummary fetches the featured-article summary for date.
func (w *Wikipedia) DailySummary(ctx context.Context, date time.Time) (content.DailySummary, error) {
	u := fmt.Sprintf("%s/api/rest_v1/feed/featured/%04d/%02d/%02d",
		w.baseURL, date.Year(), date.Month(), date.Day())

	var resp featuredResponse
	if err := w.getJSON(ctx, u, &resp); err != nil {
		return content.DailySummary{}, err
	}
	if resp.TFA == nil {
		return content.DailySummary{}, fmt.Errorf("no featured article for %s: %w",
			date.Format("2006-01-02"), ErrNotFound)
	}

	title := resp.TFA.Titles.Normalized
	if title == "" {
		title = resp.TFA.Title
	}
	return content.DailySummary{
		Title:   title,
		Extract: resp.TFA.Extract,
		PageKey: resp.TFA.Title,
		URL:     resp.TFA.ContentURLs.Desktop.Page,
	}, nil
}

// PageByKey fetches the complete plain text for a page key.
func (w *Wikipedia) PageByKey(ctx context.Context, key string) (content.Page, error) {
	return w.fetchExtract(ctx, key)
}

// PageByName fetches the complete plain text for a page name.
func (w *Wikipedia) PageByName(ctx context.Context, name string) (content.Page, error) {
	return w.fetchExtract(ctx, name)
}

func (w *Wikipedia) fetchExtract(ctx context.Context, title string) (content.Page, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")
	q.Set("format", "json")
	q.Set("titles", title)
	u := fmt.Sprintf("%s/w/api.php?%s", w.baseURL, q.Encode())

	var resp extractsResponse
	if err := w.getJSON(ctx, u, &resp); err != nil {
		return content.Page{}, err
	}

	for id, page := range resp.Query.Pages {
		if id == "-1" || page.Extract == "" {
			continue
		}
		return content.Page{
			Title: page.Title,
			Text:  page.Extract,
			URL:   w.pageURL(page.Title),
		}, nil
	}
	return content.Page{}, fmt.Errorf("no page matching %q: %w", title, ErrNotFound)
}

func (w *Wikipedia) pageURL(title string) string {
	return fmt.Sprintf("%s/wiki/%s", w.baseURL, url.PathEscape(title))
}

func (w *Wikipedia) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", u, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, u)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
