package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mysticvn/boitoan/internal/config"
)

// Reference is a plain-text encyclopedia extract used to ground AI output.
type Reference struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"url"`
	PageID  int    `json:"pageid"`
}

type SearchResult struct {
	Title   string
	Snippet string
	PageID  int
}

type Client struct {
	apiURL      string
	articleBase string
	searchLimit int
	httpClient  *http.Client
}

func NewClient(cfg config.WikipediaConfig) *Client {
	articleBase := "https://vi.wikipedia.org/wiki/"
	if base, ok := strings.CutSuffix(cfg.BaseURL, "/w/api.php"); ok {
		articleBase = base + "/wiki/"
	}
	return &Client{
		apiURL:      cfg.BaseURL,
		articleBase: articleBase,
		searchLimit: cfg.SearchLimit,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Search queries the MediaWiki full-text search endpoint. Zero results is not
// an error.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", term)
	params.Set("format", "json")
	params.Set("srlimit", fmt.Sprintf("%d", c.searchLimit))
	params.Set("srprop", "snippet")

	var payload struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
				PageID  int    `json:"pageid"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, fmt.Errorf("wikipedia search for %q failed: %w", term, err)
	}

	results := make([]SearchResult, 0, len(payload.Query.Search))
	for _, r := range payload.Query.Search {
		results = append(results, SearchResult{Title: r.Title, Snippet: r.Snippet, PageID: r.PageID})
	}
	return results, nil
}

// Summary fetches the plain-text lead section for a canonical page title.
func (c *Client) Summary(ctx context.Context, title string) (*Reference, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "extracts")
	params.Set("exintro", "true")
	params.Set("explaintext", "true")
	params.Set("exsectionformat", "plain")
	params.Set("titles", title)

	var payload struct {
		Query struct {
			Pages map[string]struct {
				PageID  int     `json:"pageid"`
				Title   string  `json:"title"`
				Extract string  `json:"extract"`
				Missing *string `json:"missing"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, fmt.Errorf("wikipedia extract for %q failed: %w", title, err)
	}

	for _, page := range payload.Query.Pages {
		if page.Missing != nil {
			continue
		}
		return &Reference{
			Title:   page.Title,
			Extract: page.Extract,
			URL:     c.articleBase + url.PathEscape(strings.ReplaceAll(page.Title, " ", "_")),
			PageID:  page.PageID,
		}, nil
	}
	return nil, fmt.Errorf("wikipedia page %q not found", title)
}

// FetchOne runs the search+extract sequence for a single term. A term with no
// matching article returns (nil, nil).
func (c *Client) FetchOne(ctx context.Context, term string) (*Reference, error) {
	results, err := c.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return c.Summary(ctx, results[0].Title)
}

// FetchMany fetches references for all terms concurrently. The returned slice
// has one slot per input term, in input order. A failed or empty lookup only
// nils its own slot; it never aborts the other fetches.
func (c *Client) FetchMany(ctx context.Context, terms []string) []*Reference {
	refs := make([]*Reference, len(terms))
	var wg sync.WaitGroup
	for i, term := range terms {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()
			ref, err := c.FetchOne(ctx, term)
			if err != nil {
				logrus.WithError(err).WithField("term", term).Debug("wikipedia lookup degraded to nil")
				return
			}
			refs[i] = ref
		}(i, term)
	}
	wg.Wait()
	return refs
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// Compact drops nil slots, keeping order.
func Compact(refs []*Reference) []*Reference {
	valid := make([]*Reference, 0, len(refs))
	for _, r := range refs {
		if r != nil {
			valid = append(valid, r)
		}
	}
	return valid
}

// BuildContext renders references as the labeled block embedded into prompts.
func BuildContext(refs []*Reference) string {
	if len(refs) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(refs))
	for _, r := range refs {
		blocks = append(blocks, fmt.Sprintf("**%s:**\n%s\nNguồn: %s", r.Title, r.Extract, r.URL))
	}
	return strings.Join(blocks, "\n\n")
}
