package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultFetchTimeout = 30 * time.Second

// WebFetch fetches a URL and returns the visible text of the page.
// Script and style elements are dropped and whitespace is collapsed.
func WebFetch(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "langgraph-source/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		return "", fmt.Errorf("no text content found at %s", rawURL)
	}
	return text, nil
}

// WebFetchTool exposes WebFetch as the fetch_url tool.
func WebFetchTool() Tool {
	return New(
		"fetch_url",
		"Downloads a web page and returns its readable text.",
		ObjectSchema(map[string]any{
			"url": StringProperty("absolute http(s) URL to fetch"),
		}, "url"),
		func(ctx context.Context, args map[string]any) (any, error) {
			u, err := StringArg(args, "url")
			if err != nil {
				return nil, err
			}
			return WebFetch(ctx, u)
		},
	)
}
