// Package newsfeed collects raw articles from financial news sites.
// It only gathers text; classification happens downstream.
package newsfeed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"market-intel/internal/api"
	"market-intel/internal/logger"
	"market-intel/internal/types"
)

// Source describes one news site: where to search and which selectors
// locate the article pieces on its listing page.
type Source struct {
	Name       string
	BaseURL    string
	SearchPath string // "{query}" is replaced with the search term
	Selectors  Selectors
	Delay      time.Duration
}

// Selectors are the CSS selectors for one source's listing markup.
type Selectors struct {
	Item        string
	Headline    string
	Link        string
	Snippet     string
	PublishedAt string
}

// Feed scrapes the configured sources sequentially with per-source
// delays so no site sees burst traffic.
type Feed struct {
	sources []Source
	timeout time.Duration
}

func NewFeed(timeout time.Duration) *Feed {
	return &Feed{sources: defaultSources(), timeout: timeout}
}

func NewFeedWithSources(timeout time.Duration, sources []Source) *Feed {
	return &Feed{sources: sources, timeout: timeout}
}

func defaultSources() []Source {
	return []Source{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/news/tags/{query}.html",
			Selectors: Selectors{
				Item:        "li.clearfix",
				Headline:    "h2 a, h3 a",
				Link:        "h2 a, h3 a",
				Snippet:     "p",
				PublishedAt: "span.ago",
			},
			Delay: 2 * time.Second,
		},
		{
			Name:       "EconomicTimes",
			BaseURL:    "https://economictimes.indiatimes.com",
			SearchPath: "/topic/{query}",
			Selectors: Selectors{
				Item:        "div.story-box",
				Headline:    "a",
				Link:        "a",
				Snippet:     "p",
				PublishedAt: "time",
			},
			Delay: 2 * time.Second,
		},
		{
			Name:       "BusinessStandard",
			BaseURL:    "https://www.business-standard.com",
			SearchPath: "/search?q={query}",
			Selectors: Selectors{
				Item:        "div.listing-txt",
				Headline:    "a.Hdng",
				Link:        "a.Hdng",
				Snippet:     "p",
				PublishedAt: "span.listing-date",
			},
			Delay: 2 * time.Second,
		},
	}
}

// Fetch gathers up to maxArticles articles mentioning the query term
// across all sources. Per-source failures are logged and skipped; the
// call fails only when every source failed.
func (f *Feed) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("%w: no news sources configured", types.ErrDataUnavailable)
	}
	perSource := maxArticles / len(f.sources)
	if perSource < 1 {
		perSource = 1
	}

	var all []types.Article
	failures := 0
	for _, src := range f.sources {
		articles, err := f.fetchSource(ctx, src, query, perSource)
		if err != nil {
			failures++
			logger.ErrorWithErr(ctx, "Source fetch failed", err, "source", src.Name, "query", query)
			continue
		}
		all = append(all, articles...)
		time.Sleep(src.Delay)
	}
	if failures == len(f.sources) {
		return nil, fmt.Errorf("%w: all %d news sources failed for %q", types.ErrDataUnavailable, len(f.sources), query)
	}
	logger.Info(ctx, "News fetch completed", "query", query, "articles", len(all))
	return all, nil
}

func (f *Feed) fetchSource(ctx context.Context, src Source, query string, maxArticles int) ([]types.Article, error) {
	var articles []types.Article

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(src.BaseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(f.timeout)
	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnHTML(src.Selectors.Item, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}
		headline := strings.TrimSpace(e.ChildText(src.Selectors.Headline))
		link := e.ChildAttr(src.Selectors.Link, "href")
		if headline == "" || link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = src.BaseURL + link
		}
		articles = append(articles, types.Article{
			Headline:    headline,
			Body:        strings.TrimSpace(e.ChildText(src.Selectors.Snippet)),
			Source:      src.Name,
			URL:         link,
			PublishedAt: strings.TrimSpace(e.ChildText(src.Selectors.PublishedAt)),
		})
	})

	searchURL := src.BaseURL + strings.ReplaceAll(src.SearchPath, "{query}", url.PathEscape(strings.ToLower(query)))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", searchURL, err)
	}
	c.Wait()

	for i := range articles {
		// Listing snippets are often a sentence or two; fetch the full
		// body when the snippet is too thin to extract facts from.
		if len(articles[i].Body) < 100 {
			if body := f.fetchBody(ctx, articles[i].URL); body != "" {
				articles[i].Body = body
			}
			time.Sleep(500 * time.Millisecond)
		}
	}
	return articles, nil
}

// fetchBody pulls the paragraph text out of a full article page.
func (f *Feed) fetchBody(ctx context.Context, articleURL string) string {
	c := colly.NewCollector()
	c.SetRequestTimeout(f.timeout)
	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
	})

	var body string
	c.OnHTML("article, div.article-body, div.content-body, div.story-content", func(e *colly.HTMLElement) {
		var paragraphs []string
		e.DOM.Find("p").Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		body = strings.Join(paragraphs, "\n\n")
	})

	if err := c.Visit(articleURL); err != nil {
		logger.ErrorWithErr(ctx, "Article body fetch failed", err, "url", articleURL)
		return ""
	}
	return body
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
