package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ScrapeTimeout is the page-scrape HTTP call timeout.
const ScrapeTimeout = 60 * time.Second

const paragraphSeparator = "\n\n"

// Chunk is one paragraph-packed slice of scraped page text, indexed in
// scrape order.
type Chunk struct {
	Index     int    `json:"index"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// ScrapePage fetches pageURL (60s timeout), extracts paragraph text, and
// packs paragraphs into chunks bounded by chunkSize characters. Grounded on
// original_source/level_core/simluators/scraper.py's paragraph-packing
// algorithm; golang.org/x/net/html substitutes for BeautifulSoup as the
// HTML parser (the pack's only HTML-capable library; no third-party
// scraping library is declared anywhere in the example corpus).
func ScrapePage(ctx context.Context, client *http.Client, pageURL string, chunkSize int) ([]Chunk, error) {
	ctx, cancel := context.WithTimeout(ctx, ScrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rag: build scrape request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rag: scrape %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rag: scrape %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rag: parse page: %w", err)
	}

	paragraphs := extractParagraphs(doc)
	return packChunks(paragraphs, chunkSize), nil
}

// extractParagraphs walks the DOM depth-first and collects the trimmed
// text content of every <p> element with non-empty text.
func extractParagraphs(doc *html.Node) []string {
	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(textContent(n))
			if text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return paragraphs
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// packChunks greedily packs paragraphs into chunks no longer than
// chunkSize characters (a chunk may exceed it only when a single
// paragraph alone does), separated internally by a blank line.
func packChunks(paragraphs []string, chunkSize int) []Chunk {
	var chunks []Chunk
	var current []string
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		content := strings.Join(current, paragraphSeparator)
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Content:   content,
			WordCount: len(strings.Fields(content)),
		})
		current = nil
		currentLen = 0
	}

	for _, para := range paragraphs {
		paraLen := len(para)
		if currentLen == 0 {
			current = []string{para}
			currentLen = paraLen
			continue
		}
		projected := currentLen + len(paragraphSeparator) + paraLen
		if projected > chunkSize {
			flush()
			current = []string{para}
			currentLen = paraLen
			continue
		}
		current = append(current, para)
		currentLen = projected
	}
	flush()

	return chunks
}
