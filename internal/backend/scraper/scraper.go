package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adflow/internal/domain"

	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "Mozilla/5.0"

// Scraper reads a Shopify product page's Open Graph tags.
type Scraper struct {
	userAgent string
	timeout   time.Duration
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{userAgent: defaultUserAgent, timeout: timeout}
}

// Scrape returns whatever product fields the page exposes. A page without
// og:title yields a Product with an empty Title rather than an error.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	c := colly.NewCollector(colly.UserAgent(s.userAgent), colly.StdlibContext(ctx))
	c.SetRequestTimeout(s.timeout)

	meta := make(map[string]string)
	c.OnHTML("meta[property]", func(e *colly.HTMLElement) {
		property := strings.TrimSpace(e.Attr("property"))
		if _, seen := meta[property]; seen {
			return
		}
		meta[property] = strings.TrimSpace(e.Attr("content"))
	})

	if err := c.Visit(pageURL); err != nil {
		return domain.Product{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	c.Wait()

	price := meta["product:price:amount"]
	if price == "" {
		price = domain.DefaultPrice
	}
	return domain.Product{
		Title:       meta["og:title"],
		Description: meta["og:description"],
		ImageURL:    meta["og:image"],
		Price:       domain.Price(price),
	}, nil
}
