// Package feeds polls the configured feed and selects which entries should
// be published this cycle.
package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"

	"rssbot/models"
)

const fetchRetries = 3

// Fetcher downloads and parses the feed into typed candidates. The parsed
// feed structure never leaves this package.
type Fetcher struct {
	parser *gofeed.Parser
	url    string
}

func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		parser: gofeed.NewParser(),
		url:    url,
	}
}

// Fetch returns the feed's entries in feed order. Transient fetch failures
// are retried with exponential backoff before giving up until next cycle.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Candidate, error) {
	var feed *gofeed.Feed

	operation := func() error {
		var err error
		feed, err = f.parser.ParseURLWithContext(f.url, ctx)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		log.WithFields(log.Fields{
			"url":   f.url,
			"retry": next,
		}).Warn("Feed fetch failed, retrying: ", err)
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", f.url, err)
	}

	candidates := make([]models.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Title: item.Title,
			URL:   item.Link,
		})
	}

	log.WithFields(log.Fields{
		"url":     f.url,
		"entries": len(candidates),
	}).Info("Fetched feed")

	return candidates, nil
}
