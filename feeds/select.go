package feeds

import (
	"context"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"rssbot/models"
)

// PostedChecker answers whether an entry url was already published.
type PostedChecker interface {
	WasPosted(ctx context.Context, url string) (bool, error)
}

// Selector filters a polled batch of candidates down to the entries that
// should be published this cycle.
type Selector struct {
	registry       PostedChecker
	blacklistWords []string
	blacklistURLs  []string
}

func NewSelector(registry PostedChecker, blacklistWords, blacklistURLs []string) *Selector {
	return &Selector{
		registry:       registry,
		blacklistWords: blacklistWords,
		blacklistURLs:  blacklistURLs,
	}
}

// SelectBatch walks candidates in order and collects up to maxCount entries
// that were never posted and pass both blacklists. An empty result means
// nothing to publish this cycle, not an error.
func (s *Selector) SelectBatch(ctx context.Context, candidates []models.Candidate, maxCount int) ([]models.Candidate, error) {
	selected := make([]models.Candidate, 0, maxCount)

	for _, candidate := range candidates {
		if len(selected) >= maxCount {
			break
		}

		posted, err := s.registry.WasPosted(ctx, candidate.URL)
		if err != nil {
			return nil, err
		}
		if posted {
			continue
		}

		if s.ContainsBlacklistedWord(candidate.Title) {
			log.WithFields(log.Fields{
				"title": candidate.Title,
			}).Info("Title contains blacklisted words, skipping")
			continue
		}

		if s.IsBlacklistedURL(candidate.URL) {
			log.WithFields(log.Fields{
				"url": candidate.URL,
			}).Info("URL is blacklisted, skipping")
			continue
		}

		selected = append(selected, candidate)
	}

	return selected, nil
}

// ContainsBlacklistedWord reports whether any configured word occurs in the
// title, compared case-insensitively as a substring.
func (s *Selector) ContainsBlacklistedWord(title string) bool {
	lower := strings.ToLower(title)
	return lo.SomeBy(s.blacklistWords, func(word string) bool {
		return strings.Contains(lower, strings.ToLower(word))
	})
}

// IsBlacklistedURL reports whether the url starts with any configured prefix.
func (s *Selector) IsBlacklistedURL(url string) bool {
	return lo.SomeBy(s.blacklistURLs, func(prefix string) bool {
		return strings.HasPrefix(url, prefix)
	})
}
