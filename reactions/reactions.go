// Package reactions keeps per-entry sets of users who liked or disliked an
// entry. The two sets are mutually exclusive per user; each toggle runs as a
// single Lua script so concurrent toggles can never leave a user in both.
package reactions

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rssbot/models"
	"rssbot/store"
)

// toggleScript flips the caller's membership in the target set. A user who
// is already in the target set is removed (un-vote); otherwise they are
// removed from the opposite set and added to the target set. KEYS[1] is the
// target set, KEYS[2] the opposite one, ARGV[1] the user id.
var toggleScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	redis.call("SREM", KEYS[1], ARGV[1])
else
	redis.call("SREM", KEYS[2], ARGV[1])
	redis.call("SADD", KEYS[1], ARGV[1])
end
return redis.call("SCARD", KEYS[1])
`)

type Store struct {
	store *store.Store
}

func New(s *store.Store) *Store {
	return &Store{store: s}
}

// ToggleLike flips the user's like vote for the entry, removing any standing
// dislike vote in the same atomic step.
func (s *Store) ToggleLike(ctx context.Context, url string, userID int64) error {
	return s.toggle(ctx, url, userID, store.IndexUserLikes, store.IndexUserDislikes)
}

// ToggleDislike is symmetric to ToggleLike.
func (s *Store) ToggleDislike(ctx context.Context, url string, userID int64) error {
	return s.toggle(ctx, url, userID, store.IndexUserDislikes, store.IndexUserLikes)
}

// Toggle dispatches on the reaction kind coming from a callback query.
func (s *Store) Toggle(ctx context.Context, url string, userID int64, kind models.ReactionKind) error {
	switch kind {
	case models.ReactionLike:
		return s.ToggleLike(ctx, url, userID)
	case models.ReactionDislike:
		return s.ToggleDislike(ctx, url, userID)
	default:
		return fmt.Errorf("unknown reaction kind: %s", kind)
	}
}

func (s *Store) toggle(ctx context.Context, url string, userID int64, target, opposite string) error {
	keys := []string{
		s.store.EntryKey(target, url),
		s.store.EntryKey(opposite, url),
	}
	if err := toggleScript.Run(ctx, s.store.Client(), keys, userID).Err(); err != nil {
		return fmt.Errorf("failed to toggle %s: %w", target, err)
	}
	return nil
}

// Tally returns the current like and dislike counts for the entry.
func (s *Store) Tally(ctx context.Context, url string) (models.Tally, error) {
	var tally models.Tally
	client := s.store.Client()

	likes, err := client.SCard(ctx, s.store.EntryKey(store.IndexUserLikes, url)).Result()
	if err != nil {
		return tally, fmt.Errorf("failed to count likes: %w", err)
	}

	dislikes, err := client.SCard(ctx, s.store.EntryKey(store.IndexUserDislikes, url)).Result()
	if err != nil {
		return tally, fmt.Errorf("failed to count dislikes: %w", err)
	}

	tally.Likes = likes
	tally.Dislikes = dislikes
	return tally, nil
}

// IsLiker reports whether the user currently has a standing like vote.
func (s *Store) IsLiker(ctx context.Context, url string, userID int64) (bool, error) {
	return s.isMember(ctx, store.IndexUserLikes, url, userID)
}

// IsDisliker reports whether the user currently has a standing dislike vote.
func (s *Store) IsDisliker(ctx context.Context, url string, userID int64) (bool, error) {
	return s.isMember(ctx, store.IndexUserDislikes, url, userID)
}

func (s *Store) isMember(ctx context.Context, index, url string, userID int64) (bool, error) {
	member, err := s.store.Client().SIsMember(ctx, s.store.EntryKey(index, url), userID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s membership: %w", index, err)
	}
	return member, nil
}
