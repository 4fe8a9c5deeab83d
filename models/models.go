package models

// Candidate is one (title, url) pair from a feed poll. Ephemeral, never
// persisted; the url is the stable identifier used for dedup.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DeliveryRecord is the persisted proof that an entry was published.
// Created exactly once per url, never updated in place.
type DeliveryRecord struct {
	URL          string `json:"url"`
	MessageID    int    `json:"message_id"`
	RenderedText string `json:"message_text"`
}

// Tally holds the displayed like/dislike counts for an entry.
type Tally struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// ReactionKind names one of the two reaction buttons.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)
