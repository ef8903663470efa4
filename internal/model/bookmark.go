package model

import "time"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"` // "" = absent
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title       string
	URL         string
	Description string
	Tags        []string
}

// NewBookmark creates a Bookmark with a generated UUID and creation time.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	return Bookmark{
		ID:          GenerateUUID(),
		Title:       params.Title,
		URL:         params.URL,
		Description: params.Description,
		Tags:        tags,
		CreatedAt:   time.Now(),
	}
}

// HasTag reports whether the bookmark carries the given tag.
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with b.
func (b Bookmark) Clone() Bookmark {
	c := b
	if b.Tags != nil {
		c.Tags = append([]string{}, b.Tags...)
	}
	return c
}
