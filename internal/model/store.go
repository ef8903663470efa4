package model

import "errors"

// ErrBookmarkNotFound is returned when an ID does not match any bookmark.
var ErrBookmarkNotFound = errors.New("bookmark not found")

// Store holds all bookmarks in insertion order.
type Store struct {
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates an empty Store with an initialized slice.
func NewStore() *Store {
	return &Store{
		Bookmarks: []Bookmark{},
	}
}

// Len returns the number of bookmarks.
func (s *Store) Len() int {
	return len(s.Bookmarks)
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	if i := s.indexOf(id); i >= 0 {
		return &s.Bookmarks[i]
	}
	return nil
}

// HasBookmarkURL checks if a bookmark with the given URL exists.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// AddBookmark appends a bookmark. A colliding ID is replaced with a fresh one.
func (s *Store) AddBookmark(b Bookmark) Bookmark {
	if b.ID == "" || s.indexOf(b.ID) >= 0 {
		b.ID = s.freshID()
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	s.Bookmarks = append(s.Bookmarks, b)
	return b
}

// UpdateBookmark replaces the bookmark with b.ID in place.
func (s *Store) UpdateBookmark(b Bookmark) error {
	i := s.indexOf(b.ID)
	if i < 0 {
		return ErrBookmarkNotFound
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	s.Bookmarks[i] = b
	return nil
}

// DeleteBookmark removes a bookmark by ID, keeping the order of the rest.
func (s *Store) DeleteBookmark(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrBookmarkNotFound
	}
	s.Bookmarks = append(s.Bookmarks[:i], s.Bookmarks[i+1:]...)
	return nil
}

// Append adds imported bookmarks to the end of the store.
// With skipDuplicates, bookmarks whose URL is already present (in the store or
// earlier in the batch) are dropped. Returns counts of added and skipped.
func (s *Store) Append(bookmarks []Bookmark, skipDuplicates bool) (added, skipped int) {
	for _, b := range bookmarks {
		if skipDuplicates && s.HasBookmarkURL(b.URL) {
			skipped++
			continue
		}
		s.AddBookmark(b)
		added++
	}
	return added, skipped
}

// AllTags returns every distinct tag in first-seen order.
func (s *Store) AllTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, b := range s.Bookmarks {
		for _, t := range b.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{Bookmarks: make([]Bookmark, len(s.Bookmarks))}
	for i, b := range s.Bookmarks {
		c.Bookmarks[i] = b.Clone()
	}
	return c
}

func (s *Store) indexOf(id string) int {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return i
		}
	}
	return -1
}

// freshID generates an ID not used by any bookmark in the store.
func (s *Store) freshID() string {
	for {
		id := GenerateUUID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}
