package domain

import "time"

// BlogPost — запись блога витрины.
type BlogPost struct {
	ID          string
	Slug        string
	Title       string
	Excerpt     string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func (b *BlogPost) LastModified() time.Time {
	return lastModified(b.UpdatedAt, b.CreatedAt)
}
