package domain

import "time"

type BlogCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Blog struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image"`
	AuthorID    string    `json:"author_id"`
	CategoryIDs []string  `json:"category_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BlogSummary is a list entry for the public blog index.
type BlogSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Image      string    `json:"image"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt"`
	AuthorName string    `json:"author_name"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BlogDetail struct {
	Blog
	AuthorName string         `json:"author_name"`
	Categories []BlogCategory `json:"categories"`
}
