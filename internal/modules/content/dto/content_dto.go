package dto

import "time"

type ContentRequest struct {
	Title string `json:"title" form:"title"`
	Body  string `json:"body" form:"body"`
}

type ContentResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	AuthorName  string     `json:"author_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}
