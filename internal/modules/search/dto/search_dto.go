package dto

type AnnouncementHit struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	PublishedAt int64  `json:"published_at"`
}

type MaterialHit struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	ClassID      uint   `json:"class_id"`
	ScheduledFor int64  `json:"scheduled_for"`
}

type SearchResult struct {
	Query         string            `json:"query"`
	Announcements []AnnouncementHit `json:"announcements"`
	Materials     []MaterialHit     `json:"materials"`
}
