package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/search/dto"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const (
	announcementsIndex = "announcements"
	materialsIndex     = "materials"
	searchLimit        = 20
)

type SearchService interface {
	IndexAnnouncement(content *entity.Content) error
	DeleteAnnouncement(id uint) error
	IndexMaterial(material *entity.Material) error
	DeleteMaterial(id uint) error
	// Search queries both indexes. classID limits materials for students and is ignored for staff.
	Search(ctx context.Context, actor *entity.Actor, classID *uint, query string) (*dto.SearchResult, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewMeiliSearchService returns a search service over client. A nil client gives a
// service that indexes nothing and finds nothing.
func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
	if client != nil {
		s.initIndexes()
	} else {
		log.Println("ℹ️ MEILISEARCH_HOST not set, search disabled")
	}
	return s
}

func toAny(attrs []string) []any {
	out := make([]any, len(attrs))
	for i, v := range attrs {
		out[i] = v
	}
	return out
}

func (s *meiliSearchService) initIndexes() {
	announcementFilter := toAny([]string{"status"})
	if _, err := s.client.Index(announcementsIndex).UpdateFilterableAttributes(&announcementFilter); err != nil {
		log.Printf("Failed to update announcements filterable attributes: %v", err)
	}
	announcementSort := []string{"published_at"}
	if _, err := s.client.Index(announcementsIndex).UpdateSortableAttributes(&announcementSort); err != nil {
		log.Printf("Failed to update announcements sortable attributes: %v", err)
	}

	materialFilter := toAny([]string{"status", "class_id", "scheduled_for"})
	if _, err := s.client.Index(materialsIndex).UpdateFilterableAttributes(&materialFilter); err != nil {
		log.Printf("Failed to update materials filterable attributes: %v", err)
	}
	materialSort := []string{"scheduled_for"}
	if _, err := s.client.Index(materialsIndex).UpdateSortableAttributes(&materialSort); err != nil {
		log.Printf("Failed to update materials sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type announcementDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Status      string `json:"status"`
	PublishedAt int64  `json:"published_at"`
}

type materialDoc struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	ClassID      uint   `json:"class_id"`
	ScheduledFor int64  `json:"scheduled_for"`
}

// cleanText strips markup so only readable text is indexed.
func (s *meiliSearchService) cleanText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	text := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(text), " ")
}

func strPtr(s string) *string {
	return &s
}

func (s *meiliSearchService) IndexAnnouncement(content *entity.Content) error {
	if s.client == nil {
		return nil
	}

	doc := announcementDoc{
		ID:     strconv.FormatUint(uint64(content.ID), 10),
		Title:  content.Title,
		Body:   s.cleanText(content.Body),
		Status: string(content.Status),
	}
	if content.PublishedAt != nil {
		doc.PublishedAt = content.PublishedAt.Unix()
	}

	task, err := s.client.Index(announcementsIndex).AddDocuments([]announcementDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed announcement %d, task id: %d", content.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteAnnouncement(id uint) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(announcementsIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) IndexMaterial(material *entity.Material) error {
	if s.client == nil {
		return nil
	}

	doc := materialDoc{
		ID:           strconv.FormatUint(uint64(material.ID), 10),
		Title:        material.Title,
		Content:      s.cleanText(material.Content),
		Status:       string(material.Status),
		ClassID:      material.ClassID,
		ScheduledFor: material.ScheduledFor.Unix(),
	}

	task, err := s.client.Index(materialsIndex).AddDocuments([]materialDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed material %d, task id: %d", material.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteMaterial(id uint) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(materialsIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// MaterialFilter is the meilisearch filter applied to material hits for a role.
// An empty string means no restriction.
func MaterialFilter(role entity.Role, classID *uint, now time.Time) string {
	switch role {
	case entity.RoleAdmin, entity.RoleGuru:
		return ""
	case entity.RoleSiswa:
		if classID == nil {
			return "class_id = 0"
		}
		return fmt.Sprintf("status = '%s' AND class_id = %d AND scheduled_for <= %d",
			entity.MaterialVisible, *classID, now.Unix())
	}
	return "class_id = 0"
}

type rawHits[T any] struct {
	Hits []T `json:"hits"`
}

func searchInto[T any](index meilisearch.IndexManager, query string, req *meilisearch.SearchRequest) ([]T, error) {
	raw, err := index.SearchRaw(query, req)
	if err != nil {
		return nil, err
	}
	var res rawHits[T]
	if raw != nil {
		if err := json.Unmarshal(*raw, &res); err != nil {
			return nil, err
		}
	}
	if res.Hits == nil {
		res.Hits = []T{}
	}
	return res.Hits, nil
}

func (s *meiliSearchService) Search(ctx context.Context, actor *entity.Actor, classID *uint, query string) (*dto.SearchResult, error) {
	result := &dto.SearchResult{
		Query:         query,
		Announcements: []dto.AnnouncementHit{},
		Materials:     []dto.MaterialHit{},
	}
	if s.client == nil || actor == nil || strings.TrimSpace(query) == "" {
		return result, nil
	}

	announcements, err := searchInto[dto.AnnouncementHit](s.client.Index(announcementsIndex), query, &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("status = '%s'", entity.ContentPublished),
		Limit:  searchLimit,
	})
	if err != nil {
		return nil, err
	}
	result.Announcements = announcements

	req := &meilisearch.SearchRequest{Limit: searchLimit}
	if filter := MaterialFilter(actor.Role, classID, s.now()); filter != "" {
		req.Filter = filter
	}
	materials, err := searchInto[dto.MaterialHit](s.client.Index(materialsIndex), query, req)
	if err != nil {
		return nil, err
	}
	result.Materials = materials

	return result, nil
}
