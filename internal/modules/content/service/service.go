package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/content/dto"
	contentRepo "anoa.com/portalsekolah/internal/modules/content/repository"
	searchService "anoa.com/portalsekolah/internal/modules/search/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const (
	MsgTitleRequired   = "Judul tidak boleh kosong."
	MsgContentNotFound = "Pengumuman tidak ditemukan."
	MsgContentFailed   = "Gagal menyimpan pengumuman."
	MsgContentAdmin    = "Hanya admin yang dapat mengelola pengumuman."

	RecentLimit = 5
)

type ContentService interface {
	Add(ctx context.Context, actor *entity.Actor, req dto.ContentRequest) (*dto.ContentResponse, error)
	Edit(ctx context.Context, actor *entity.Actor, id uint, req dto.ContentRequest) (*dto.ContentResponse, error)
	Delete(ctx context.Context, actor *entity.Actor, id uint) error
	List(ctx context.Context) ([]dto.ContentResponse, error)
	Recent(ctx context.Context) ([]dto.ContentResponse, error)
}

type contentService struct {
	repo      contentRepo.ContentRepository
	search    searchService.SearchService
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewContentService(repo contentRepo.ContentRepository, search searchService.SearchService) ContentService {
	return &contentService{
		repo:      repo,
		search:    search,
		sanitizer: bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

func toResponse(c entity.Content) dto.ContentResponse {
	res := dto.ContentResponse{
		ID:          c.ID,
		Title:       c.Title,
		Body:        c.Body,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		PublishedAt: c.PublishedAt,
	}
	if c.Author != nil {
		res.AuthorName = c.Author.FullName
	}
	return res
}

func toResponses(contents []entity.Content) []dto.ContentResponse {
	out := make([]dto.ContentResponse, 0, len(contents))
	for _, c := range contents {
		out = append(out, toResponse(c))
	}
	return out
}

func requireAdmin(actor *entity.Actor) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	switch actor.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleGuru, entity.RoleSiswa:
		return apperror.Forbidden(MsgContentAdmin)
	}
	return apperror.Forbidden(MsgContentAdmin)
}

func (s *contentService) clean(req dto.ContentRequest) (string, string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", "", apperror.BadRequest(MsgTitleRequired)
	}
	return title, s.sanitizer.Sanitize(req.Body), nil
}

func (s *contentService) index(content *entity.Content) {
	if err := s.search.IndexAnnouncement(content); err != nil {
		log.Printf("Failed to index announcement %d: %v", content.ID, err)
	}
}

// Add publishes the announcement immediately.
func (s *contentService) Add(ctx context.Context, actor *entity.Actor, req dto.ContentRequest) (*dto.ContentResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	title, body, err := s.clean(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	content := &entity.Content{
		Title:       title,
		Body:        body,
		Status:      entity.ContentPublished,
		AuthorID:    actor.ID,
		PublishedAt: &now,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		return nil, apperror.Internal(MsgContentFailed, err)
	}

	s.index(content)
	log.Printf("📢 Announcement %d published by %s", content.ID, actor.ID)

	res := toResponse(*content)
	return &res, nil
}

func (s *contentService) Edit(ctx context.Context, actor *entity.Actor, id uint, req dto.ContentRequest) (*dto.ContentResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	title, body, err := s.clean(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &entity.Content{ID: id, Title: title, Body: body}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgContentNotFound)
		}
		return nil, apperror.Internal(MsgContentFailed, err)
	}

	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(content)

	res := toResponse(*content)
	return &res, nil
}

func (s *contentService) Delete(ctx context.Context, actor *entity.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(MsgContentNotFound)
		}
		return apperror.Internal("Gagal menghapus pengumuman.", err)
	}

	if err := s.search.DeleteAnnouncement(id); err != nil {
		log.Printf("Failed to remove announcement %d from index: %v", id, err)
	}
	return nil
}

func (s *contentService) List(ctx context.Context) ([]dto.ContentResponse, error) {
	contents, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(contents), nil
}

func (s *contentService) Recent(ctx context.Context) ([]dto.ContentResponse, error) {
	contents, err := s.repo.FindRecentPublished(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	return toResponses(contents), nil
}
