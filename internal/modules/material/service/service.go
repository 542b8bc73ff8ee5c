package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	"anoa.com/portalsekolah/internal/modules/material/dto"
	materialRepo "anoa.com/portalsekolah/internal/modules/material/repository"
	notifService "anoa.com/portalsekolah/internal/modules/notification/service"
	searchService "anoa.com/portalsekolah/internal/modules/search/service"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	commonDto "anoa.com/portalsekolah/pkg/dto"
	"anoa.com/portalsekolah/pkg/storage"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	MsgTitleMin         = "Judul materi minimal 3 karakter."
	MsgInvalidStatus    = "Status materi harus visible atau hidden."
	MsgInvalidDate      = "Format tanggal tidak valid."
	MsgClassRequired    = "Anda harus memilih kelas."
	MsgFileTooLarge     = "Ukuran file maksimal 20MB."
	MsgCreateFailed     = "Gagal membuat entri materi."
	MsgUploadFailed     = "Gagal mengunggah file lampiran."
	MsgLinkFailed       = "Gagal menautkan file ke materi."
	MsgUpdateFailed     = "Gagal memperbarui materi."
	MsgMaterialNotFound = "Materi tidak ditemukan."
	MsgNoAttachment     = "Materi ini tidak memiliki lampiran."
	MsgFetchFailed      = "Gagal mengambil file dari penyimpanan."
	MsgManageForbidden  = "Anda tidak memiliki akses untuk mengelola materi."
	MsgClassForbidden   = "Anda hanya dapat mengelola materi untuk kelas yang Anda ajar."

	MaxAttachmentSize = 20 * 1024 * 1024
	minTitleLength    = 3
)

// scheduleLayouts are tried in order. Layouts without a zone are read in local time.
var scheduleLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type Options struct {
	SignedURLTTL time.Duration
}

type MaterialService interface {
	Create(ctx context.Context, actor *entity.Actor, req dto.MaterialRequest, file *commonDto.UploadFile) (*dto.MaterialResponse, error)
	Update(ctx context.Context, actor *entity.Actor, id uint, req dto.MaterialRequest, file *commonDto.UploadFile) (*dto.MaterialResponse, error)
	Delete(ctx context.Context, actor *entity.Actor, id uint) error
	// ListForManager returns every material for admin and the materials of taught classes for guru.
	ListForManager(ctx context.Context, actor *entity.Actor) ([]dto.MaterialResponse, error)
	// ListForStudent returns what the student's class may see right now.
	ListForStudent(ctx context.Context, actor *entity.Actor) ([]dto.MaterialResponse, error)
	Detail(ctx context.Context, actor *entity.Actor, id uint) (*dto.MaterialResponse, error)
	Download(ctx context.Context, actor *entity.Actor, id uint) (*dto.Download, error)
	// NotifyDue tells each class about materials that just became visible and returns how many were announced.
	NotifyDue(ctx context.Context) (int, error)
}

type materialService struct {
	repo        materialRepo.MaterialRepository
	classRepo   classRepo.ClassRepository
	userRepo    userRepo.UserRepository
	notifSvc    notifService.NotificationService
	files       storage.FileStorage
	search      searchService.SearchService
	redisClient *redis.Client
	httpClient  *resty.Client
	opts        Options
	now         func() time.Time
}

func NewMaterialService(
	repo materialRepo.MaterialRepository,
	classRepo classRepo.ClassRepository,
	userRepo userRepo.UserRepository,
	notifSvc notifService.NotificationService,
	files storage.FileStorage,
	search searchService.SearchService,
	redisClient *redis.Client,
	httpClient *resty.Client,
	opts Options,
) MaterialService {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	if httpClient == nil {
		httpClient = resty.New().SetTimeout(2 * time.Minute)
	}
	return &materialService{
		repo:        repo,
		classRepo:   classRepo,
		userRepo:    userRepo,
		notifSvc:    notifSvc,
		files:       files,
		search:      search,
		redisClient: redisClient,
		httpClient:  httpClient,
		opts:        opts,
		now:         time.Now,
	}
}

func parseSchedule(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), nil
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.BadRequest(MsgInvalidDate)
}

// validate checks the form in field order and returns the first failure.
func validate(req dto.MaterialRequest, file *commonDto.UploadFile) (*entity.Material, error) {
	title := strings.TrimSpace(req.Title)
	if len([]rune(title)) < minTitleLength {
		return nil, apperror.BadRequest(MsgTitleMin)
	}

	status := entity.MaterialStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return nil, apperror.BadRequest(MsgInvalidStatus)
	}

	scheduledFor, err := parseSchedule(req.ScheduledFor)
	if err != nil {
		return nil, err
	}

	if req.ClassID == 0 {
		return nil, apperror.BadRequest(MsgClassRequired)
	}

	if file != nil && file.Size > MaxAttachmentSize {
		return nil, apperror.BadRequest(MsgFileTooLarge)
	}

	return &entity.Material{
		Title:        title,
		Content:      req.Content,
		Status:       status,
		ScheduledFor: scheduledFor,
		ClassID:      req.ClassID,
	}, nil
}

func (s *materialService) authorizeClass(ctx context.Context, actor *entity.Actor, classID uint) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}

	switch actor.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleGuru:
		ok, err := s.classRepo.IsTeacherOf(ctx, actor.ID, classID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Forbidden(MsgClassForbidden)
		}
		return nil
	case entity.RoleSiswa:
		return apperror.Forbidden(MsgManageForbidden)
	}
	return apperror.Forbidden(MsgManageForbidden)
}

func (s *materialService) requireManager(actor *entity.Actor) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	if !actor.Role.CanManageMaterials() {
		return apperror.Forbidden(MsgManageForbidden)
	}
	return nil
}

func (s *materialService) checkClassExists(ctx context.Context, classID uint) error {
	if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.BadRequest(MsgClassRequired)
		}
		return err
	}
	return nil
}

func attachmentPath(id uint, fileName string) string {
	return fmt.Sprintf("materials/%d/attachment%s", id, strings.ToLower(filepath.Ext(fileName)))
}

// attach uploads the file under the material's fixed path and links it to the row.
func (s *materialService) attach(ctx context.Context, material *entity.Material, file *commonDto.UploadFile) error {
	if s.files == nil {
		return apperror.Internal(MsgUploadFailed, errors.New("file storage is not configured"))
	}

	p := attachmentPath(material.ID, file.FileName)
	if _, err := s.files.UploadFile(ctx, file.Reader, p); err != nil {
		return apperror.Internal(MsgUploadFailed, err)
	}
	if err := s.repo.SetAttachment(ctx, material.ID, p, file.FileName); err != nil {
		return apperror.Internal(MsgLinkFailed, err)
	}

	if material.HasAttachment() && *material.AttachmentPath != p {
		if err := s.files.DeleteFile(ctx, *material.AttachmentPath); err != nil {
			log.Printf("Failed to delete old attachment %s: %v", *material.AttachmentPath, err)
		}
	}
	material.AttachmentPath = &p
	material.AttachmentName = &file.FileName
	s.forgetSignedURL(ctx, material.ID)
	return nil
}

func (s *materialService) index(material *entity.Material) {
	if err := s.search.IndexMaterial(material); err != nil {
		log.Printf("Failed to index material %d: %v", material.ID, err)
	}
}

func (s *materialService) reload(ctx context.Context, id uint) (*dto.MaterialResponse, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(material)
	res := dto.ToMaterialResponse(*material)
	return &res, nil
}

func (s *materialService) Create(ctx context.Context, actor *entity.Actor, req dto.MaterialRequest, file *commonDto.UploadFile) (*dto.MaterialResponse, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}

	material, err := validate(req, file)
	if err != nil {
		return nil, err
	}
	if err := s.checkClassExists(ctx, material.ClassID); err != nil {
		return nil, err
	}
	if err := s.authorizeClass(ctx, actor, material.ClassID); err != nil {
		return nil, err
	}

	material.AuthorID = actor.ID
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, apperror.Internal(MsgCreateFailed, err)
	}

	if file != nil && file.Size > 0 {
		if err := s.attach(ctx, material, file); err != nil {
			return nil, err
		}
	}

	log.Printf("📚 Material %d (%s) created for class %d by %s", material.ID, material.Title, material.ClassID, actor.ID)
	return s.reload(ctx, material.ID)
}

func (s *materialService) findManaged(ctx context.Context, actor *entity.Actor, id uint) (*entity.Material, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgMaterialNotFound)
		}
		return nil, err
	}
	if err := s.authorizeClass(ctx, actor, existing.ClassID); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *materialService) Update(ctx context.Context, actor *entity.Actor, id uint, req dto.MaterialRequest, file *commonDto.UploadFile) (*dto.MaterialResponse, error) {
	existing, err := s.findManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	material, err := validate(req, file)
	if err != nil {
		return nil, err
	}
	if material.ClassID != existing.ClassID {
		if err := s.checkClassExists(ctx, material.ClassID); err != nil {
			return nil, err
		}
		if err := s.authorizeClass(ctx, actor, material.ClassID); err != nil {
			return nil, err
		}
	}

	material.ID = id
	resetNotice := !material.ScheduledFor.Equal(existing.ScheduledFor) || material.ClassID != existing.ClassID
	if err := s.repo.Update(ctx, material, resetNotice); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgMaterialNotFound)
		}
		return nil, apperror.Internal(MsgUpdateFailed, err)
	}

	if file != nil && file.Size > 0 {
		if err := s.attach(ctx, existing, file); err != nil {
			return nil, err
		}
	}

	return s.reload(ctx, id)
}

func (s *materialService) Delete(ctx context.Context, actor *entity.Actor, id uint) error {
	existing, err := s.findManaged(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(MsgMaterialNotFound)
		}
		return apperror.Internal("Gagal menghapus materi.", err)
	}

	if existing.HasAttachment() && s.files != nil {
		if err := s.files.DeleteFile(ctx, *existing.AttachmentPath); err != nil {
			log.Printf("Failed to delete attachment of material %d: %v", id, err)
		}
	}
	s.forgetSignedURL(ctx, id)

	if err := s.search.DeleteMaterial(id); err != nil {
		log.Printf("Failed to remove material %d from index: %v", id, err)
	}
	return nil
}

func (s *materialService) ListForManager(ctx context.Context, actor *entity.Actor) ([]dto.MaterialResponse, error) {
	if err := s.requireManager(actor); err != nil {
		return nil, err
	}

	var (
		materials []entity.Material
		err       error
	)
	switch actor.Role {
	case entity.RoleAdmin:
		materials, err = s.repo.FindAll(ctx)
	case entity.RoleGuru:
		classes, cerr := s.classRepo.FindByTeacher(ctx, actor.ID)
		if cerr != nil {
			return nil, cerr
		}
		ids := make([]uint, 0, len(classes))
		for _, c := range classes {
			ids = append(ids, c.ID)
		}
		materials, err = s.repo.FindByClasses(ctx, ids)
	case entity.RoleSiswa:
		return nil, apperror.Forbidden(MsgManageForbidden)
	}
	if err != nil {
		return nil, err
	}

	return dto.ToMaterialResponses(materials), nil
}

func (s *materialService) studentClass(ctx context.Context, actor *entity.Actor) (*uint, error) {
	profile, err := s.userRepo.FindProfileByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	return profile.ClassID, nil
}

func (s *materialService) ListForStudent(ctx context.Context, actor *entity.Actor) ([]dto.MaterialResponse, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	classID, err := s.studentClass(ctx, actor)
	if err != nil {
		return nil, err
	}
	if classID == nil {
		return []dto.MaterialResponse{}, nil
	}

	materials, err := s.repo.FindVisibleForClass(ctx, *classID, s.now())
	if err != nil {
		return nil, err
	}
	return dto.ToMaterialResponses(materials), nil
}

// readable loads a material the actor may open. Students get not-found for anything
// outside their class or not yet visible.
func (s *materialService) readable(ctx context.Context, actor *entity.Actor, id uint) (*entity.Material, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgMaterialNotFound)
		}
		return nil, err
	}

	switch actor.Role {
	case entity.RoleAdmin, entity.RoleGuru:
		if err := s.authorizeClass(ctx, actor, material.ClassID); err != nil {
			return nil, err
		}
	case entity.RoleSiswa:
		classID, err := s.studentClass(ctx, actor)
		if err != nil {
			return nil, err
		}
		if classID == nil || *classID != material.ClassID || !material.VisibleAt(s.now()) {
			return nil, apperror.NotFound(MsgMaterialNotFound)
		}
	default:
		return nil, apperror.NotFound(MsgMaterialNotFound)
	}

	return material, nil
}

func (s *materialService) Detail(ctx context.Context, actor *entity.Actor, id uint) (*dto.MaterialResponse, error) {
	material, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	res := dto.ToMaterialResponse(*material)
	return &res, nil
}

func signedURLKey(id uint) string {
	return fmt.Sprintf("material:signed_url:%d", id)
}

// signedURL reuses a cached URL while it has at least a tenth of its lifetime left.
func (s *materialService) signedURL(ctx context.Context, material *entity.Material) (string, error) {
	key := signedURLKey(material.ID)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		} else if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Failed to read signed url cache: %v", err)
		}
	}

	url, err := s.files.SignedURL(ctx, *material.AttachmentPath, s.opts.SignedURLTTL)
	if err != nil {
		return "", err
	}

	if s.redisClient != nil {
		ttl := s.opts.SignedURLTTL - s.opts.SignedURLTTL/10
		if err := s.redisClient.Set(ctx, key, url, ttl).Err(); err != nil {
			log.Printf("Failed to cache signed url: %v", err)
		}
	}
	return url, nil
}

func (s *materialService) forgetSignedURL(ctx context.Context, id uint) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, signedURLKey(id)).Err(); err != nil {
		log.Printf("Failed to drop signed url cache: %v", err)
	}
}

func (s *materialService) Download(ctx context.Context, actor *entity.Actor, id uint) (*dto.Download, error) {
	material, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !material.HasAttachment() {
		return nil, apperror.NotFound(MsgNoAttachment)
	}
	if s.files == nil {
		return nil, apperror.Internal(MsgFetchFailed, errors.New("file storage is not configured"))
	}

	url, err := s.signedURL(ctx, material)
	if err != nil {
		return nil, apperror.NotFound(MsgNoAttachment)
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, apperror.Internal(MsgFetchFailed, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		if body != nil {
			_ = body.Close()
		}
		s.forgetSignedURL(ctx, id)
		if resp.StatusCode() == http.StatusNotFound {
			return nil, apperror.NotFound(MsgNoAttachment)
		}
		return nil, apperror.Internal(MsgFetchFailed, fmt.Errorf("storage responded %d", resp.StatusCode()))
	}

	name := path.Base(*material.AttachmentPath)
	if material.AttachmentName != nil && *material.AttachmentName != "" {
		name = *material.AttachmentName
	}

	length := int64(-1)
	if v := resp.Header().Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			length = n
		}
	}

	return &dto.Download{
		Body:          body,
		ContentType:   resp.Header().Get("Content-Type"),
		ContentLength: length,
		FileName:      name,
	}, nil
}

func (s *materialService) NotifyDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.FindDueForNotice(ctx, now)
	if err != nil {
		return 0, err
	}

	announced := 0
	for _, m := range due {
		claimed, err := s.repo.MarkNotified(ctx, m.ID, now)
		if err != nil {
			return announced, err
		}
		if !claimed {
			continue
		}

		students, err := s.userRepo.ListByClass(ctx, m.ClassID)
		if err != nil {
			return announced, err
		}
		ids := make([]uuid.UUID, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}

		err = s.notifSvc.Broadcast(ctx, ids, entity.Notification{
			Type:       entity.NotificationMaterialOpened,
			EntityType: "material",
			EntityID:   strconv.FormatUint(uint64(m.ID), 10),
			Message:    fmt.Sprintf("📚 Materi baru tersedia: %s", m.Title),
		})
		if err != nil {
			log.Printf("Failed to notify class %d about material %d: %v", m.ClassID, m.ID, err)
			continue
		}
		announced++
	}

	return announced, nil
}
