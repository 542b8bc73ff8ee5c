package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/product/dto"
	productRepo "anoa.com/portalsekolah/internal/modules/product/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/database"
	"gorm.io/gorm"
)

const (
	MsgInvalidProduct  = "Data produk tidak lengkap atau tidak valid."
	MsgProductNotFound = "Produk tidak ditemukan."
	MsgProductFailed   = "Gagal menyimpan data produk."
	MsgProductInUse    = "Produk tidak dapat dihapus karena masih memiliki pesanan."
	MsgAdminOnly       = "Hanya admin yang dapat mengelola produk."
)

type ProductService interface {
	Create(ctx context.Context, actor *entity.Actor, req dto.ProductRequest) (*entity.Product, error)
	Update(ctx context.Context, actor *entity.Actor, id uint, req dto.ProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, actor *entity.Actor, id uint) error
	List(ctx context.Context) ([]entity.Product, error)
	Catalog(ctx context.Context) ([]entity.Product, error)
}

type productService struct {
	repo productRepo.ProductRepository
}

func NewProductService(repo productRepo.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func requireAdmin(actor *entity.Actor) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	if actor.Role != entity.RoleAdmin {
		return apperror.Forbidden(MsgAdminOnly)
	}
	return nil
}

func normalize(req dto.ProductRequest) (dto.ProductRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price <= 0 || req.Stock < 0 {
		return req, apperror.BadRequest(MsgInvalidProduct)
	}
	return req, nil
}

func (s *productService) Create(ctx context.Context, actor *entity.Actor, req dto.ProductRequest) (*entity.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{Name: req.Name, Price: req.Price, Stock: req.Stock}
	if err := s.repo.Create(ctx, product); err != nil {
		if database.IsCheckViolation(err) {
			return nil, apperror.BadRequest(MsgInvalidProduct)
		}
		return nil, apperror.Internal(MsgProductFailed, err)
	}

	log.Printf("🛍️ Product %d (%s) created by %s", product.ID, product.Name, actor.ID)
	return product, nil
}

func (s *productService) Update(ctx context.Context, actor *entity.Actor, id uint, req dto.ProductRequest) (*entity.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{ID: id, Name: req.Name, Price: req.Price, Stock: req.Stock}
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgProductNotFound)
		}
		if database.IsCheckViolation(err) {
			return nil, apperror.BadRequest(MsgInvalidProduct)
		}
		return nil, apperror.Internal(MsgProductFailed, err)
	}

	return s.repo.FindByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, actor *entity.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(MsgProductNotFound)
		}
		if database.IsForeignKeyViolation(err) {
			return apperror.Conflict(MsgProductInUse, err)
		}
		return apperror.Internal("Gagal menghapus produk.", err)
	}
	return nil
}

func (s *productService) List(ctx context.Context) ([]entity.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *productService) Catalog(ctx context.Context) ([]entity.Product, error) {
	return s.repo.FindAvailable(ctx)
}
