package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	notifService "anoa.com/portalsekolah/internal/modules/notification/service"
	"anoa.com/portalsekolah/internal/modules/order/dto"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	productRepo "anoa.com/portalsekolah/internal/modules/product/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	MsgCreateLoginRequired = "Anda harus login untuk membuat pesanan."
	MsgCreateOnlyStudent   = "Hanya siswa yang dapat menukarkan poin."
	MsgLookupFailed        = "Gagal mendapatkan data pengguna atau produk."
	MsgOutOfStock          = "Maaf, stok produk ini telah habis."
	MsgInsufficientPoints  = "Poin Anda tidak mencukupi. Poin Anda: %d, Harga: %d."
	MsgCreateFailed        = "Terjadi kesalahan saat membuat pesanan."
	MsgCreated             = "Pesanan berhasil dibuat dan sedang menunggu persetujuan admin."
	MsgRateLimited         = "Terlalu banyak permintaan. Coba lagi dalam %d detik."

	MsgManageForbidden   = "Anda tidak memiliki akses untuk memproses pesanan."
	MsgOrderNotFound     = "Pesanan tidak ditemukan."
	MsgAlreadyProcessed  = "Pesanan sudah diproses sebelumnya."
	MsgApproveNoStock    = "Stok produk tidak mencukupi untuk menyetujui pesanan."
	MsgApproveNoPoints   = "Poin siswa tidak mencukupi untuk menyetujui pesanan."
	MsgProcessFailed     = "Terjadi kesalahan saat memproses pesanan."
	MsgApproved          = "Pesanan berhasil disetujui."
	MsgRejected          = "Pesanan berhasil ditolak."
	MsgInvalidStatusList = "Status pesanan tidak valid."

	rateLimitAction    = "create_order"
	cacheKeyPrefix     = "orders:admin:list:"
	cacheGenerationKey = "orders:admin:list:generation"
)

type OrderService interface {
	CreateOrder(ctx context.Context, actor *entity.Actor, productID uint) (*dto.OrderResponse, error)
	ApproveOrder(ctx context.Context, actor *entity.Actor, orderID uint) (*dto.OrderResponse, error)
	RejectOrder(ctx context.Context, actor *entity.Actor, orderID uint) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, actor *entity.Actor, status entity.OrderStatus) ([]dto.OrderResponse, error)
	MyOrders(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error)
	PendingCount(ctx context.Context) (int64, error)
	// DailyCounts buckets orders of the last days calendar days (today included) by local date.
	DailyCounts(ctx context.Context, days int) ([]dto.DailyCount, error)
}

type Options struct {
	RateLimit time.Duration
	CacheTTL  time.Duration
}

type orderService struct {
	repo                orderRepo.OrderRepository
	productRepo         productRepo.ProductRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	opts                Options

	tracer    trace.Tracer
	processed metric.Int64Counter
	now       func() time.Time
}

func NewOrderService(
	repo orderRepo.OrderRepository,
	productRepo productRepo.ProductRepository,
	userRepo userRepo.UserRepository,
	notificationService notifService.NotificationService,
	redisClient *redis.Client,
	opts Options,
) OrderService {
	processed, err := otel.Meter("portalsekolah/order").Int64Counter(
		"orders_processed_total",
		metric.WithDescription("Redemption orders moved out of pending, by resulting status"),
	)
	if err != nil {
		log.Printf("⚠️ Failed to create orders_processed_total counter: %v", err)
	}

	return &orderService{
		repo:                repo,
		productRepo:         productRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		redisClient:         redisClient,
		opts:                opts,
		tracer:              otel.Tracer("portalsekolah/order"),
		processed:           processed,
		now:                 time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actor *entity.Actor, productID uint) (*dto.OrderResponse, error) {
	if actor == nil {
		return nil, apperror.New(http.StatusUnauthorized, MsgCreateLoginRequired, apperror.ErrUnauthorized)
	}
	if !actor.Role.CanRedeem() {
		return nil, apperror.Forbidden(MsgCreateOnlyStudent)
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, actor.ID, rateLimitAction, s.opts.RateLimit)
	if err != nil {
		// fail open
		log.Printf("⚠️ Rate limit check failed for %s: %v", actor.ID, err)
	} else if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, actor.ID, rateLimitAction)
		seconds := int(math.Ceil(ttl.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		return nil, apperror.New(http.StatusTooManyRequests, fmt.Sprintf(MsgRateLimited, seconds), apperror.ErrRateLimitExceeded)
	}

	order, err := s.createOrder(ctx, actor.ID, productID)
	if err != nil {
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redisClient, actor.ID, rateLimitAction); clearErr != nil {
			log.Printf("⚠️ Failed to clear rate limit for %s: %v", actor.ID, clearErr)
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	log.Printf("🛒 Order %d created by %s for product %d", order.ID, actor.ID, productID)

	res := dto.ToOrderResponse(*order)
	return &res, nil
}

// createOrder only checks stock and balance. Nothing is reserved until approval.
func (s *orderService) createOrder(ctx context.Context, userID uuid.UUID, productID uint) (*entity.Order, error) {
	profile, err := s.userRepo.FindProfileByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err)
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, lookupError(err)
	}

	if product.Stock <= 0 {
		return nil, apperror.New(http.StatusUnprocessableEntity, MsgOutOfStock, apperror.ErrPrecondition)
	}
	if profile.Points < product.Price {
		return nil, apperror.New(http.StatusUnprocessableEntity,
			fmt.Sprintf(MsgInsufficientPoints, profile.Points, product.Price), apperror.ErrPrecondition)
	}

	order := &entity.Order{
		UserID:    profile.ID,
		ProductID: product.ID,
		Status:    entity.OrderPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		log.Printf("❌ Failed to create order for %s: %v", userID, err)
		return nil, apperror.Internal(MsgCreateFailed, err)
	}

	order.User = profile
	order.Product = product
	return order, nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(MsgLookupFailed)
	}
	return apperror.Internal(MsgLookupFailed, err)
}

func (s *orderService) ApproveOrder(ctx context.Context, actor *entity.Actor, orderID uint) (*dto.OrderResponse, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "order.approve")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", int64(orderID)),
		attribute.String("actor.id", actor.ID.String()),
	)

	order, err := s.repo.Approve(ctx, orderID)
	if err != nil {
		appErr := mapProcessError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Error())
		if apperror.MapErrorToStatus(appErr) == http.StatusInternalServerError {
			log.Printf("❌ Failed to approve order %d: %v", orderID, err)
		}
		return nil, appErr
	}

	span.SetAttributes(attribute.String("order.status", string(order.Status)))
	s.recordProcessed(ctx, order.Status)
	s.invalidateCache(ctx)
	log.Printf("✅ Order %d approved by %s", order.ID, actor.ID)

	productName := ""
	price := 0
	if order.Product != nil {
		productName = order.Product.Name
		price = order.Product.Price
	}
	s.notify(ctx, order, entity.NotificationOrderApproved,
		fmt.Sprintf("🎁 Pesanan %s kamu telah disetujui. %d poin telah digunakan.", productName, price))

	res := dto.ToOrderResponse(*order)
	return &res, nil
}

func (s *orderService) RejectOrder(ctx context.Context, actor *entity.Actor, orderID uint) (*dto.OrderResponse, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "order.reject")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", int64(orderID)))

	order, err := s.repo.Reject(ctx, orderID)
	if err != nil {
		appErr := mapProcessError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Error())
		if apperror.MapErrorToStatus(appErr) == http.StatusInternalServerError {
			log.Printf("❌ Failed to reject order %d: %v", orderID, err)
		}
		return nil, appErr
	}

	s.recordProcessed(ctx, order.Status)
	s.invalidateCache(ctx)
	log.Printf("🚫 Order %d rejected by %s", order.ID, actor.ID)

	productName := ""
	if order.Product != nil {
		productName = order.Product.Name
	}
	s.notify(ctx, order, entity.NotificationOrderRejected,
		fmt.Sprintf("Pesanan %s kamu ditolak. Poin kamu tidak berubah.", productName))

	res := dto.ToOrderResponse(*order)
	return &res, nil
}

func requireManager(actor *entity.Actor) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	if !actor.Role.CanManageOrders() {
		return apperror.Forbidden(MsgManageForbidden)
	}
	return nil
}

func mapProcessError(err error) error {
	switch {
	case errors.Is(err, orderRepo.ErrOrderNotFound):
		return apperror.NotFound(MsgOrderNotFound)
	case errors.Is(err, orderRepo.ErrOrderNotPending):
		return apperror.Conflict(MsgAlreadyProcessed, err)
	case errors.Is(err, orderRepo.ErrStockExhausted):
		return apperror.Conflict(MsgApproveNoStock, err)
	case errors.Is(err, pointRepo.ErrInsufficientBalance):
		return apperror.Conflict(MsgApproveNoPoints, err)
	case errors.Is(err, orderRepo.ErrProductNotFound), errors.Is(err, pointRepo.ErrProfileNotFound):
		return apperror.NotFound(MsgLookupFailed)
	}
	return apperror.Internal(MsgProcessFailed, err)
}

func (s *orderService) recordProcessed(ctx context.Context, status entity.OrderStatus) {
	if s.processed == nil {
		return
	}
	s.processed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}

func (s *orderService) notify(ctx context.Context, order *entity.Order, kind, message string) {
	if s.notificationService == nil {
		return
	}
	n := &entity.Notification{
		UserID:     order.UserID,
		Type:       kind,
		EntityType: "order",
		EntityID:   fmt.Sprint(order.ID),
		Message:    message,
	}
	if err := s.notificationService.CreateNotification(ctx, n); err != nil {
		log.Printf("Failed to send %s notification for order %d: %v", kind, order.ID, err)
	}
}

func (s *orderService) ListOrders(ctx context.Context, actor *entity.Actor, status entity.OrderStatus) ([]dto.OrderResponse, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperror.BadRequest(MsgInvalidStatusList)
	}

	// The generation is read before the database, so a list that races an invalidation
	// lands under a key that readers have already moved past.
	key, cached := s.cacheKeyFor(ctx, status)
	if cached {
		raw, err := s.redisClient.Get(ctx, key).Result()
		if err == nil {
			var orders []dto.OrderResponse
			if err := json.Unmarshal([]byte(raw), &orders); err == nil {
				return orders, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ Order cache read failed: %v", err)
		}
	}

	orders, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, apperror.Internal("Gagal memuat daftar pesanan.", err)
	}
	res := dto.ToOrderResponses(orders)

	if cached {
		if payload, err := json.Marshal(res); err == nil {
			if err := s.redisClient.Set(ctx, key, payload, s.opts.CacheTTL).Err(); err != nil {
				log.Printf("⚠️ Order cache write failed: %v", err)
			}
		}
	}

	return res, nil
}

func (s *orderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Gagal memuat riwayat pesanan.", err)
	}
	return dto.ToOrderResponses(orders), nil
}

func (s *orderService) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, entity.OrderPending)
}

func (s *orderService) DailyCounts(ctx context.Context, days int) ([]dto.DailyCount, error) {
	if days < 1 {
		days = 7
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(days - 1))

	stamps, err := s.repo.CreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, days)
	for _, ts := range stamps {
		counts[ts.In(now.Location()).Format("2006-01-02")]++
	}

	out := make([]dto.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, dto.DailyCount{Date: day, Total: counts[day]})
	}
	return out, nil
}

func cacheKey(generation int64, status entity.OrderStatus) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s%d:%s", cacheKeyPrefix, generation, status)
}

// cacheKeyFor resolves the key for the current cache generation. It reports false when
// caching is off or the generation cannot be read.
func (s *orderService) cacheKeyFor(ctx context.Context, status entity.OrderStatus) (string, bool) {
	if s.redisClient == nil || s.opts.CacheTTL <= 0 {
		return "", false
	}
	generation, err := s.redisClient.Get(ctx, cacheGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("⚠️ Order cache generation read failed: %v", err)
		return "", false
	}
	return cacheKey(generation, status), true
}

// invalidateCache moves readers to a new generation. Entries of older generations
// are never read again and expire with their TTL.
func (s *orderService) invalidateCache(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		log.Printf("⚠️ Failed to invalidate order cache: %v", err)
	}
}
