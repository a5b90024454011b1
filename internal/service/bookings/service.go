package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/catalog"
	feeRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/feeledger"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/integrations/payservice"
	"github.com/m04kA/SMC-WashService/internal/service/bookings/models"
)

// Config параметры жизненного цикла бронирований
type Config struct {
	// NoShowGraceMinutes льготный период после начала слота, в течение
	// которого неявку фиксировать нельзя
	NoShowGraceMinutes int
	// BufferMinutes обязательный простой между бронированиями одного ресурса
	BufferMinutes int
}

// Service управляет жизненным циклом бронирования: переходы статусов,
// начисление штрафов и доплат, оценка заказа и состав услуг.
//
// Каждый переход выполняется в транзакции по схеме "прочитать с блокировкой,
// проверить статус, применить". Побочные эффекты (уведомления, платежи,
// события, инвалидация кеша) выполняются после фиксации транзакции и никогда
// не откатывают переход.
type Service struct {
	bookingRepo BookingRepository
	feeRepo     FeeRepository
	catalogRepo CatalogRepository
	pricing     PricingCalculator
	txManager   TransactionManager
	notifier    NotificationClient
	payments    PaymentClient
	events      EventPublisher
	cache       AvailabilityCache
	clock       TimeProvider
	cfg         Config
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepository BookingRepository,
	feeRepository FeeRepository,
	catalogRepository CatalogRepository,
	pricing PricingCalculator,
	txManager TransactionManager,
	notifier NotificationClient,
	payments PaymentClient,
	eventPublisher EventPublisher,
	cache AvailabilityCache,
	clock TimeProvider,
	cfg Config,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepository,
		feeRepo:     feeRepository,
		catalogRepo: catalogRepository,
		pricing:     pricing,
		txManager:   txManager,
		notifier:    notifier,
		payments:    payments,
		events:      eventPublisher,
		cache:       cache,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь может видеть только своё бронирование
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64) (*models.BookingResponse, error) {
	booking, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != actorID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actorID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCustomer(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetFees возвращает начисления по бронированию
func (s *Service) GetFees(ctx context.Context, bookingID int64, actorID int64) ([]*models.FeeResponse, error) {
	booking, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != actorID {
		return nil, ErrAccessDenied
	}

	fees, err := s.feeRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetFees: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetFees - repository error: %v", ErrInternal, err)
	}

	out := make([]*models.FeeResponse, 0, len(fees))
	for _, f := range fees {
		out = append(out, models.FromDomainFee(f))
	}
	return out, nil
}

// Confirm подтверждает бронирование: PENDING -> CONFIRMED
// С этого момента назначенный ресурс становится видимым наружу
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	now := s.clock.Now()

	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if err := b.EnsureStatus("confirm", domain.StatusPending); err != nil {
			return err
		}
		if err := s.bookingRepo.Confirm(txCtx, bookingID, req.ActorID, now); err != nil {
			return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
		}

		b.Status = domain.StatusConfirmed
		b.ConfirmedBy = &req.ActorID
		b.ConfirmedAt = &now
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Confirm: booking id=%d confirmed by user=%d", bookingID, req.ActorID)
	s.notify(ctx, booking, notifyservice.KindBookingConfirmed, "")
	s.publish(ctx, events.EventBookingConfirmed, booking)
	return models.FromDomainBooking(booking), nil
}

// Start начинает обслуживание: CONFIRMED -> IN_PROGRESS
func (s *Service) Start(ctx context.Context, bookingID int64, req *models.StartBookingRequest) (*models.BookingResponse, error) {
	now := s.clock.Now()

	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if err := b.EnsureStatus("start", domain.StatusConfirmed); err != nil {
			return err
		}
		if err := s.bookingRepo.Start(txCtx, bookingID, req.ActorID, now); err != nil {
			return fmt.Errorf("%w: Start - repository error: %v", ErrInternal, err)
		}

		b.Status = domain.StatusInProgress
		b.StartedBy = &req.ActorID
		b.StartedAt = &now
		b.ActualStartAt = &now
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Start: booking id=%d started by user=%d", bookingID, req.ActorID)
	s.publish(ctx, events.EventBookingStarted, booking)
	return models.FromDomainBooking(booking), nil
}

// Complete завершает обслуживание: IN_PROGRESS -> COMPLETED
// Превышение расчётной длительности оплачивается по поминутной ставке
func (s *Service) Complete(ctx context.Context, bookingID int64, req *models.CompleteBookingRequest) (*models.BookingResponse, error) {
	endAt := s.clock.Now()
	if req.ActualEndAt != nil {
		endAt = *req.ActualEndAt
	}

	var booking *domain.Booking
	var overtimeFee float64
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if err := b.EnsureStatus("complete", domain.StatusInProgress); err != nil {
			return err
		}
		if b.ActualStartAt != nil && endAt.Before(*b.ActualStartAt) {
			return fmt.Errorf("%w: actual end time is before actual start time", ErrInvalidInput)
		}
		if err := s.bookingRepo.Complete(txCtx, bookingID, endAt); err != nil {
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}

		b.Status = domain.StatusCompleted
		b.CompletedAt = &endAt
		b.ActualEndAt = &endAt

		overtimeFee = s.pricing.OvertimeFee(b.DurationMinutes, b.ActualDurationMinutes())
		if overtimeFee > 0 {
			if err := s.recordFee(txCtx, b.ID, domain.FeeOvertime, overtimeFee); err != nil {
				return err
			}
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Complete: booking id=%d completed, overtime_fee=%.2f", bookingID, overtimeFee)
	s.chargeFee(ctx, booking, payservice.ChargeOvertimeFee, overtimeFee)
	s.notify(ctx, booking, notifyservice.KindBookingCompleted, "")
	s.publish(ctx, events.EventBookingCompleted, booking)
	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование: PENDING|CONFIRMED -> CANCELLED
// Штраф зависит от времени уведомления; слот освобождается немедленно
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	now := s.clock.Now()

	var booking *domain.Booking
	var cancellationFee float64
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != req.ActorID {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.ActorID, bookingID)
			return ErrAccessDenied
		}
		if err := b.EnsureStatus("cancel", domain.StatusPending, domain.StatusConfirmed); err != nil {
			return err
		}
		if err := s.bookingRepo.Cancel(txCtx, bookingID, req.ActorID, req.CancellationReason, now); err != nil {
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		b.Status = domain.StatusCancelled
		b.CancelledBy = &req.ActorID
		b.CancelledAt = &now
		b.CancellationReason = &req.CancellationReason

		cancellationFee = s.pricing.CancellationFee(b.EstimatedPrice, b.ScheduledAt, now)
		if cancellationFee > 0 {
			if err := s.recordFee(txCtx, b.ID, domain.FeeCancellation, cancellationFee); err != nil {
				return err
			}
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: booking id=%d cancelled by user=%d, fee=%.2f", bookingID, req.ActorID, cancellationFee)
	s.chargeFee(ctx, booking, payservice.ChargeCancellationFee, cancellationFee)
	s.notify(ctx, booking, notifyservice.KindBookingCancelled, "")
	s.publish(ctx, events.EventBookingCancelled, booking)
	s.invalidateDate(booking)
	return models.FromDomainBooking(booking), nil
}

// MarkNoShow фиксирует неявку клиента: CONFIRMED -> NO_SHOW
// Допустимо только после истечения льготного периода от начала слота
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64, req *models.MarkNoShowRequest) (*models.BookingResponse, error) {
	now := s.clock.Now()

	var booking *domain.Booking
	var noShowFee float64
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if err := b.EnsureStatus("no_show", domain.StatusConfirmed); err != nil {
			return err
		}

		grace := time.Duration(s.cfg.NoShowGraceMinutes) * time.Minute
		if now.Before(b.ScheduledAt.Add(grace)) {
			s.logger.Warn("MarkNoShow: grace period not elapsed for booking id=%d, scheduled_at=%s", bookingID, b.ScheduledAt.Format(time.RFC3339))
			return ErrGraceNotElapsed
		}

		if err := s.bookingRepo.MarkNoShow(txCtx, bookingID, req.ActorID, req.Reason, now); err != nil {
			return fmt.Errorf("%w: MarkNoShow - repository error: %v", ErrInternal, err)
		}

		b.Status = domain.StatusNoShow
		b.NoShowBy = &req.ActorID
		b.NoShowAt = &now

		noShowFee = s.pricing.NoShowFee(b.EstimatedPrice)
		if noShowFee > 0 {
			if err := s.recordFee(txCtx, b.ID, domain.FeeNoShow, noShowFee); err != nil {
				return err
			}
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("MarkNoShow: booking id=%d marked no-show by user=%d, fee=%.2f", bookingID, req.ActorID, noShowFee)
	s.chargeFee(ctx, booking, payservice.ChargeNoShowFee, noShowFee)
	s.notify(ctx, booking, notifyservice.KindBookingNoShow, "")
	s.publish(ctx, events.EventBookingNoShow, booking)
	s.invalidateDate(booking)
	return models.FromDomainBooking(booking), nil
}

// Rate выставляет оценку выполненному заказу
// Оценка ставится один раз; низкая оценка поднимает алерт менеджменту
func (s *Service) Rate(ctx context.Context, bookingID int64, req *models.RateBookingRequest) (*models.BookingResponse, error) {
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}
	if req.Feedback != nil && len(*req.Feedback) > domain.MaxFeedbackLength {
		return nil, fmt.Errorf("%w: feedback too long", ErrInvalidInput)
	}

	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != req.ActorID {
			s.logger.Warn("Rate: access denied for user=%d to booking id=%d", req.ActorID, bookingID)
			return ErrAccessDenied
		}
		if err := b.EnsureStatus("rate", domain.StatusCompleted); err != nil {
			return err
		}
		if b.HasRating() {
			return ErrAlreadyRated
		}
		if err := s.bookingRepo.SetRating(txCtx, bookingID, req.Rating, req.Feedback); err != nil {
			return fmt.Errorf("%w: Rate - repository error: %v", ErrInternal, err)
		}

		b.Rating = &req.Rating
		b.Feedback = req.Feedback
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rate: booking id=%d rated %d by user=%d", bookingID, req.Rating, req.ActorID)
	s.publish(ctx, events.EventBookingRated, booking)
	if req.Rating <= domain.LowRatingThreshold {
		s.publish(ctx, events.EventLowRatingAlert, booking)
		s.notify(ctx, booking, notifyservice.KindLowRatingAlert, fmt.Sprintf("booking %d rated %d", bookingID, req.Rating))
	}
	return models.FromDomainBooking(booking), nil
}

// AddServices добавляет услуги в заказ
// Доступно только до подтверждения; итоговая длительность не должна
// конфликтовать с соседними бронированиями ресурса
func (s *Service) AddServices(ctx context.Context, bookingID int64, req *models.AddServicesRequest) (*models.BookingResponse, error) {
	if len(req.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: service IDs are required", ErrInvalidInput)
	}

	var booking *domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != req.ActorID {
			return ErrAccessDenied
		}
		if err := b.EnsureStatus("add_services", domain.StatusPending); err != nil {
			return err
		}

		services, err := s.catalogRepo.GetByIDs(txCtx, req.ServiceIDs)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: AddServices - catalog error: %v", ErrInternal, err)
		}

		items := mergeLineItems(b.Items, services)
		if len(items) > domain.MaxLineItems {
			return fmt.Errorf("%w: at most %d line items allowed", ErrTooManyLineItems, domain.MaxLineItems)
		}

		b.Items = items
		b.RecalculateTotals()

		if err := s.checkExtendedWindow(txCtx, b); err != nil {
			return err
		}

		if err := s.bookingRepo.ReplaceLineItems(txCtx, bookingID, b.Items, b.DurationMinutes, b.EstimatedPrice); err != nil {
			return fmt.Errorf("%w: AddServices - repository error: %v", ErrInternal, err)
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddServices: booking id=%d now has %d line items, duration=%d", bookingID, len(booking.Items), booking.DurationMinutes)
	s.invalidateDate(booking)
	return models.FromDomainBooking(booking), nil
}

// RemoveService удаляет позицию из заказа
// Заказ всегда сохраняет хотя бы одну позицию
func (s *Service) RemoveService(ctx context.Context, bookingID int64, req *models.RemoveServiceRequest) (*models.BookingResponse, error) {
	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.fetch(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != req.ActorID {
			return ErrAccessDenied
		}
		if err := b.EnsureStatus("remove_service", domain.StatusPending); err != nil {
			return err
		}

		idx := -1
		for i, item := range b.Items {
			if item.ID == req.LineItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrLineItemNotFound
		}
		if len(b.Items) <= domain.MinLineItems {
			return ErrLastLineItem
		}

		b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
		b.RecalculateTotals()

		if err := s.bookingRepo.ReplaceLineItems(txCtx, bookingID, b.Items, b.DurationMinutes, b.EstimatedPrice); err != nil {
			return fmt.Errorf("%w: RemoveService - repository error: %v", ErrInternal, err)
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RemoveService: removed line item %d from booking id=%d", req.LineItemID, bookingID)
	s.invalidateDate(booking)
	return models.FromDomainBooking(booking), nil
}

// Вспомогательные методы

func (s *Service) fetch(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

// recordFee добавляет запись в журнал начислений
// Повторное начисление того же типа молча игнорируется
func (s *Service) recordFee(ctx context.Context, bookingID int64, kind domain.FeeKind, amount float64) error {
	_, err := s.feeRepo.Insert(ctx, &domain.FeeLedgerEntry{
		BookingID: bookingID,
		Kind:      kind,
		Amount:    amount,
	})
	if err != nil {
		if errors.Is(err, feeRepo.ErrDuplicateFee) {
			s.logger.Warn("Fee %s already recorded for booking id=%d", kind, bookingID)
			return nil
		}
		return fmt.Errorf("%w: record fee: %v", ErrInternal, err)
	}
	return nil
}

// checkExtendedWindow проверяет, что увеличенное окно не задевает соседние
// бронирования на том же ресурсе с учётом буфера
func (s *Service) checkExtendedWindow(ctx context.Context, b *domain.Booking) error {
	if b.ResourceID == nil {
		return nil
	}

	buffer := time.Duration(s.cfg.BufferMinutes) * time.Minute
	window := b.Window()

	neighbours, err := s.bookingRepo.GetActiveByResources(ctx, []int64{*b.ResourceID}, window.Start.Add(-buffer), window.End().Add(buffer))
	if err != nil {
		return fmt.Errorf("%w: check extended window: %v", ErrInternal, err)
	}

	for _, other := range neighbours {
		if other.ID == b.ID {
			continue
		}
		if window.ConflictsWithBuffer(other.Window(), buffer) {
			return ErrWindowConflict
		}
	}
	return nil
}

func (s *Service) chargeFee(ctx context.Context, b *domain.Booking, kind payservice.ChargeKind, amount float64) {
	if amount <= 0 {
		return
	}
	if b.PaymentReference == nil {
		s.logger.Warn("No payment reference for booking id=%d, %s %.2f left uncollected", b.ID, kind, amount)
		return
	}

	_, err := s.payments.Charge(ctx, payservice.ChargeRequest{
		BookingID:        b.ID,
		PaymentReference: *b.PaymentReference,
		Kind:             kind,
		Amount:           amount,
	})
	if err != nil {
		s.logger.Error("Failed to charge %s %.2f for booking id=%d: %v", kind, amount, b.ID, err)
		s.publish(ctx, events.EventPaymentFailed, b)
	}
}

func (s *Service) notify(ctx context.Context, b *domain.Booking, kind notifyservice.NotificationKind, message string) {
	recipientID := b.CustomerID
	if kind == notifyservice.KindLowRatingAlert {
		recipientID = 0
	}

	err := s.notifier.Notify(ctx, notifyservice.Notification{
		BookingID:   b.ID,
		Kind:        kind,
		RecipientID: recipientID,
		Message:     message,
	})
	if err != nil {
		s.logger.Warn("Failed to send %s notification for booking id=%d: %v", kind, b.ID, err)
	}
}

func (s *Service) publish(ctx context.Context, name string, b *domain.Booking) {
	payload := map[string]any{
		"customer_id":  b.CustomerID,
		"status":       b.Status.String(),
		"scheduled_at": b.ScheduledAt,
	}
	if b.Rating != nil {
		payload["rating"] = *b.Rating
	}
	if err := s.events.Publish(ctx, name, b.ID, payload); err != nil {
		s.logger.Warn("Failed to publish %s for booking id=%d: %v", name, b.ID, err)
	}
}

func (s *Service) invalidateDate(b *domain.Booking) {
	s.cache.Invalidate(b.ScheduledAt.Format(domain.DateFormat))
}

// mergeLineItems добавляет услуги к текущим позициям, увеличивая количество
// для уже присутствующих услуг
func mergeLineItems(items []domain.ServiceLineItem, services []*domain.WashService) []domain.ServiceLineItem {
	merged := make([]domain.ServiceLineItem, len(items))
	copy(merged, items)

	for _, svc := range services {
		found := false
		for i := range merged {
			if merged[i].ServiceID == svc.ID {
				merged[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, domain.ServiceLineItem{
				ServiceID:           svc.ID,
				Name:                svc.Name,
				UnitPrice:           svc.Price,
				UnitDurationMinutes: svc.DurationMinutes,
				Quantity:            1,
			})
		}
	}
	return merged
}
