package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addServicesHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/add_services"
	cancelBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/cancel_booking"
	completeBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/get_booking"
	getBookingFeesHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/get_booking_fees"
	getCustomerBookingsHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/get_customer_bookings"
	markNoShowHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/mark_no_show"
	rateBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/rate_booking"
	removeServiceHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/remove_service"
	rescheduleBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/reschedule_booking"
	startBookingHandler "github.com/m04kA/SMC-WashService/internal/api/handlers/start_booking"
	"github.com/m04kA/SMC-WashService/internal/api/middleware"
	"github.com/m04kA/SMC-WashService/internal/config"
	"github.com/m04kA/SMC-WashService/internal/infra/cache"
	"github.com/m04kA/SMC-WashService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/catalog"
	feeLedgerRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/feeledger"
	resourceRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/resource"
	scheduleRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/schedule"
	slotLockRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/slotlock"
	customerServiceClient "github.com/m04kA/SMC-WashService/internal/integrations/customerservice"
	notifyServiceClient "github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	payServiceClient "github.com/m04kA/SMC-WashService/internal/integrations/payservice"
	bookingsService "github.com/m04kA/SMC-WashService/internal/service/bookings"
	pricingService "github.com/m04kA/SMC-WashService/internal/service/pricing"
	reservationService "github.com/m04kA/SMC-WashService/internal/service/reservation"
	createBookingUC "github.com/m04kA/SMC-WashService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-WashService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-WashService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-WashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WashService/pkg/logger"
	"github.com/m04kA/SMC-WashService/pkg/metrics"
	"github.com/m04kA/SMC-WashService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-WashService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WashService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	customerClient := customerServiceClient.NewClient(
		cfg.CustomerService.URL,
		time.Duration(cfg.CustomerService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotificationService.URL,
		time.Duration(cfg.NotificationService.Timeout)*time.Second,
		log,
	)
	payClient := payServiceClient.NewClient(
		cfg.PaymentService.URL,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CustomerService=%s, NotificationService=%s, PaymentService=%s)",
		cfg.CustomerService.URL, cfg.NotificationService.URL, cfg.PaymentService.URL)

	// Инициализируем публикатора событий
	type EventPublisher interface {
		Publish(ctx context.Context, name string, bookingID int64, payload any) error
		Close() error
	}
	var eventPublisher EventPublisher
	if cfg.Events.Enabled {
		eventPublisher = events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, log)
		log.Info("Event publisher initialized (brokers=%v, topic=%s)", cfg.Events.Brokers, cfg.Events.Topic)
	} else {
		eventPublisher = events.NopPublisher{}
		log.Info("Event publishing disabled")
	}
	defer eventPublisher.Close()

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		resourceRepository *resourceRepo.Repository
		scheduleRepository *scheduleRepo.Repository
		catalogRepository  *catalogRepo.Repository
		feeRepository      *feeLedgerRepo.Repository
		slotLockRepository *slotLockRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		resourceRepository = resourceRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		feeRepository = feeLedgerRepo.NewRepository(wrappedDB)
		slotLockRepository = slotLockRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		resourceRepository = resourceRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		feeRepository = feeLedgerRepo.NewRepository(db)
		slotLockRepository = slotLockRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Фоновая чистка протухших блокировок слотов
	stopPurgeCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Reservation.LockTTL())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				purgeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if purged, err := slotLockRepository.PurgeExpired(purgeCtx); err != nil {
					log.Warn("Slot lock purge failed: %v", err)
				} else if purged > 0 {
					log.Debug("Purged %d expired slot locks", purged)
				}
				cancel()
			case <-stopPurgeCh:
				return
			}
		}
	}()

	// Кеш доступности слотов
	slotsCache := cache.New(time.Duration(cfg.Booking.SlotGranularityMinutes) * time.Minute)

	// Инициализируем сервисы
	pricingCalc := pricingService.NewCalculator(pricingService.Config{
		OvertimeRatePerMinute: cfg.Booking.OvertimeRatePerMinute,
		FreeCancelHours:       cfg.Booking.FreeCancelHours,
		LateCancelHours:       cfg.Booking.LateCancelHours,
	})

	reserver := reservationService.NewService(
		slotLockRepository,
		bookingRepository,
		txMgr,
		reservationService.Config{
			LockTTL:         cfg.Reservation.LockTTL(),
			LockRetries:     cfg.Reservation.LockRetries,
			LockBackoff:     cfg.Reservation.LockBackoff(),
			PipelineTimeout: cfg.Reservation.PipelineTimeout(),
			Buffer:          time.Duration(cfg.Booking.BufferMinutes) * time.Minute,
		},
		log,
	)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		feeRepository,
		catalogRepository,
		pricingCalc,
		txMgr,
		notifyClient,
		payClient,
		eventPublisher,
		slotsCache,
		&bookingsService.RealTimeProvider{},
		bookingsService.Config{
			NoShowGraceMinutes: cfg.Booking.NoShowGraceMinutes,
			BufferMinutes:      cfg.Booking.BufferMinutes,
		},
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		resourceRepository,
		scheduleRepository,
		catalogRepository,
		customerClient,
		reserver,
		eventPublisher,
		notifyClient,
		slotsCache,
		createBookingUC.Config{
			MinLeadTimeMinutes:     cfg.Booking.MinLeadTimeMinutes,
			HorizonDays:            cfg.Booking.HorizonDays,
			SlotGranularityMinutes: cfg.Booking.SlotGranularityMinutes,
			BufferMinutes:          cfg.Booking.BufferMinutes,
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		resourceRepository,
		scheduleRepository,
		reserver,
		eventPublisher,
		notifyClient,
		slotsCache,
		rescheduleBookingUC.Config{
			MinLeadTimeMinutes:     cfg.Booking.MinLeadTimeMinutes,
			HorizonDays:            cfg.Booking.HorizonDays,
			SlotGranularityMinutes: cfg.Booking.SlotGranularityMinutes,
			BufferMinutes:          cfg.Booking.BufferMinutes,
		},
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		resourceRepository,
		scheduleRepository,
		catalogRepository,
		slotsCache,
		getAvailableSlotsUC.Config{
			MinLeadTimeMinutes:     cfg.Booking.MinLeadTimeMinutes,
			HorizonDays:            cfg.Booking.HorizonDays,
			SlotGranularityMinutes: cfg.Booking.SlotGranularityMinutes,
			BufferMinutes:          cfg.Booking.BufferMinutes,
		},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBookingFees := getBookingFeesHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	startBooking := startBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	markNoShow := markNoShowHandler.NewHandler(bookingSvc, log)
	rateBooking := rateBookingHandler.NewHandler(bookingSvc, log)
	addServices := addServicesHandler.NewHandler(bookingSvc, log)
	removeService := removeServiceHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты на дату
	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования (клиент) ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/fees", getBookingFees.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/rating", rateBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/services", addServices.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/services/{lineItemId}", removeService.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/customers/me/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// --- Переходы статусов (персонал) ---
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/start", startBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/no-show", markNoShow.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopPurgeCh)

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully")
}
