package service

import (
	"github.com/go-playground/validator/v10"

	"lms-service/internal/config"
	"lms-service/internal/encryption"
	"lms-service/internal/hashing"
	"lms-service/internal/repository/redis"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/sms"
)

// ServiceFactory wires the services lazily. All getters return singletons.
type ServiceFactory struct {
	config *config.Config

	userRepo       scylla.UserRepositoryInterface
	courseRepo     scylla.CourseRepositoryInterface
	categoryRepo   scylla.CategoryRepositoryInterface
	enrollmentRepo scylla.EnrollmentRepositoryInterface
	paymentRepo    scylla.PaymentRepositoryInterface

	sessionStore redis.SessionStoreInterface
	catalogCache redis.CatalogCacheInterface
	rateLimiter  redis.RateLimiterInterface

	hasher        *hashing.Hasher
	encryptionMgr *encryption.EncryptionManager
	sender        sms.Sender
	search        CourseSearchInterface
	storage       ObjectStoreInterface
	analytics     PaymentAnalyticsInterface
	publisher     EventPublisherInterface

	validate *validator.Validate

	otpService        *OTPService
	sessionService    *SessionService
	authService       *AuthService
	catalogService    *CatalogService
	categoryService   *CategoryService
	enrollmentService *EnrollmentService
	paymentService    *PaymentService
	adminService      *AdminService
	exportService     *ExportService
	meetingService    *MeetingService
}

// ServiceFactoryDeps bundles everything the services depend on.
type ServiceFactoryDeps struct {
	Config         *config.Config
	UserRepo       scylla.UserRepositoryInterface
	CourseRepo     scylla.CourseRepositoryInterface
	CategoryRepo   scylla.CategoryRepositoryInterface
	EnrollmentRepo scylla.EnrollmentRepositoryInterface
	PaymentRepo    scylla.PaymentRepositoryInterface
	SessionStore   redis.SessionStoreInterface
	CatalogCache   redis.CatalogCacheInterface
	RateLimiter    redis.RateLimiterInterface
	Hasher         *hashing.Hasher
	EncryptionMgr  *encryption.EncryptionManager
	Sender         sms.Sender
	Search         CourseSearchInterface
	Storage        ObjectStoreInterface
	Analytics      PaymentAnalyticsInterface
	Publisher      EventPublisherInterface
}

func NewServiceFactory(deps ServiceFactoryDeps) *ServiceFactory {
	return &ServiceFactory{
		config:         deps.Config,
		userRepo:       deps.UserRepo,
		courseRepo:     deps.CourseRepo,
		categoryRepo:   deps.CategoryRepo,
		enrollmentRepo: deps.EnrollmentRepo,
		paymentRepo:    deps.PaymentRepo,
		sessionStore:   deps.SessionStore,
		catalogCache:   deps.CatalogCache,
		rateLimiter:    deps.RateLimiter,
		hasher:         deps.Hasher,
		encryptionMgr:  deps.EncryptionMgr,
		sender:         deps.Sender,
		search:         deps.Search,
		storage:        deps.Storage,
		analytics:      deps.Analytics,
		publisher:      deps.Publisher,
		validate:       NewValidator(),
	}
}

func (f *ServiceFactory) OTPService() *OTPService {
	if f.otpService == nil {
		f.otpService = NewOTPService(f.userRepo, f.sender, f.publisher, f.config)
	}
	return f.otpService
}

func (f *ServiceFactory) SessionService() *SessionService {
	if f.sessionService == nil {
		f.sessionService = NewSessionService(f.sessionStore, f.config)
	}
	return f.sessionService
}

func (f *ServiceFactory) AuthService() *AuthService {
	if f.authService == nil {
		f.authService = NewAuthService(
			f.userRepo,
			f.hasher,
			f.encryptionMgr,
			f.OTPService(),
			f.SessionService(),
			f.rateLimiter,
			f.publisher,
			f.validate,
			f.config,
		)
	}
	return f.authService
}

func (f *ServiceFactory) CatalogService() *CatalogService {
	if f.catalogService == nil {
		f.catalogService = NewCatalogService(
			f.courseRepo, f.catalogCache, f.search, f.storage, f.validate, f.config)
	}
	return f.catalogService
}

func (f *ServiceFactory) CategoryService() *CategoryService {
	if f.categoryService == nil {
		f.categoryService = NewCategoryService(f.categoryRepo, f.catalogCache, f.validate)
	}
	return f.categoryService
}

func (f *ServiceFactory) EnrollmentService() *EnrollmentService {
	if f.enrollmentService == nil {
		f.enrollmentService = NewEnrollmentService(f.enrollmentRepo, f.courseRepo)
	}
	return f.enrollmentService
}

func (f *ServiceFactory) PaymentService() *PaymentService {
	if f.paymentService == nil {
		f.paymentService = NewPaymentService(
			f.paymentRepo, f.EnrollmentService(), f.analytics, f.validate)
	}
	return f.paymentService
}

func (f *ServiceFactory) AdminService() *AdminService {
	if f.adminService == nil {
		f.adminService = NewAdminService(
			f.userRepo, f.EnrollmentService(), f.SessionService(), f.publisher)
	}
	return f.adminService
}

func (f *ServiceFactory) ExportService() *ExportService {
	if f.exportService == nil {
		f.exportService = NewExportService(
			f.courseRepo, f.enrollmentRepo, f.userRepo, f.storage, f.config)
	}
	return f.exportService
}

func (f *ServiceFactory) MeetingService() *MeetingService {
	if f.meetingService == nil {
		f.meetingService = NewMeetingService(f.EnrollmentService(), f.courseRepo, f.config)
	}
	return f.meetingService
}

// Cleanup releases anything the services hold on to.
func (f *ServiceFactory) Cleanup() {
	if f.encryptionMgr != nil {
		f.encryptionMgr.ClearCache()
	}
}
