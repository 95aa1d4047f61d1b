package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"lms-service/internal/bucketing"
	"lms-service/internal/client"
	"lms-service/internal/config"
	"lms-service/internal/encryption"
	"lms-service/internal/hashing"
	"lms-service/internal/repository/redis"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/service"
	"lms-service/internal/sms"
	"lms-service/internal/util"
)

// Factory owns the lifecycle of every external dependency and hands out
// repositories and services built on top of them.
type Factory struct {
	config *config.Config

	redisClient      *client.RedisClient
	scyllaClient     *scylla.ScyllaClient
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient
	s3Client         *client.S3Client
	kmsClient        *kms.Client

	hasher            *hashing.Hasher
	encryptionManager *encryption.EncryptionManager
	bucketingManager  *bucketing.BucketingManager

	userRepository       scylla.UserRepositoryInterface
	courseRepository     scylla.CourseRepositoryInterface
	categoryRepository   scylla.CategoryRepositoryInterface
	enrollmentRepository scylla.EnrollmentRepositoryInterface
	paymentRepository    scylla.PaymentRepositoryInterface

	sessionCache   *redis.SessionCache
	catalogCache   *redis.CatalogCache
	rateLimitCache *redis.RateLimitCache

	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
	closed    chan struct{}
}

func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}
	factory.initializeManagers()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("kms_enabled", cfg.KMS.Enabled),
	)
	return factory, nil
}

// initializeClients brings up every external client with a health check.
// In development a dead dependency is a warning; in production it is fatal.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	if redisClient, err := client.NewRedisClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("redis: %w", err))
	} else {
		f.redisClient = redisClient
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			initErrors = append(initErrors, fmt.Errorf("redis health check: %w", err))
		} else {
			util.Info("Redis client initialized and healthy")
		}
	}

	if scyllaClient, err := scylla.NewScyllaClient(f.config); err != nil {
		initErrors = append(initErrors, fmt.Errorf("scylla: %w", err))
	} else {
		f.scyllaClient = scyllaClient
		if err := f.scyllaClient.HealthCheck(); err != nil {
			initErrors = append(initErrors, fmt.Errorf("scylla health check: %w", err))
		} else {
			util.Info("ScyllaDB client initialized and healthy")
		}
	}

	// Kafka is best effort everywhere: auth events are droppable.
	if producer, err := client.NewKafkaProducer(f.config, util.Get()); err != nil {
		util.Warn("Kafka producer initialization failed - proceeding without audit events", util.ErrorField(err))
	} else {
		f.kafkaProducer = producer
		util.Info("Kafka producer initialized")
	}

	if esClient, err := client.NewElasticsearchClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("elasticsearch: %w", err))
	} else {
		f.esClient = esClient
		if err := f.esClient.HealthCheck(); err != nil {
			initErrors = append(initErrors, fmt.Errorf("elasticsearch health check: %w", err))
		} else {
			util.Info("Elasticsearch client initialized and healthy")
		}
	}

	if chClient, err := client.NewClickHouseClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("clickhouse: %w", err))
	} else {
		f.clickhouseClient = chClient
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			initErrors = append(initErrors, fmt.Errorf("clickhouse health check: %w", err))
		} else {
			util.Info("ClickHouse client initialized and healthy")
		}
	}

	if s3Client, err := client.NewS3Client(ctx, f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("s3: %w", err))
	} else {
		f.s3Client = s3Client
		util.Info("S3 client initialized")
	}

	if f.config.KMS.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(f.config.Storage.Region))
		if err != nil {
			initErrors = append(initErrors, fmt.Errorf("kms: %w", err))
		} else {
			f.kmsClient = kms.NewFromConfig(awsCfg)
			util.Info("KMS client initialized")
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}
	return nil
}

func (f *Factory) initializeManagers() {
	f.hasher = hashing.NewHasher(f.config)
	f.encryptionManager = encryption.NewEncryptionManager(f.config, f.kmsClient)
	f.bucketingManager = bucketing.NewBucketingManager(f.config)
}

func (f *Factory) UserRepository() scylla.UserRepositoryInterface {
	if f.userRepository == nil {
		f.userRepository = scylla.NewUserRepository(f.scyllaClient, f.bucketingManager)
	}
	return f.userRepository
}

func (f *Factory) CourseRepository() scylla.CourseRepositoryInterface {
	if f.courseRepository == nil {
		f.courseRepository = scylla.NewCourseRepository(f.scyllaClient)
	}
	return f.courseRepository
}

func (f *Factory) CategoryRepository() scylla.CategoryRepositoryInterface {
	if f.categoryRepository == nil {
		f.categoryRepository = scylla.NewCategoryRepository(f.scyllaClient)
	}
	return f.categoryRepository
}

func (f *Factory) EnrollmentRepository() scylla.EnrollmentRepositoryInterface {
	if f.enrollmentRepository == nil {
		f.enrollmentRepository = scylla.NewEnrollmentRepository(f.scyllaClient)
	}
	return f.enrollmentRepository
}

func (f *Factory) PaymentRepository() scylla.PaymentRepositoryInterface {
	if f.paymentRepository == nil {
		f.paymentRepository = scylla.NewPaymentRepository(f.scyllaClient)
	}
	return f.paymentRepository
}

func (f *Factory) SessionCache() *redis.SessionCache {
	if f.sessionCache == nil {
		f.sessionCache = redis.NewSessionCache(f.redisClient)
	}
	return f.sessionCache
}

func (f *Factory) CatalogCache() *redis.CatalogCache {
	if f.catalogCache == nil {
		f.catalogCache = redis.NewCatalogCache(f.redisClient)
	}
	return f.catalogCache
}

func (f *Factory) RateLimitCache() *redis.RateLimitCache {
	if f.rateLimitCache == nil {
		f.rateLimitCache = redis.NewRateLimitCache(f.redisClient)
	}
	return f.rateLimitCache
}

func (f *Factory) ServiceFactory() *service.ServiceFactory {
	if f.serviceFactory == nil {
		sender := sms.NewRetryingSender(
			sms.NewTwilioSender(f.config),
			f.config.SMS.MaxAttempts,
			f.config.SMS.RetryDelay,
		)

		var publisher service.EventPublisherInterface
		if f.kafkaProducer != nil {
			publisher = service.NewKafkaEventPublisher(f.kafkaProducer, f.config)
		}

		f.serviceFactory = service.NewServiceFactory(service.ServiceFactoryDeps{
			Config:         f.config,
			UserRepo:       f.UserRepository(),
			CourseRepo:     f.CourseRepository(),
			CategoryRepo:   f.CategoryRepository(),
			EnrollmentRepo: f.EnrollmentRepository(),
			PaymentRepo:    f.PaymentRepository(),
			SessionStore:   f.SessionCache(),
			CatalogCache:   f.CatalogCache(),
			RateLimiter:    f.RateLimitCache(),
			Hasher:         f.hasher,
			EncryptionMgr:  f.encryptionManager,
			Sender:         sender,
			Search:         service.NewESCourseSearch(f.esClient, f.config),
			Storage:        f.s3Client,
			Analytics:      service.NewClickHousePaymentAnalytics(f.clickhouseClient),
			Publisher:      publisher,
		})
	}
	return f.serviceFactory
}

func (f *Factory) Config() *config.Config {
	return f.config
}

// HealthCheck probes every initialized dependency.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	} else {
		healthErrors["redis"] = fmt.Errorf("redis client not initialized")
	}

	if f.scyllaClient != nil {
		if err := f.scyllaClient.HealthCheck(); err != nil {
			healthErrors["scylla"] = err
		}
	} else {
		healthErrors["scylla"] = fmt.Errorf("scylla client not initialized")
	}

	if f.esClient != nil {
		if err := f.esClient.HealthCheck(); err != nil {
			healthErrors["elasticsearch"] = err
		}
	} else {
		healthErrors["elasticsearch"] = fmt.Errorf("elasticsearch client not initialized")
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	} else {
		healthErrors["clickhouse"] = fmt.Errorf("clickhouse client not initialized")
	}

	if f.s3Client != nil {
		if err := f.s3Client.HealthCheck(ctx); err != nil {
			healthErrors["s3"] = err
		}
	} else {
		healthErrors["s3"] = fmt.Errorf("s3 client not initialized")
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	return healthErrors
}

// IsHealthy ignores Kafka: audit events degrade gracefully.
func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		if f.serviceFactory != nil {
			f.serviceFactory.Cleanup()
		}

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			}
		}
		if f.esClient != nil {
			f.esClient.Close()
		}
		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			}
		}
		if f.scyllaClient != nil {
			f.scyllaClient.Close()
		}
		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			}
		}

		util.Info("Factory shutdown complete")
	})
	return nil
}
