package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

const (
	EmbeddingBackendMinIO  = "minio"
	EmbeddingBackendQdrant = "qdrant"
)

type Config struct {
	Minio  *MinIOCfg
	Http   *HTTPConfig
	Grpc   *GRPCConfig
	Db     *PGDBCfg
	Qdrant *QdrantCfg
	Redis  *RedisCfg
	Ml     *MLServiceCfg
	Kafka  *KafkaCfg
	Cache  *CacheCfg
	Search *SearchCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	OutboxBatchSize   int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для векторов товаров
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port                 string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	MaxUploadSize        int64 // байты
	MaxRequestsPerMinute int   // лимит на /identify для одного клиента
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
}

type RedisCfg struct {
	Addr            string
	Password        string
	User            string
	DB              int
	MaxRetries      int
	DialTimeout     time.Duration
	Timeout         time.Duration
	SearchResultTTL time.Duration
}

type MLServiceCfg struct {
	Addr          string
	Timeout       time.Duration // на один вызов Detect/Embed
	MinConfidence float64       // детекции с уверенностью не выше порога отбрасываются
}

type CacheCfg struct {
	MaxSize int
	TTL     time.Duration
}

type SearchCfg struct {
	TopK             int
	EmbeddingBackend string // minio | qdrant
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Если рядом есть .env, его значения подставляются в окружение (уже заданные переменные не перезаписываются).
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ml, err := loadMLServiceCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cache, err := loadCacheCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	search, err := loadSearchCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:  minio,
		Http:   http,
		Grpc:   loadGRPCConfig(),
		Db:     db,
		Qdrant: qdrant,
		Redis:  redis,
		Ml:     ml,
		Kafka:  kafka,
		Cache:  cache,
		Search: search,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultOutboxBatchSize   = 10
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	batchSize, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultOutboxBatchSize)
	if err != nil {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		OutboxBatchSize:   batchSize,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "embeddings"
	)

	useSSL, err := parseBoolEnv("MINIO_USE_SSL", defaultUseSSL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort                 = "8080"
		defaultReadTimeout          = 5 * time.Second
		defaultWriteTimeout         = 30 * time.Second
		defaultIdleTimeout          = 60 * time.Second
		defaultMaxUploadSize        = 10 << 20
		defaultMaxRequestsPerMinute = 60
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	maxUploadSize, err := parseIntEnv("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	if err != nil || maxUploadSize <= 0 {
		log.Errorf(e.ErrIncorrectEnvVariable, "invalid MAX_UPLOAD_SIZE")
		return nil, e.Wrap("MAX_UPLOAD_SIZE", e.ErrIncorrectEnvVariable)
	}

	maxRequests, err := parseIntEnv("MAX_REQUESTS_PER_MINUTE", defaultMaxRequestsPerMinute)
	if err != nil || maxRequests <= 0 {
		log.Errorf(e.ErrIncorrectEnvVariable, "invalid MAX_REQUESTS_PER_MINUTE")
		return nil, e.Wrap("MAX_REQUESTS_PER_MINUTE", e.ErrIncorrectEnvVariable)
	}

	return &HTTPConfig{
		Port:                 getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:          readTimeout,
		WriteTimeout:         writeTimeout,
		IdleTimeout:          idleTimeout,
		MaxUploadSize:        int64(maxUploadSize),
		MaxRequestsPerMinute: maxRequests,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	required := map[string]string{}
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		value := getEnv(key)
		if value == "" {
			err := fmt.Errorf("%s is required", key)
			log.Errorf(err, "missing %s", key)
			return nil, err
		}
		required[key] = value
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     required["POSTGRES_USER"],
		Password: required["POSTGRES_PASSWORD"],
		DBName:   required["POSTGRES_DB"],
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = 6334
		defaultUseTLS         = false
		defaultVectorSize     = 768
		defaultCollection     = "product_embeddings"
	)

	port, err := parseIntEnv("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := parseBoolEnv("QDRANT_USE_TLS", defaultUseTLS)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := parseIntEnv("VECTOR_SIZE", defaultVectorSize)
	if err != nil || vectorSize <= 0 {
		logger.Errorf(e.ErrIncorrectEnvVariable, "invalid VECTOR_SIZE")
		return nil, e.Wrap("VECTOR_SIZE", e.ErrIncorrectEnvVariable)
	}

	return &QdrantCfg{
		Host:                 getEnvOrDefault("QDRANT_HOST", "qdrant"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           uint64(vectorSize),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr            = "localhost:6379"
		defaultDB              = 0
		defaultMaxRetries      = 3
		defaultDialTimeout     = 5 * time.Second
		defaultReadTimeout     = 3 * time.Second
		defaultWriteTimeout    = 3 * time.Second
		defaultSearchResultTTL = 10 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	searchResultTTL, err := parseDurationEnv("SEARCH_RESULT_TTL", defaultSearchResultTTL)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_RESULT_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:            getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:        getEnv("REDIS_PASSWORD"),
		User:            getEnv("REDIS_USER"),
		DB:              db,
		MaxRetries:      maxRetries,
		DialTimeout:     dialTimeout,
		Timeout:         max(readTimeout, writeTimeout),
		SearchResultTTL: searchResultTTL,
	}, nil
}

func loadMLServiceCfg() (*MLServiceCfg, error) {
	const (
		defaultHost          = "ml-service"
		defaultPort          = "50051"
		defaultTimeout       = 30 * time.Second
		defaultMinConfidence = 0.5
	)

	timeout, err := parseDurationEnv("ML_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, e.Wrap("ML_TIMEOUT", err)
	}

	minConfidence, err := parseFloatEnv("ML_MIN_CONFIDENCE", defaultMinConfidence)
	if err != nil || minConfidence < 0 || minConfidence > 1 {
		return nil, e.Wrap("ML_MIN_CONFIDENCE", e.ErrIncorrectEnvVariable)
	}

	host := getEnvOrDefault("ML_HOST", defaultHost)
	port := getEnvOrDefault("ML_PORT", defaultPort)

	return &MLServiceCfg{
		Addr:          host + ":" + port,
		Timeout:       timeout,
		MinConfidence: minConfidence,
	}, nil
}

func loadCacheCfg() (*CacheCfg, error) {
	const (
		defaultMaxSize = 100
		defaultTTL     = time.Hour
	)

	maxSize, err := parseIntEnv("CACHE_MAX_SIZE", defaultMaxSize)
	if err != nil || maxSize <= 0 {
		return nil, e.Wrap("CACHE_MAX_SIZE", e.ErrIncorrectEnvVariable)
	}

	ttl, err := parseDurationEnv("CACHE_TTL", defaultTTL)
	if err != nil || ttl <= 0 {
		return nil, e.Wrap("CACHE_TTL", e.ErrIncorrectEnvVariable)
	}

	return &CacheCfg{MaxSize: maxSize, TTL: ttl}, nil
}

func loadSearchCfg() (*SearchCfg, error) {
	const (
		defaultTopK    = 10
		defaultBackend = EmbeddingBackendMinIO
	)

	topK, err := parseIntEnv("SEARCH_TOP_K", defaultTopK)
	if err != nil || topK <= 0 {
		return nil, e.Wrap("SEARCH_TOP_K", e.ErrIncorrectEnvVariable)
	}

	backend := strings.ToLower(getEnvOrDefault("EMBEDDING_BACKEND", defaultBackend))
	if backend != EmbeddingBackendMinIO && backend != EmbeddingBackendQdrant {
		return nil, e.Wrap("EMBEDDING_BACKEND", e.ErrIncorrectEnvVariable)
	}

	return &SearchCfg{TopK: topK, EmbeddingBackend: backend}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return f, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return b, nil
}
