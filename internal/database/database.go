package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
	log      *zap.Logger
}

// Connections regroupe les clients partagés, construits une fois dans main
type Connections struct {
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	ordersKeyspace   string
	usersKeyspace    string
	productsKeyspace string
}

// --- Initialisation ---
func Connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{
		ordersKeyspace:   cfg.Scylla.OrdersKeyspace,
		usersKeyspace:    cfg.Scylla.UsersKeyspace,
		productsKeyspace: cfg.Scylla.ProductsKeyspace,
	}

	// 1. ScyllaDB (multi-keyspaces)
	scylla, err := NewScyllaManager(cfg.Scylla, log)
	if err != nil {
		return nil, fmt.Errorf("échec initialisation ScyllaDB: %w", err)
	}
	conns.Scylla = scylla

	// 2. Redis
	if conns.Redis, err = connectRedis(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	log.Info("✅ Connecté à Redis", zap.String("addr", cfg.Redis.Host))

	// 3. Elasticsearch
	if conns.Elastic, err = connectElastic(cfg.Elastic); err != nil {
		return nil, err
	}
	log.Info("✅ Connecté à Elasticsearch", zap.String("url", cfg.Elastic.URL))

	// 4. MinIO
	if conns.MinIO, err = connectMinIO(ctx, cfg.MinIO, log); err != nil {
		return nil, err
	}
	log.Info("✅ Connecté à MinIO", zap.String("endpoint", cfg.MinIO.Endpoint))

	log.Info("✅ Toutes les bases de données sont connectées")
	return conns, nil
}

func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// =============================================
// SCYLLA DB (Multi-Keyspaces avec SSL & Rôles)
// =============================================

func NewScyllaManager(cfg config.ScyllaConfig, log *zap.Logger) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  keyspaceConfigs(cfg),
		log:      log,
	}

	// Créer les sessions pour chaque keyspace configuré
	for keyspace := range sm.configs {
		if _, err := sm.GetSession(keyspace); err != nil {
			return nil, fmt.Errorf("échec initialisation keyspace %s: %w", keyspace, err)
		}
	}

	// Les tables sont créées via scripts/scylladb_init.cql
	return sm, nil
}

func keyspaceConfigs(cfg config.ScyllaConfig) map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	add := func(keyspace, role, password string) {
		if keyspace == "" {
			return
		}
		configs[keyspace] = ScyllaKeyspaceConfig{
			Hosts:       cfg.Hosts,
			Keyspace:    keyspace,
			Username:    role,
			Password:    password,
			SSLEnabled:  cfg.SSLEnabled,
			CACertPath:  cfg.SSLCAPath,
			Timeout:     cfg.Timeout,
			NumConns:    cfg.NumConns,
			Consistency: gocql.Quorum,
		}
	}

	add(cfg.ProductsKeyspace, cfg.ProductsRole, cfg.ProductsPassword)
	add(cfg.UsersKeyspace, cfg.UsersRole, cfg.UsersPassword)
	add(cfg.OrdersKeyspace, cfg.OrdersRole, cfg.OrdersPassword)

	return configs
}

// createScyllaCluster crée une configuration de cluster pour un keyspace
func createScyllaCluster(config ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns

	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	if config.SSLEnabled && config.CACertPath != "" {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 config.CACertPath,
			EnableHostVerification: true,
		}
	}

	// Les LWT (IF NOT EXISTS) passent en SERIAL
	cluster.SerialConsistency = gocql.Serial
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	return cluster
}

// GetSession retourne une session pour un keyspace donné
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[keyspace]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, exists := sm.sessions[keyspace]; exists {
		if !session.Closed() {
			return session, nil
		}
		delete(sm.sessions, keyspace)
	}

	session, err := createScyllaCluster(config).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	sm.log.Info("✅ Nouvelle session ScyllaDB",
		zap.String("keyspace", keyspace), zap.String("role", config.Username))

	return session, nil
}

// Close ferme toutes les sessions ScyllaDB
func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		sm.log.Info("🔌 Session ScyllaDB fermée", zap.String("keyspace", keyspace))
	}
}

func (c *Connections) OrdersSession() (*gocql.Session, error) {
	return c.Scylla.GetSession(c.ordersKeyspace)
}

func (c *Connections) UsersSession() (*gocql.Session, error) {
	return c.Scylla.GetSession(c.usersKeyspace)
}

func (c *Connections) ProductsSession() (*gocql.Session, error) {
	return c.Scylla.GetSession(c.productsKeyspace)
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erreur connexion Redis: %w", err)
	}
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	return client, nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("erreur création bucket MinIO: %w", err)
		}
		log.Info("🪣 Bucket créé", zap.String("bucket", cfg.Bucket))
	} else {
		log.Info("🪣 Bucket MinIO déjà présent", zap.String("bucket", cfg.Bucket))
	}

	return client, nil
}
