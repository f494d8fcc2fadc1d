package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scylla  ScyllaConfig  `mapstructure:"scylla"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Elastic ElasticConfig `mapstructure:"elastic"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	Stripe  StripeConfig  `mapstructure:"stripe"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	App     AppConfig     `mapstructure:"app"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ScyllaConfig struct {
	Hosts            []string      `mapstructure:"hosts"`
	SSLEnabled       bool          `mapstructure:"ssl_enabled"`
	SSLCAPath        string        `mapstructure:"ssl_ca_path"`
	Timeout          time.Duration `mapstructure:"timeout"`
	NumConns         int           `mapstructure:"num_conns"`
	OrdersKeyspace   string        `mapstructure:"ks_orders_keyspace"`
	OrdersRole       string        `mapstructure:"ks_orders_role"`
	OrdersPassword   string        `mapstructure:"ks_orders_password"`
	UsersKeyspace    string        `mapstructure:"ks_users_keyspace"`
	UsersRole        string        `mapstructure:"ks_users_role"`
	UsersPassword    string        `mapstructure:"ks_users_password"`
	ProductsKeyspace string        `mapstructure:"ks_products_keyspace"`
	ProductsRole     string        `mapstructure:"ks_products_role"`
	ProductsPassword string        `mapstructure:"ks_products_password"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticConfig struct {
	URL         string `mapstructure:"url"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	OrdersIndex string `mapstructure:"orders_index"`
}

type MinIOConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	URLExpiry time.Duration `mapstructure:"url_expiry"`
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	PublishableKey string `mapstructure:"publishable_key"`
	Currency       string `mapstructure:"currency"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type AppConfig struct {
	FrontendURL       string `mapstructure:"frontend_url"`
	LogLevel          string `mapstructure:"log_level"`
	OrderDedupEnabled bool   `mapstructure:"order_dedup_enabled"`
	PasswordMinLength int    `mapstructure:"password_min_length"`
}

func (c *Config) Validate() error {
	if c.Stripe.SecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY manquant")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET manquant")
	}
	if c.App.PasswordMinLength <= 0 {
		return errors.New("PASSWORD_MIN_LENGTH doit être positif")
	}
	return nil
}

// Load charge le .env puis lie les variables d'environnement dans Config.
// SCYLLA_HOSTS, STRIPE_SECRET_KEY, SMTP_HOST... gardent les noms historiques.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	return FromViper(viper.New())
}

// FromViper est séparé de Load pour pouvoir injecter une instance en test
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// AutomaticEnv ne voit les clés qu'après un BindEnv ou un SetDefault
	for _, key := range []string{
		"scylla.ks_orders_role", "scylla.ks_orders_password",
		"scylla.ks_users_role", "scylla.ks_users_password",
		"scylla.ks_products_role", "scylla.ks_products_password",
		"redis.password", "elastic.user", "elastic.password",
		"minio.access_key", "minio.secret_key",
		"stripe.secret_key", "stripe.publishable_key",
		"smtp.username", "smtp.password", "jwt.secret",
	} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.mode", "GIN_MODE")
	_ = v.BindEnv("app.frontend_url", "FRONTEND_URL")
	_ = v.BindEnv("app.log_level", "LOG_LEVEL")
	_ = v.BindEnv("app.order_dedup_enabled", "ORDER_DEDUP_ENABLED")
	_ = v.BindEnv("app.password_min_length", "PASSWORD_MIN_LENGTH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Les listes arrivent en chaîne "a,b" depuis l'environnement
	cfg.Scylla.Hosts = splitList(v.GetString("scylla.hosts"))
	cfg.Server.AllowedOrigins = splitList(v.GetString("server.allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", "http://localhost:3000")

	v.SetDefault("scylla.hosts", "127.0.0.1")
	v.SetDefault("scylla.ssl_enabled", false)
	v.SetDefault("scylla.ssl_ca_path", "")
	v.SetDefault("scylla.timeout", 5*time.Second)
	v.SetDefault("scylla.num_conns", 20)
	v.SetDefault("scylla.ks_orders_keyspace", "ks_orders")
	v.SetDefault("scylla.ks_users_keyspace", "ks_users")
	v.SetDefault("scylla.ks_products_keyspace", "ks_products")

	v.SetDefault("redis.host", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("elastic.url", "http://localhost:9200")
	v.SetDefault("elastic.orders_index", "orders")

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "storefront-images")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.url_expiry", 15*time.Minute)

	v.SetDefault("stripe.currency", "usd")

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "noreply@storefront.local")
	v.SetDefault("smtp.from_name", "E-Commerce Store")

	v.SetDefault("app.frontend_url", "http://localhost:3000")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.order_dedup_enabled", true)
	v.SetDefault("app.password_min_length", 6)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
