package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Billing  BillingConfig  `mapstructure:"billing"`
	VTPass   VTPassConfig   `mapstructure:"vtpass"`
	Gsub     GsubConfig     `mapstructure:"gsub"`
	N3T      N3TConfig      `mapstructure:"n3t"`
	PalmPay  PalmPayConfig  `mapstructure:"palmpay"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// BillingConfig carries the money rules of the purchase engine.
type BillingConfig struct {
	CashbackRate      float64 `mapstructure:"cashback_rate"`      // bonus as a fraction of the charged amount
	CashbackCap       float64 `mapstructure:"cashback_cap"`       // max Naira per cashback-funded purchase
	AirtimeMin        float64 `mapstructure:"airtime_min"`        // minimum airtime amount, Naira
	ElectricityMin    float64 `mapstructure:"electricity_min"`    // minimum electricity amount, Naira
	ElectricityMarkup float64 `mapstructure:"electricity_markup"` // commission rate on electricity
}

// CashbackRateDec returns the cashback rate as a decimal.
func (b BillingConfig) CashbackRateDec() decimal.Decimal {
	return decimal.NewFromFloat(b.CashbackRate)
}

// CashbackCapDec returns the cashback-funded cap as a decimal.
func (b BillingConfig) CashbackCapDec() decimal.Decimal {
	return decimal.NewFromFloat(b.CashbackCap)
}

type VTPassConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type GsubConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type N3TConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PalmPayConfig struct {
	PublicKey string `mapstructure:"public_key"` // PEM or bare base64 key for callback verification
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: BILL_.
// Nested keys use underscore: BILL_DATABASE_HOST, BILL_VTPASS_API_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "billpay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "billpay")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("billing.cashback_rate", 0.01)
	v.SetDefault("billing.cashback_cap", 1000)
	v.SetDefault("billing.airtime_min", 50)
	v.SetDefault("billing.electricity_min", 100)
	v.SetDefault("billing.electricity_markup", 0.10)
	v.SetDefault("vtpass.base_url", "https://vtpass.com/api")
	v.SetDefault("vtpass.timeout", "58s")
	v.SetDefault("gsub.base_url", "https://api.gsubz.com")
	v.SetDefault("gsub.timeout", "30s")
	v.SetDefault("n3t.base_url", "https://n3tdata.com/api")
	v.SetDefault("n3t.timeout", "30s")
	v.SetDefault("palmpay.public_key", "")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: BILL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("BILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
