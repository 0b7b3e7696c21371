package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	ParcelBox ParcelBoxConfig `yaml:"parcelbox"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	StatusChangedTopicName string `yaml:"status_changed_topic_name"`
}

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type ParcelBoxConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	WorkerHTTPAddr     string `yaml:"worker_http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	Storage         string `yaml:"storage"` // "postgres" | "sqlite"
	Cache           string `yaml:"cache"`   // "redis" | "memory" | "none"
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`

	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	Language           string `yaml:"language"`
	Timezone           string `yaml:"timezone"`

	SweepIntervalSeconds    int            `yaml:"sweep_interval_seconds"`
	SweepBatchSize          int            `yaml:"sweep_batch_size"`
	SweepConcurrency        int            `yaml:"sweep_concurrency"`
	SweepLeaseSeconds       int            `yaml:"sweep_lease_seconds"`
	SweepRateLimitPerMinute int            `yaml:"sweep_rate_limit_per_minute"`
	CarrierRateLimits       map[string]int `yaml:"carrier_rate_limits"`

	// Расписание повторных проверок; нули = значения по умолчанию планировщика.
	SweepNextCheckActiveMinSeconds int `yaml:"sweep_next_check_active_min_seconds"`
	SweepNextCheckActiveMaxSeconds int `yaml:"sweep_next_check_active_max_seconds"`
	SweepNextCheckUnknownSeconds   int `yaml:"sweep_next_check_unknown_seconds"`
	SweepNextCheckFinalSeconds     int `yaml:"sweep_next_check_final_seconds"`

	APIKeys          map[string]string `yaml:"api_keys"`
	CarrierBaseURLs  map[string]string `yaml:"carrier_base_urls"`
	Track24Domain    string            `yaml:"track24_domain"`
	EmulatorUpstream string            `yaml:"emulator_upstream"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
