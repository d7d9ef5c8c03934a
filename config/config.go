package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	Database  DatabaseConfigs  `mapstructure:"database"`
	ApiServer APIServerConfigs `mapstructure:"api_server"`
	Auth      AuthConfigs      `mapstructure:"auth"`
	Reward    RewardConfigs    `mapstructure:"reward"`
	Redis     RedisConfigs     `mapstructure:"redis"`
	Cache     CacheConfigs     `mapstructure:"cache"`
	Snowflake SnowflakeConfigs `mapstructure:"snowflake"`
	Kafka     KafkaConfigs     `mapstructure:"kafka"`
}

type DatabaseConfigs struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// DSN overrides every connection field above when set.
	DSN string `mapstructure:"dsn"`

	// MaxTxRetries bounds how many times a transaction is replayed after a
	// transient storage conflict.
	MaxTxRetries int    `mapstructure:"max_tx_retries"`
	LogLevel     string `mapstructure:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host,
			d.Port,
			d.User,
			d.Password,
			d.Database,
		)
	case "sqlite":
		return d.Database
	default:
		// clientFoundRows makes an update report the rows it matched, even
		// when it leaves them unchanged.
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
	}
}

type APIServerConfigs struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	MaxLimit       int      `mapstructure:"max_limit"`
	DefaultLimit   int      `mapstructure:"default_limit"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AuthConfigs struct {
	TokenSecret string       `mapstructure:"token_secret"`
	AccessToken TokenConfigs `mapstructure:"access_token"`
}

type TokenConfigs struct {
	Name       string        `mapstructure:"name"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type RewardConfigs struct {
	// LockDuration is how long a task stops paying currency after a payout.
	LockDuration time.Duration `mapstructure:"lock_duration"`

	// The streak multiplier is 1 + min(streak, StreakCap) * StreakStepBasisPoints/10000.
	StreakCap             int `mapstructure:"streak_cap"`
	StreakStepBasisPoints int `mapstructure:"streak_step_basis_points"`

	// DefaultTimezone is used for day boundaries of users without a timezone.
	DefaultTimezone string `mapstructure:"default_timezone"`
}

type RedisConfigs struct {
	Enable bool   `mapstructure:"enable"`
	Addr   string `mapstructure:"addr"`
}

type CacheConfigs struct {
	ChallengeListTTL time.Duration `mapstructure:"challenge_list_ttl"`
}

type SnowflakeConfigs struct {
	Node int64 `mapstructure:"node"`
}

type KafkaConfigs struct {
	Enable   bool     `mapstructure:"enable"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`

	// TaskCompletedTopic receives one event per applied task completion.
	TaskCompletedTopic string `mapstructure:"task_completed_topic"`
}

// Default returns the configuration used when no file or environment value
// overrides a field.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:       "mysql",
			Host:         "localhost",
			Port:         "3306",
			Database:     "habitquest",
			User:         "root",
			MaxTxRetries: 3,
			LogLevel:     "silent",
		},
		ApiServer: APIServerConfigs{
			Host:         "",
			Port:         "8080",
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
		},
		Reward: RewardConfigs{
			LockDuration:          time.Minute,
			StreakCap:             14,
			StreakStepBasisPoints: 200,
			DefaultTimezone:       "UTC",
		},
		Redis: RedisConfigs{
			Addr: "localhost:6379",
		},
		Cache: CacheConfigs{
			ChallengeListTTL: 30 * time.Second,
		},
		Snowflake: SnowflakeConfigs{
			Node: 1,
		},
		Kafka: KafkaConfigs{
			Brokers:            []string{"localhost:9092"},
			ClientID:           "habitquest",
			TaskCompletedTopic: "task_completed",
		},
	}
}
