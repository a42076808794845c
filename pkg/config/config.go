package config

import (
	"fmt"
	"time"
)

type DB struct {
	// Url selects the dialect by scheme: postgres://, postgresql:// or sqlite://<path>.
	Url          string        `envconfig:"URL" default:"sqlite://ledger.db"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLife  time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

type Jwt struct {
	// Secret enables bearer-token verification when set.
	Secret string        `envconfig:"SECRET"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL"`
	StreamPrefix string        `envconfig:"STREAM_PREFIX" default:"ledger.events"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"ledger.events"`
	GroupID     string `envconfig:"GROUP_ID" default:"ledger"`
}

type EventBus struct {
	// Driver is one of memory, redis or kafka.
	Driver string `envconfig:"DRIVER" default:"memory"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[ledger]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Ledger struct {
	// OperationTimeout bounds the lock wait plus every store call of one
	// account operation.
	OperationTimeout time.Duration `envconfig:"OPERATION_TIMEOUT" default:"10s"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Ledger    *Ledger    `envconfig:"LEDGER"`
}

// Addr returns host:port for the HTTP listener.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
