package config

import "time"

type Config struct {
	AppName      string   `env:"APP_NAME" env-default:"poppy-api"`
	Port         int      `env:"PORT" env-default:"5001"`
	LogLevel     string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs   bool     `env:"PRETTY_LOGS" env-default:"false"`
	AllowOrigins []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`

	HttpServerWriteTimeoutSeconds int `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`

	// StaticDir is served from / after the JSON routes (the admin SPA).
	StaticDir string `env:"STATIC_DIR" env-default:"web"`

	// PostgreSQL
	DatabaseURL             string        `env:"DATABASE_URL" env-default:""`
	DatabaseTLSInsecure     bool          `env:"DB_TLS_INSECURE" env-default:"false"`
	DatabaseMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`

	// Tracing
	TracingExporter     string `env:"TRACING_EXPORTER" env-default:"console"` // console or otlp
	TracingOTLPEndpoint string `env:"TRACING_OTLP_ENDPOINT" env-default:"localhost:4317"`
	TracingOTLPProtocol string `env:"TRACING_OTLP_PROTOCOL" env-default:"grpc"`

	// Kafka record change events
	KafkaEventsEnabled bool     `env:"KAFKA_EVENTS_ENABLED" env-default:"false"`
	KafkaBrokers       []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic   string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"record-events"`
	KafkaBatchSize     int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout  int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks  int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression   string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
}
