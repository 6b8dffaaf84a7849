package config

import "time"

// Database connection pool settings
const (
	DBConnMaxLifetime = 5 * time.Minute
	DBConnMaxIdleTime = time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Redis dial/ping timeout
const RedisPingTimeout = 2 * time.Second

// AMQP connection timeout
const AMQPDialTimeout = 10 * time.Second

// Default page size for parcel listing
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)
