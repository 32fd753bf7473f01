package config

import "time"

const (
	// Leaderboard size for top earners
	TopEarnersLimit = 6

	// Submission pagination bounds
	DefaultPageSize = 10
	MaxPageSize     = 100

	// Minor currency units per major unit for payment intents
	MinorUnitsPerUnit = 100

	// Credential secret floor (HS256)
	MinJWTSecretLen = 32

	// Request body limit for JSON payloads
	MaxBodyBytes = 1 << 20

	// Telegram message limit
	MaxTelegramMessageLen = 4096

	// Ops log send timeout
	OpsLogTimeout = 10 * time.Second

	// HTTP server header read limit
	ReadHeaderTimeout = 5 * time.Second

	// Shutdown grace period
	ShutdownTimeout = 10 * time.Second
)
