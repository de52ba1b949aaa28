package constants

import "time"

// Server
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultTimeout        = 10 * time.Second
	ServerShutdownTimeout = 15 * time.Second
)

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Echo context keys
const (
	ContextTokenData = "token_data"
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist    = "token:blacklist:"
	RedisKeyMemberRestriction = "member:restriction:"
	MemberRestrictionCacheTTL = 5 * time.Minute
	TokenBlacklistDefaultTTL  = 24 * time.Hour
)

// Booking engine defaults; overridable via config.
const (
	DefaultCancellationCutoffHours = 2
	DefaultTimetableWindowDays     = 14
	MaxTimetableWindowDays         = 60
)

// DateLayout is the canonical format for class dates throughout the engine.
const DateLayout = "2006-01-02"

// TimeOfDayLayout is the canonical format for schedule start times.
const TimeOfDayLayout = "15:04"
