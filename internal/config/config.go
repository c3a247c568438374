package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// MaxMessageBytes caps a single inbound WebSocket frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	// MaxMessagesPerMinute limits inbound frames per connection. 0 disables the limit.
	MaxMessagesPerMinute int `mapstructure:"max_messages_per_minute" yaml:"max_messages_per_minute"`
	// SendBuffer is the per-connection outbound event buffer.
	SendBuffer int `mapstructure:"send_buffer" yaml:"send_buffer"`

	RoomIdleTimeout time.Duration `mapstructure:"room_idle_timeout" yaml:"room_idle_timeout"`

	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// PublicURL is the base of room links rendered into QR codes. Empty means
	// derive it from the request.
	PublicURL string `mapstructure:"public_url" yaml:"public_url"`
	// ListRooms registers GET /api/rooms, which lists every live slug.
	ListRooms bool `mapstructure:"list_rooms" yaml:"list_rooms"`

	// Redis backs room leases when several instances share traffic. Empty
	// address keeps leases in process memory.
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	LeaseTTL      time.Duration `mapstructure:"lease_ttl" yaml:"lease_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                 ":1999",
		ReadHeaderTimeout:    5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		LogLevel:             "info",
		LogFormat:            "console",
		MaxMessageBytes:      16 << 10,
		MaxMessagesPerMinute: 600,
		SendBuffer:           32,
		RoomIdleTimeout:      10 * time.Minute,
		AllowedOrigins:       []string{"*"},
		LeaseTTL:             30 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.MaxMessagesPerMinute != 0 {
		c.MaxMessagesPerMinute = other.MaxMessagesPerMinute
	}
	if other.SendBuffer != 0 {
		c.SendBuffer = other.SendBuffer
	}
	if other.RoomIdleTimeout != 0 {
		c.RoomIdleTimeout = other.RoomIdleTimeout
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.PublicURL != "" {
		c.PublicURL = other.PublicURL
	}
	if other.ListRooms {
		c.ListRooms = true
	}
	if other.RedisAddr != "" {
		c.RedisAddr = other.RedisAddr
	}
	if other.RedisPassword != "" {
		c.RedisPassword = other.RedisPassword
	}
	if other.RedisDB != 0 {
		c.RedisDB = other.RedisDB
	}
	if other.LeaseTTL != 0 {
		c.LeaseTTL = other.LeaseTTL
	}
}
