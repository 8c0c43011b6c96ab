package client

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LogLevelDebug logs everything including per-fetch detail
	LogLevelDebug LogLevel = iota
	// LogLevelInfo logs general information about client operations
	LogLevelInfo
	// LogLevelWarn logs warning messages that don't stop execution
	LogLevelWarn
	// LogLevelError logs only error conditions
	LogLevelError
	// LogLevelOff disables all logging
	LogLevelOff
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	case "OFF", "NONE":
		return LogLevelOff
	default:
		return LogLevelInfo
	}
}

// LogCategory represents different categories of logging for granular control
type LogCategory string

const (
	// LogCategoryClient for general client operations
	LogCategoryClient LogCategory = "client"
	// LogCategorySession for session acquisition and release events
	LogCategorySession LogCategory = "session"
	// LogCategoryQuery for query execution and timing
	LogCategoryQuery LogCategory = "query"
	// LogCategoryAsync for asynchronous submission and retrieval
	LogCategoryAsync LogCategory = "async"
	// LogCategoryBatch for tabular batch retrieval
	LogCategoryBatch LogCategory = "batch"
	// LogCategoryProfile for connection profile resolution
	LogCategoryProfile LogCategory = "profile"
	// LogCategoryDriver for messages surfaced from the underlying driver
	LogCategoryDriver LogCategory = "driver"
)

// Logger defines the interface for pluggable logging in the client.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})
	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})
	// Warn logs a warning message with optional key-value pairs
	Warn(msg string, keysAndValues ...interface{})
	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
	// IsDebugEnabled returns true if debug logging is enabled
	IsDebugEnabled() bool
	// IsInfoEnabled returns true if info logging is enabled
	IsInfoEnabled() bool
}

// CategorizedLogger extends Logger with per-category level control. The
// client tags its messages with a category so one concern (say, async
// submissions) can be turned up or off without drowning the rest.
type CategorizedLogger interface {
	Logger
	// LogWithCategory logs a message at the given level under a category
	LogWithCategory(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{})
	// IsCategoryEnabled returns true if the category emits at any level
	IsCategoryEnabled(category LogCategory) bool
	// SetCategoryLevel overrides the minimum level for one category
	SetCategoryLevel(category LogCategory, level LogLevel)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Logger is the pluggable logger implementation
	Logger Logger
	// Level sets the global minimum log level to output
	Level LogLevel
	// CategoryLevels allows setting different log levels per category
	CategoryLevels map[LogCategory]LogLevel

	// LogQueryTiming enables query execution timing logs
	LogQueryTiming bool
	// LogSessionEvents enables session acquisition/release logging
	LogSessionEvents bool
	// LogAsyncEvents enables async submission/retrieval logging
	LogAsyncEvents bool
}

// DefaultLoggingConfig returns a logging configuration with a no-op logger,
// silent by default.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Logger:         &NoOpLogger{},
		Level:          LogLevelOff,
		CategoryLevels: make(map[LogCategory]LogLevel),
	}
}

// NewConsoleLoggingConfig creates a console logging configuration
func NewConsoleLoggingConfig(level LogLevel) *LoggingConfig {
	config := DefaultLoggingConfig()
	config.Logger = NewConsoleLogger(level)
	config.Level = level
	config.LogQueryTiming = level <= LogLevelInfo
	config.LogSessionEvents = level <= LogLevelDebug
	config.LogAsyncEvents = level <= LogLevelDebug
	return config
}

// NewStructuredLoggingConfig creates a JSON structured logging configuration
func NewStructuredLoggingConfig(level LogLevel, output io.Writer) *LoggingConfig {
	config := DefaultLoggingConfig()
	config.Logger = &StructuredLogger{Level: level, Output: output}
	config.Level = level
	config.LogQueryTiming = true
	config.LogSessionEvents = true
	config.LogAsyncEvents = true
	return config
}

// NoOpLogger is a logger that does nothing (default behavior)
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (l *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) IsDebugEnabled() bool                           { return false }
func (l *NoOpLogger) IsInfoEnabled() bool                            { return false }

// ConsoleLogger logs to stdout/stderr with configurable level and formatting
type ConsoleLogger struct {
	level          LogLevel
	categoryLevels map[LogCategory]LogLevel
	debugLog       *log.Logger
	infoLog        *log.Logger
	warnLog        *log.Logger
	errorLog       *log.Logger
	mu             sync.RWMutex
	timeFormat     string
}

// NewConsoleLogger creates a new console logger with the specified level
func NewConsoleLogger(level LogLevel) *ConsoleLogger {
	return NewConsoleLoggerWithOutput(level, os.Stdout, os.Stderr)
}

// NewConsoleLoggerWithOutput creates a console logger with custom output writers
func NewConsoleLoggerWithOutput(level LogLevel, stdout, stderr io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		level:      level,
		debugLog:   log.New(stdout, "", 0),
		infoLog:    log.New(stdout, "", 0),
		warnLog:    log.New(stderr, "", 0),
		errorLog:   log.New(stderr, "", 0),
		timeFormat: "2006-01-02 15:04:05.000",
	}
}

// SetLevel updates the log level
func (c *ConsoleLogger) SetLevel(level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

func (c *ConsoleLogger) formatMessage(level LogLevel, msg string, keysAndValues ...interface{}) string {
	c.mu.RLock()
	timeFormat := c.timeFormat
	c.mu.RUnlock()

	timestamp := time.Now().Format(timeFormat)
	formatted := fmt.Sprintf("[%s] %s [snowkit] %s", timestamp, level.String(), msg)

	if len(keysAndValues) > 0 {
		var pairs []string
		for i := 0; i+1 < len(keysAndValues); i += 2 {
			key := fmt.Sprintf("%v", keysAndValues[i])
			value := fmt.Sprintf("%v", keysAndValues[i+1])
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
		}
		if len(pairs) > 0 {
			formatted += " | " + strings.Join(pairs, " ")
		}
	}

	return formatted
}

func (c *ConsoleLogger) Debug(msg string, keysAndValues ...interface{}) {
	if c.enabled(LogLevelDebug) {
		c.debugLog.Println(c.formatMessage(LogLevelDebug, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) Info(msg string, keysAndValues ...interface{}) {
	if c.enabled(LogLevelInfo) {
		c.infoLog.Println(c.formatMessage(LogLevelInfo, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) Warn(msg string, keysAndValues ...interface{}) {
	if c.enabled(LogLevelWarn) {
		c.warnLog.Println(c.formatMessage(LogLevelWarn, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) Error(msg string, keysAndValues ...interface{}) {
	if c.enabled(LogLevelError) {
		c.errorLog.Println(c.formatMessage(LogLevelError, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) IsDebugEnabled() bool { return c.enabled(LogLevelDebug) }
func (c *ConsoleLogger) IsInfoEnabled() bool  { return c.enabled(LogLevelInfo) }

// LogWithCategory logs under a category, honoring its level override. The
// category appears in the output between the library tag and the message.
func (c *ConsoleLogger) LogWithCategory(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{}) {
	if !c.shouldLog(level, category) {
		return
	}
	line := c.formatMessage(level, fmt.Sprintf("[%s] %s", category, msg), keysAndValues...)
	switch level {
	case LogLevelDebug:
		c.debugLog.Println(line)
	case LogLevelInfo:
		c.infoLog.Println(line)
	case LogLevelWarn:
		c.warnLog.Println(line)
	case LogLevelError:
		c.errorLog.Println(line)
	}
}

// IsCategoryEnabled returns true if the category emits at any level
func (c *ConsoleLogger) IsCategoryEnabled(category LogCategory) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if categoryLevel, ok := c.categoryLevels[category]; ok {
		return categoryLevel != LogLevelOff
	}
	return c.level != LogLevelOff
}

// SetCategoryLevel overrides the minimum level for one category
func (c *ConsoleLogger) SetCategoryLevel(category LogCategory, level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.categoryLevels == nil {
		c.categoryLevels = make(map[LogCategory]LogLevel)
	}
	c.categoryLevels[category] = level
}

func (c *ConsoleLogger) enabled(level LogLevel) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level <= level
}

func (c *ConsoleLogger) shouldLog(level LogLevel, category LogCategory) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if categoryLevel, ok := c.categoryLevels[category]; ok {
		return categoryLevel <= level
	}
	return c.level <= level
}

// StructuredLogger writes one JSON object per log entry
type StructuredLogger struct {
	Level          LogLevel
	Output         io.Writer
	CategoryLevels map[LogCategory]LogLevel
	mu             sync.Mutex
}

type structuredEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Category  string                 `json:"category,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (s *StructuredLogger) logAt(level LogLevel, msg string, keysAndValues ...interface{}) {
	s.write(level, "", msg, keysAndValues...)
}

func (s *StructuredLogger) write(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if categoryLevel, ok := s.CategoryLevels[category]; ok {
		if categoryLevel > level {
			return
		}
	} else if s.Level > level {
		return
	}

	entry := structuredEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Category:  string(category),
		Message:   msg,
	}
	if len(keysAndValues) > 1 {
		entry.Fields = make(map[string]interface{}, len(keysAndValues)/2)
		for i := 0; i+1 < len(keysAndValues); i += 2 {
			entry.Fields[fmt.Sprintf("%v", keysAndValues[i])] = keysAndValues[i+1]
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = s.Output.Write(append(data, '\n'))
}

// LogWithCategory logs under a category, honoring its level override.
func (s *StructuredLogger) LogWithCategory(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{}) {
	s.write(level, category, msg, keysAndValues...)
}

// IsCategoryEnabled returns true if the category emits at any level
func (s *StructuredLogger) IsCategoryEnabled(category LogCategory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if categoryLevel, ok := s.CategoryLevels[category]; ok {
		return categoryLevel != LogLevelOff
	}
	return s.Level != LogLevelOff
}

// SetCategoryLevel overrides the minimum level for one category
func (s *StructuredLogger) SetCategoryLevel(category LogCategory, level LogLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CategoryLevels == nil {
		s.CategoryLevels = make(map[LogCategory]LogLevel)
	}
	s.CategoryLevels[category] = level
}

func (s *StructuredLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.logAt(LogLevelDebug, msg, keysAndValues...)
}

func (s *StructuredLogger) Info(msg string, keysAndValues ...interface{}) {
	s.logAt(LogLevelInfo, msg, keysAndValues...)
}

func (s *StructuredLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.logAt(LogLevelWarn, msg, keysAndValues...)
}

func (s *StructuredLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logAt(LogLevelError, msg, keysAndValues...)
}

func (s *StructuredLogger) IsDebugEnabled() bool { return s.Level <= LogLevelDebug }
func (s *StructuredLogger) IsInfoEnabled() bool  { return s.Level <= LogLevelInfo }
