package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log line.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	globalLevel LogLevel = INFO
	mu          sync.RWMutex

	// file logging (enabled at DEBUG level)
	fileLogger  *log.Logger
	logFile     *os.File
	currentDate string
	fileMu      sync.Mutex
	logDir      = "logs"

	globalLocation *time.Location = time.Local
	locationMu     sync.RWMutex
)

// String returns the level name.
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a level name, defaulting to INFO.
func ParseLogLevel(level string) LogLevel {
	level = strings.ToUpper(strings.TrimSpace(level))
	switch level {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// SetLevel sets the global log level. DEBUG also enables file logging.
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	globalLevel = level

	if level == DEBUG {
		initFileLogger()
	} else {
		closeFileLogger()
	}
}

// GetLevel returns the global log level.
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return globalLevel
}

// SetLocation sets the timezone used for log timestamps.
func SetLocation(loc *time.Location) {
	locationMu.Lock()
	defer locationMu.Unlock()
	globalLocation = loc
}

func location() *time.Location {
	locationMu.RLock()
	defer locationMu.RUnlock()
	return globalLocation
}

// initFileLogger opens the per-day log file. Caller note: failures fall
// back to console-only logging, they never abort the program.
func initFileLogger() {
	fileMu.Lock()
	defer fileMu.Unlock()

	today := time.Now().In(location()).Format("2006-01-02")
	if fileLogger != nil && currentDate == today {
		return
	}

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Printf("[WARN] failed to create log directory: %v, logging to console only", err)
		return
	}

	logFileName := filepath.Join(logDir, fmt.Sprintf("app-trademantra-%s.log", today))
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("[WARN] failed to open log file: %v, logging to console only", err)
		return
	}

	logFile = file
	currentDate = today
	fileLogger = log.New(file, "", 0)

	log.Printf("[INFO] file logging enabled: %s", logFileName)
}

func closeFileLogger() {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		fileLogger = nil
		currentDate = ""
	}
}

// checkAndRotateLog rotates the file when the date changes.
// Must be called with fileMu held.
func checkAndRotateLog() {
	today := time.Now().In(location()).Format("2006-01-02")
	if currentDate == today {
		return
	}

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return
	}

	logFileName := filepath.Join(logDir, fmt.Sprintf("app-trademantra-%s.log", today))
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}

	logFile = file
	currentDate = today
	fileLogger = log.New(file, "", 0)
}

// Close closes the file logger. Call on shutdown.
func Close() {
	closeFileLogger()
}

func shouldLog(level LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= globalLevel
}

func logf(level LogLevel, format string, args ...interface{}) {
	if !shouldLog(level) {
		return
	}
	prefix := fmt.Sprintf("[%s] ", level.String())
	message := fmt.Sprintf(prefix+format, args...)

	log.Printf(prefix+format, args...)

	if GetLevel() == DEBUG {
		fileMu.Lock()
		checkAndRotateLog()
		if fileLogger != nil {
			fileLogger.Printf("%s %s", time.Now().In(location()).Format("2006/01/02 15:04:05"), message)
		}
		fileMu.Unlock()
	}
}

// Debug logs at DEBUG level.
func Debug(format string, args ...interface{}) {
	logf(DEBUG, format, args...)
}

// Info logs at INFO level.
func Info(format string, args ...interface{}) {
	logf(INFO, format, args...)
}

// Warn logs at WARN level.
func Warn(format string, args ...interface{}) {
	logf(WARN, format, args...)
}

// Error logs at ERROR level.
func Error(format string, args ...interface{}) {
	logf(ERROR, format, args...)
}

// Fatal logs at FATAL level and exits.
func Fatal(format string, args ...interface{}) {
	logf(FATAL, format, args...)
	os.Exit(1)
}
