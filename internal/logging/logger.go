package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int32

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
	// OFF отключает вывод в соответствующий приёмник
	OFF
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из конфигурации ("debug", "INFO", ...)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "OFF", "NONE":
		return OFF, nil
	default:
		return INFO, fmt.Errorf("неизвестный уровень логирования %q", s)
	}
}

// Options задаёт приёмники и уровни логгера
type Options struct {
	Dir          string    // Каталог для файлов логов; пусто - без файла
	Console      io.Writer // Консольный приёмник; nil - os.Stdout
	ConsoleLevel LogLevel  // Минимальный уровень для консоли
	FileLevel    LogLevel  // Минимальный уровень для файла
}

// DefaultOptions возвращает настройки по умолчанию: консоль INFO, файл DEBUG в ./logs
func DefaultOptions() Options {
	return Options{
		Dir:          "logs",
		ConsoleLevel: INFO,
		FileLevel:    DEBUG,
	}
}

// Logger представляет логгер отдельного компонента
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel atomic.Int32
	minFileLevel    atomic.Int32
	closeOnce       sync.Once
}

// defaultLogger используется пакетными функциями Info/Debug/...
// До InitDefaultLogger пишет в stderr начиная с INFO.
var (
	defaultLogger   = newConsoleLogger("", os.Stderr, INFO)
	defaultLoggerMu sync.RWMutex
)

func newConsoleLogger(component string, w io.Writer, level LogLevel) *Logger {
	l := &Logger{
		component:     component,
		consoleLogger: log.New(w, "", log.LstdFlags),
	}
	l.minConsoleLevel.Store(int32(level))
	l.minFileLevel.Store(int32(OFF))
	return l
}

// NewLogger создаёт логгер компонента с настройками менеджера
func NewLogger(component string) (*Logger, error) {
	return NewLoggerWithOptions(component, GetLoggerManager().options())
}

// NewLoggerWithOptions создаёт логгер компонента с явными настройками
func NewLoggerWithOptions(component string, opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	l := newConsoleLogger(component, console, opts.ConsoleLevel)
	if opts.Dir == "" || opts.FileLevel >= OFF {
		return l, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", opts.Dir, err)
	}

	// Файл с временной меткой, как и раньше: <component>_2006-01-02_15-04-05.log
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	name := component
	if name == "" {
		name = "voxelworld"
	}
	filename := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", name, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	l.minFileLevel.Store(int32(opts.FileLevel))
	return l, nil
}

// Component возвращает имя компонента логгера
func (l *Logger) Component() string {
	return l.component
}

// SetLevels меняет минимальные уровни консоли и файла
func (l *Logger) SetLevels(consoleLevel, fileLevel LogLevel) {
	l.minConsoleLevel.Store(int32(consoleLevel))
	l.minFileLevel.Store(int32(fileLevel))
}

// Enabled сообщает, попадёт ли сообщение уровня level хоть в один приёмник
func (l *Logger) Enabled(level LogLevel) bool {
	if int32(level) >= l.minConsoleLevel.Load() {
		return true
	}
	return l.fileLogger != nil && int32(level) >= l.minFileLevel.Load()
}

// Close закрывает файл логов, если он был открыт
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

func (l *Logger) Trace(format string, args ...interface{}) { l.logMessage(TRACE, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.logMessage(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logMessage(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logMessage(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.logMessage(ERROR, format, args...) }

// logMessage внутренняя функция для логирования
func (l *Logger) logMessage(level LogLevel, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	var message string
	if l.component != "" {
		message = fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))
	} else {
		message = fmt.Sprintf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
	}

	if l.fileLogger != nil && int32(level) >= l.minFileLevel.Load() {
		l.fileLogger.Println(message)
	}
	if int32(level) >= l.minConsoleLevel.Load() {
		l.consoleLogger.Println(message)
	}
}

// InitDefaultLogger инициализирует логгер по умолчанию
func InitDefaultLogger(component string, opts Options) error {
	l, err := NewLoggerWithOptions(component, opts)
	if err != nil {
		return err
	}

	defaultLoggerMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultLoggerMu.Unlock()

	_ = prev.Close()
	return nil
}

// CloseDefaultLogger закрывает логгер по умолчанию и возвращается к stderr
func CloseDefaultLogger() {
	defaultLoggerMu.Lock()
	prev := defaultLogger
	defaultLogger = newConsoleLogger("", os.Stderr, INFO)
	defaultLoggerMu.Unlock()

	_ = prev.Close()
}

// Default возвращает текущий логгер по умолчанию
func Default() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE
func Trace(format string, args ...interface{}) {
	Default().logMessage(TRACE, format, args...)
}

// Debug логирует сообщение уровня DEBUG
func Debug(format string, args ...interface{}) {
	Default().logMessage(DEBUG, format, args...)
}

// Info логирует сообщение уровня INFO
func Info(format string, args ...interface{}) {
	Default().logMessage(INFO, format, args...)
}

// Warn логирует сообщение уровня WARN
func Warn(format string, args ...interface{}) {
	Default().logMessage(WARN, format, args...)
}

// Error логирует сообщение уровня ERROR
func Error(format string, args ...interface{}) {
	Default().logMessage(ERROR, format, args...)
}

// LogChunkGenerated логирует генерацию чанка
func LogChunkGenerated(l *Logger, chunkX, chunkZ int, took time.Duration) {
	l.Trace("Chunk generated: chunk(%d,%d) in %s", chunkX, chunkZ, took)
}

// LogMeshBuilt логирует перестроение меша чанка
func LogMeshBuilt(l *Logger, chunkX, chunkZ int, vertexCount, indexCount int) {
	l.Trace("Mesh rebuilt: chunk(%d,%d) with %d vertices, %d indices",
		chunkX, chunkZ, vertexCount, indexCount)
}
