package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbsmedya/minebench/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string // String representation of zapcore.Level
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"}, // empty defaults to info
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"}, // unknown defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test-log.json")

	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name: "json format info level",
			cfg: &config.LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
		{
			name: "text format debug level",
			cfg: &config.LoggingConfig{
				Level:  "debug",
				Format: "text",
				Output: "stderr",
			},
			wantErr: false,
		},
		{
			name: "file output",
			cfg: &config.LoggingConfig{
				Level:  "warn",
				Format: "json",
				Output: logFile,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if logger == nil && !tt.wantErr {
				t.Error("New() returned nil logger without error")
			}
			if logger != nil {
				_ = logger.Sync()
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	if logger == nil {
		t.Fatal("NewDefault() returned nil")
	}

	// Should be able to log without panic
	logger.Info("test message")
	_ = logger.Sync()
}

func TestWithAlgorithm(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	algoLogger := logger.WithAlgorithm("apriori")
	if algoLogger == nil {
		t.Fatalf("WithAlgorithm() returned nil")
	}

	if algoLogger == logger {
		t.Error("WithAlgorithm() should return a new logger instance")
	}

	// Should be able to log without panic
	algoLogger.Info("test with algorithm")
	_ = logger.Sync()
}

func TestWithSupport(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	supportLogger := logger.WithSupport(2.5)
	if supportLogger == nil {
		t.Fatalf("WithSupport() returned nil")
	}

	// Should be able to log without panic
	supportLogger.Info("test with support")
	_ = logger.Sync()
}

func TestWithSweep(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	sweepLogger := logger.WithSweep("0c94a3a1")
	if sweepLogger == nil {
		t.Fatalf("WithSweep() returned nil")
	}

	// Should be able to log without panic
	sweepLogger.Info("test with sweep")
	_ = logger.Sync()
}

func TestWithFields(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	fields := map[string]interface{}{
		"dataset": "data/market.dat",
		"runs":    20,
	}

	fieldLogger := logger.WithFields(fields)
	if fieldLogger == nil {
		t.Fatalf("WithFields() returned nil")
	}

	// Should be able to log without panic
	fieldLogger.Info("test with fields")
	_ = logger.Sync()
}

func TestChaining(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Chain multiple context methods
	chainedLogger := logger.WithAlgorithm("eclat").WithSupport(10).WithSweep("0c94a3a1")
	if chainedLogger == nil {
		t.Fatalf("Chained logger is nil")
	}

	// Should be able to log without panic
	chainedLogger.Info("test chained context")
	_ = logger.Sync()
}

func TestBuildEncoder(t *testing.T) {
	// Test JSON encoder
	jsonEncoder := buildEncoder("json")
	if jsonEncoder == nil {
		t.Error("buildEncoder('json') returned nil")
	}

	// Test text/console encoder
	textEncoder := buildEncoder("text")
	if textEncoder == nil {
		t.Error("buildEncoder('text') returned nil")
	}

	// Test default (unknown format should return text)
	defaultEncoder := buildEncoder("unknown")
	if defaultEncoder == nil {
		t.Error("buildEncoder('unknown') returned nil")
	}
}

func TestBuildWriters(t *testing.T) {
	// Test stdout
	stdoutWriter := buildWriters("stdout")
	if stdoutWriter == nil {
		t.Error("buildWriters('stdout') returned nil")
	}

	// Test stderr
	stderrWriter := buildWriters("stderr")
	if stderrWriter == nil {
		t.Error("buildWriters('stderr') returned nil")
	}

	// Test empty string (defaults to stderr)
	emptyWriter := buildWriters("")
	if emptyWriter == nil {
		t.Error("buildWriters('') returned nil")
	}

	// Test file output
	fileWriter := buildWriters(filepath.Join(t.TempDir(), "test-logger-output.log"))
	if fileWriter == nil {
		t.Error("buildWriters(file) returned nil")
	}
}

func TestLoggingOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "minebench-test.json")

	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: logFile,
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Log some messages
	logger.Info("test info message")
	logger.Warn("test warn message")
	logger.WithAlgorithm("apriori").WithSupport(5).Info("message with run context")

	_ = logger.Sync()

	// Read the log file
	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	// Verify content contains our messages
	contentStr := string(content)
	if !strings.Contains(contentStr, "test info message") {
		t.Error("Log file should contain 'test info message'")
	}
	if !strings.Contains(contentStr, "test warn message") {
		t.Error("Log file should contain 'test warn message'")
	}
	if !strings.Contains(contentStr, "apriori") {
		t.Error("Log file should contain algorithm context 'apriori'")
	}
	if !strings.Contains(contentStr, "support_pct") {
		t.Error("Log file should contain 'support_pct' field")
	}
}
