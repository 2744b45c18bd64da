package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpLink      OperationType = "link"
	OpSymlink   OperationType = "symlink"
	OpCreateDir OperationType = "create_dir"
)

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path,omitempty"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	WorkingDir    string    `json:"working_dir"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Global singleton session manager
var (
	currentSession *LogSession
	sessionMutex   sync.Mutex
	loggingEnabled = true
)

// StartSession initializes a new logging session
func StartSession(command string, args []string) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	currentSession = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			WorkingDir:  wd,
			Timestamp:   time.Now(),
			SessionID:   uuid.NewString(),
		},
		Operations: []OperationLog{},
	}
	return nil
}

// EndSession saves the current session to disk and returns the file it was
// written to. Sessions without operations are discarded.
func EndSession() (string, error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return "", nil
	}
	session := currentSession
	currentSession = nil
	if len(session.Operations) == 0 {
		return "", nil
	}

	updateStats(session)
	return WriteSession(session)
}

// LogLink logs a hard link operation
func LogLink(sourcePath, destPath string, success bool, err error) {
	LogOperation(OpLink, sourcePath, destPath, success, err)
}

// LogSymlink logs a symbolic link operation
func LogSymlink(sourcePath, destPath string, success bool, err error) {
	LogOperation(OpSymlink, sourcePath, destPath, success, err)
}

// LogCreateDir logs a directory creation
func LogCreateDir(dirPath string, success bool, err error) {
	LogOperation(OpCreateDir, "", dirPath, success, err)
}

// LogOperation logs a generic operation to the current session
func LogOperation(opType OperationType, sourcePath, destPath string, success bool, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return
	}

	op := OperationLog{
		ID:         fmt.Sprintf("%s_%d", currentSession.Metadata.SessionID, len(currentSession.Operations)),
		Timestamp:  time.Now(),
		Type:       opType,
		SourcePath: sourcePath,
		DestPath:   destPath,
		Success:    success,
	}
	if err != nil {
		op.Error = err.Error()
	}
	currentSession.Operations = append(currentSession.Operations, op)
}

func updateStats(session *LogSession) {
	successful := 0
	for _, op := range session.Operations {
		if op.Success {
			successful++
		}
	}
	session.Metadata.TotalOps = len(session.Operations)
	session.Metadata.SuccessfulOps = successful
	session.Metadata.FailedOps = len(session.Operations) - successful
}

// Initialize enables or disables session logging and prunes sessions older
// than retentionDays.
func Initialize(enabled bool, retentionDays int) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	loggingEnabled = enabled
	if !enabled || retentionDays <= 0 {
		return nil
	}
	return cleanupOldLogs(retentionDays)
}

// LogDir returns ~/.bangumi-tidy/logs.
func LogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".bangumi-tidy", "logs"), nil
}

func sessionPath(session *LogSession) (string, error) {
	logDir, err := LogDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	id := session.Metadata.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	filename := fmt.Sprintf("%s_%s.json", session.Metadata.Timestamp.Format("2006-01-02_150405.000"), id)
	return filepath.Join(logDir, filename), nil
}

// WriteSession stores session under LogDir and returns its path.
func WriteSession(session *LogSession) (string, error) {
	if session == nil {
		return "", nil
	}

	logPath, err := sessionPath(session)
	if err != nil {
		return "", fmt.Errorf("failed to get log path: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(logPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return logPath, nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// sessionFiles lists session files newest first.
func sessionFiles() ([]string, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	// File names start with the timestamp.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func cleanupOldLogs(retentionDays int) error {
	files, err := sessionFiles()
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var firstErr error
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to remove old log file %s: %w", file, err)
			}
		}
	}
	return firstErr
}
