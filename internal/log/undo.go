package log

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

func UndoOperation(op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	switch op.Type {
	case OpLink, OpSymlink:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo %s: destination path missing", op.Type)
			return result
		}

		info, err := os.Lstat(op.DestPath)
		if os.IsNotExist(err) {
			// Already removed
			result.Success = true
			return result
		}
		if err != nil {
			result.Error = fmt.Errorf("failed to stat %s: %w", op.DestPath, err)
			return result
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(op.DestPath)
			if err == nil && target != op.SourcePath {
				result.Error = fmt.Errorf("link target mismatch: expected %s, got %s", op.SourcePath, target)
				return result
			}
		} else if op.Type == OpLink && op.SourcePath != "" {
			src, err := os.Stat(op.SourcePath)
			if err == nil && !os.SameFile(src, info) {
				result.Error = fmt.Errorf("%s is no longer a link to %s", op.DestPath, op.SourcePath)
				return result
			}
		}

		if err := os.Remove(op.DestPath); err != nil {
			result.Error = fmt.Errorf("failed to remove link %s: %w", op.DestPath, err)
			return result
		}
		result.Success = true

	case OpCreateDir:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo directory creation: path missing")
			return result
		}

		info, err := os.Stat(op.DestPath)
		if os.IsNotExist(err) {
			result.Success = true
			return result
		}
		if err != nil {
			result.Error = fmt.Errorf("failed to stat %s: %w", op.DestPath, err)
			return result
		}
		if !info.IsDir() {
			result.Error = fmt.Errorf("path %s is not a directory", op.DestPath)
			return result
		}

		entries, err := os.ReadDir(op.DestPath)
		if err != nil {
			result.Error = fmt.Errorf("failed to read directory %s: %w", op.DestPath, err)
			return result
		}
		if len(entries) > 0 {
			result.Error = fmt.Errorf("cannot remove directory %s: not empty", op.DestPath)
			return result
		}
		if err := os.Remove(op.DestPath); err != nil {
			result.Error = fmt.Errorf("failed to remove directory %s: %w", op.DestPath, err)
			return result
		}
		result.Success = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

// UndoSession reverts the successful operations of session, newest first.
func UndoSession(session *LogSession) (successful int, failed int, errs []error) {
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]
		if !op.Success {
			continue
		}

		result := UndoOperation(op)
		if result.Success {
			successful++
			continue
		}
		failed++
		if result.Error != nil {
			errs = append(errs, result.Error)
		}
	}
	return successful, failed, errs
}

// FindLatestSession returns the newest session and its file.
func FindLatestSession() (*LogSession, string, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		return session, file, nil
	}
	return nil, "", fmt.Errorf("no sessions found")
}

// FindSession returns the session whose id starts with prefix.
func FindSession(prefix string) (*LogSession, string, error) {
	if prefix == "" {
		return FindLatestSession()
	}
	files, err := sessionFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		if strings.HasPrefix(session.Metadata.SessionID, prefix) {
			return session, file, nil
		}
	}
	return nil, "", fmt.Errorf("no session matching %q", prefix)
}

type SessionSummary struct {
	Session      *LogSession
	FilePath     string
	RelativeTime string
}

// GetSessionSummaries lists readable sessions, newest first. Corrupted files
// are skipped.
func GetSessionSummaries() ([]SessionSummary, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		summaries = append(summaries, SessionSummary{
			Session:      session,
			FilePath:     file,
			RelativeTime: formatRelativeTime(session.Metadata.Timestamp, time.Now()),
		})
	}
	return summaries, nil
}

func formatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
