package service

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ludo-technologies/hunkscope/domain"
)

// Checkpoint appends completed defect results to a JSON Lines file so an
// interrupted sweep can resume. Append is safe for concurrent use.
type Checkpoint struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// OpenCheckpoint opens (creating if needed) the checkpoint file for appending
func OpenCheckpoint(path string) (*Checkpoint, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.NewOutputError(fmt.Sprintf("failed to create checkpoint directory %s", dir), err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, domain.NewOutputError(fmt.Sprintf("failed to open checkpoint %s", path), err)
	}
	return &Checkpoint{path: path, file: f}, nil
}

// Path returns the checkpoint file path
func (c *Checkpoint) Path() string {
	return c.path
}

// Append writes one result as a single line
func (c *Checkpoint) Append(result domain.DefectResult) error {
	line, err := json.Marshal(result)
	if err != nil {
		return domain.NewOutputError("failed to encode checkpoint entry", err)
	}
	line = append(line, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return domain.NewOutputError("checkpoint is closed", nil)
	}
	if _, err := c.file.Write(line); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write checkpoint %s", c.path), err)
	}
	return nil
}

// Close closes the underlying file
func (c *Checkpoint) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// LoadCheckpoint reads the completed results of a previous run, keyed by
// defect id. A missing file yields an empty map. Lines that do not decode,
// such as a line truncated by a crash, are skipped. Later lines win.
func LoadCheckpoint(path string) (map[string]domain.DefectResult, error) {
	done := make(map[string]domain.DefectResult)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return done, nil
	}
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var result domain.DefectResult
		if err := json.Unmarshal(raw, &result); err != nil || result.Defect.ID == "" {
			slog.Warn("Skipping corrupt checkpoint line", "path", path, "line", lineNo)
			continue
		}
		done[result.Defect.ID] = result
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("failed to read checkpoint %s", path), err)
	}
	return done, nil
}
