package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/varalys/asmscan/internal/types"
)

const logFileName = ".asmscan_audit.jsonl"

type ScanRecord struct {
	Timestamp         time.Time      `json:"timestamp"`
	ScanID            string         `json:"scan_id"`
	Assembly          string         `json:"assembly"`
	AssemblyDigest    string         `json:"assembly_digest,omitempty"`
	EngineVersion     string         `json:"engine_version,omitempty"`
	TotalFindings     int            `json:"total_findings"`
	DisplayedFindings int            `json:"displayed_findings"`
	SeverityCounts    map[string]int `json:"severity_counts"`
	FailOn            string         `json:"fail_on,omitempty"`
	Failed            bool           `json:"failed"`
	Duration          string         `json:"duration"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog returns the audit log for dir. Inside a git checkout the log
// lives under .git so it is never committed by accident.
func NewAuditLog(dir string) *AuditLog {
	gitDir := filepath.Join(dir, ".git")
	logPath := filepath.Join(dir, logFileName)
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "asmscan_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

// Path returns the file the log is written to.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns all records, newest first. Malformed lines are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var record ScanRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", record.Timestamp.Unix())
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DigestFile returns the xxhash64 of the file at path as 16 hex digits.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func CreateScanRecord(
	assembly string,
	allFindings []types.Finding,
	displayed int,
	failOn string,
	failed bool,
	duration time.Duration,
) ScanRecord {
	severityCounts := make(map[string]int)
	for _, f := range allFindings {
		severityCounts[f.Severity.String()]++
	}
	return ScanRecord{
		Timestamp:         time.Now(),
		Assembly:          assembly,
		TotalFindings:     len(allFindings),
		DisplayedFindings: displayed,
		SeverityCounts:    severityCounts,
		FailOn:            failOn,
		Failed:            failed,
		Duration:          duration.String(),
	}
}
