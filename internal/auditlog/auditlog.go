// Package auditlog writes an append-only daily record of every
// derivation the engine performs. One JSON line per event, grouped
// into per-day files, with old files compressed in place.
package auditlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu sync.Mutex

	dirMu sync.Mutex
	dir   string
)

// SetDir points the audit trail at an explicit directory, normally the
// one from the loaded configuration. It takes precedence over the
// AUDIT_LOG_DIR environment variable.
func SetDir(d string) {
	dirMu.Lock()
	defer dirMu.Unlock()
	dir = d
}

// DerivationEntry records one stock derivation: the inputs it saw and
// the signals it produced.
type DerivationEntry struct {
	Time       string             `json:"time"`
	Symbol     string             `json:"symbol"`
	Exchange   string             `json:"exchange"`
	Indicators map[string]string  `json:"indicators"`
	Signals    map[string]string  `json:"signals"`
	Inputs     map[string]float64 `json:"inputs,omitempty"`
	Extra      map[string]any     `json:"extra,omitempty"`
}

// ClassificationEntry records one news classification.
type ClassificationEntry struct {
	Time       string  `json:"time"`
	Headline   string  `json:"headline"`
	Source     string  `json:"source"`
	Scope      string  `json:"scope"`
	NewsType   string  `json:"news_type"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
	FactCount  int     `json:"fact_count"`
}

func logDir() string {
	dirMu.Lock()
	defer dirMu.Unlock()
	if dir != "" {
		return dir
	}
	if v := os.Getenv("AUDIT_LOG_DIR"); v != "" {
		return v
	}
	return "audit"
}

func dailyFilepath(t time.Time, kind string) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), kind, d+".jsonl")
}

// AppendDerivation appends a stock derivation event to today's file.
func AppendDerivation(e DerivationEntry) error {
	now := time.Now().UTC()
	e.Time = now.Format(time.RFC3339)
	return appendLine(dailyFilepath(now, "derivations"), e)
}

// AppendClassification appends a news classification event to today's file.
func AppendClassification(e ClassificationEntry) error {
	now := time.Now().UTC()
	e.Time = now.Format(time.RFC3339)
	return appendLine(dailyFilepath(now, "classifications"), e)
}

func appendLine(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips audit files older than retentionDays. Files that
// already have a compressed twin lose the uncompressed original.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, err := os.Stat(p)
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			return os.Remove(p)
		}
		if err := gzipFile(p, gz); err != nil {
			return nil
		}
		return os.Remove(p)
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}
