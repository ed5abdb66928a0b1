package records

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/54b3r/microagents-go/internal/ingestion"
	"github.com/54b3r/microagents-go/internal/logging"
)

// Layout of the data directory.
const (
	aqiDir    = "aqi"
	docsDir   = "pdfs"
	videoFile = "youtube.csv"
)

// Store reads datasets from a data directory laid out as:
//
//	<root>/aqi/*.json     one AQIRecord per file
//	<root>/pdfs/*.txt     plain-text documents
//	<root>/pdfs/*.pdf     PDF documents (text layer only)
//	<root>/youtube.csv    video performance metadata
type Store struct {
	root string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the data directory.
func (s *Store) Root() string { return s.root }

// Ping reports whether the data directory exists and is readable.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("records: data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("records: data dir %q is not a directory", s.root)
	}
	return nil
}

func (s *Store) aqiFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.root, aqiDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("records: list AQI files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// AvailableAQI returns the base names of the AQI record files.
func (s *Store) AvailableAQI(_ context.Context) ([]string, error) {
	files, err := s.aqiFiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return names, nil
}

// LookupAQI returns the first record for city (case-insensitive) on date.
// Files that cannot be read or parsed are skipped and logged. Returns
// ErrNotFound when nothing matches.
func (s *Store) LookupAQI(ctx context.Context, city, date string) (AQIRecord, error) {
	files, err := s.aqiFiles()
	if err != nil {
		return AQIRecord{}, err
	}
	log := logging.FromContext(ctx)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return AQIRecord{}, err
		}
		data, err := os.ReadFile(f)
		if err != nil {
			log.Warn("records: skipping unreadable AQI file", slog.String("file", f), slog.Any("error", err))
			continue
		}
		rec, err := ParseAQIRecord(data)
		if err != nil {
			log.Warn("records: skipping malformed AQI file", slog.String("file", f), slog.Any("error", err))
			continue
		}
		if rec.Matches(city, date) {
			return rec, nil
		}
	}
	return AQIRecord{}, fmt.Errorf("%w: AQI record for %s on %s", ErrNotFound, city, date)
}

// LoadDocuments reads every .txt and .pdf file under the documents folder,
// sorted by name. Files that fail to load are skipped and logged, so a single
// bad PDF does not take the corpus down. A missing folder yields no documents.
func (s *Store) LoadDocuments(ctx context.Context) ([]ingestion.Document, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, docsDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: list documents: %w", err)
	}

	log := logging.FromContext(ctx)
	var docs []ingestion.Document
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.root, docsDir, e.Name())

		var text string
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt":
			b, rerr := os.ReadFile(path)
			text, err = string(b), rerr
		case ".pdf":
			text, err = ExtractPDFText(path)
		default:
			continue
		}
		if err != nil {
			log.Warn("records: skipping document", slog.String("file", e.Name()), slog.Any("error", err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Debug("records: skipping empty document", slog.String("file", e.Name()))
			continue
		}
		docs = append(docs, ingestion.Document{SourceID: e.Name(), Text: text})
	}
	return docs, nil
}

// ExtractPDFText returns the plain-text layer of the PDF at path.
func ExtractPDFText(path string) (text string, err error) {
	// The pdf package panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("records: extract PDF text: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("records: open PDF: %w", err)
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("records: extract PDF text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("records: read PDF text: %w", err)
	}
	return buf.String(), nil
}

// LoadVideos reads the video dataset.
func (s *Store) LoadVideos(_ context.Context) ([]Video, error) {
	f, err := os.Open(filepath.Join(s.root, videoFile))
	if err != nil {
		return nil, fmt.Errorf("records: open video dataset: %w", err)
	}
	defer f.Close()
	return ParseVideosCSV(f)
}
