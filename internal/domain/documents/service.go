// Package documents accepts uploaded PDFs, extracts their text and hands
// it to a Summarizer. Nothing is stored: the text is dropped once the
// summary is produced.
package documents

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrMissingFile   = errors.New("a PDF file is required")
	ErrNotPDF        = errors.New("only PDF files are accepted")
	ErrFileTooLarge  = errors.New("file exceeds maximum allowed size")
	ErrExtractFailed = errors.New("could not extract text from PDF")
)

// DefaultMaxSize is used when the service is built with a non-positive
// limit (20 MB).
const DefaultMaxSize = 20 << 20

var pdfMagic = []byte("%PDF-")

// Result describes an ingested document. The extracted text itself is
// not part of it.
type Result struct {
	FileName   string  `json:"file_name"`
	Size       int64   `json:"size"`
	Pages      int     `json:"pages"`
	SHA256     string  `json:"sha256"`
	TextLength int     `json:"text_length"`
	Summary    Summary `json:"summary"`
}

// Recorder receives ingestion outcomes for metrics.
type Recorder interface {
	DocumentIngested(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) DocumentIngested(string) {}

type Service struct {
	extractor  TextExtractor
	summarizer Summarizer
	maxSize    int64
	recorder   Recorder
	logger     zerolog.Logger
}

func NewService(extractor TextExtractor, summarizer Summarizer, maxSize int64, recorder Recorder, logger zerolog.Logger) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		extractor:  extractor,
		summarizer: summarizer,
		maxSize:    maxSize,
		recorder:   recorder,
		logger:     logger.With().Str("component", "documents").Logger(),
	}
}

func (s *Service) MaxSize() int64 { return s.maxSize }

// Ingest accepts exactly one PDF, extracts its text and summarizes it.
func (s *Service) Ingest(ctx context.Context, fileName, contentType string, content io.Reader) (*Result, error) {
	res, err := s.ingest(ctx, fileName, contentType, content)
	s.observe(res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Reject accounts for an upload refused before Ingest could read it and
// returns err unchanged.
func (s *Service) Reject(err error) error {
	s.observe(nil, err)
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrNotPDF):
		return "not_pdf"
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, ErrMissingFile):
		return "missing"
	default:
		return "failed"
	}
}

func (s *Service) observe(res *Result, err error) {
	outcome := outcomeOf(err)
	s.recorder.DocumentIngested(outcome)

	if err != nil {
		s.logger.Warn().Err(err).Str("outcome", outcome).Msg("document rejected")
		return
	}
	s.logger.Info().
		Str("sha256", res.SHA256).
		Int64("size", res.Size).
		Int("pages", res.Pages).
		Bool("summary_available", res.Summary.Available).
		Msg("document ingested")
}

func (s *Service) ingest(ctx context.Context, fileName, contentType string, content io.Reader) (*Result, error) {
	if fileName == "" || content == nil {
		return nil, ErrMissingFile
	}
	if !looksLikePDF(fileName, contentType) {
		return nil, ErrNotPDF
	}
	fileName = filepath.Base(fileName)

	data, tooLarge, err := readLimited(content, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if tooLarge {
		return nil, ErrFileTooLarge
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, ErrNotPDF
	}

	text, pages, err := s.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	summary, err := s.summarizer.Summarize(ctx, Document{FileName: fileName, Pages: pages, Text: text})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return &Result{
		FileName:   fileName,
		Size:       int64(len(data)),
		Pages:      pages,
		SHA256:     fmt.Sprintf("%x", sha256.Sum256(data)),
		TextLength: len(text),
		Summary:    summary,
	}, nil
}

// looksLikePDF accepts a declared application/pdf type, or a .pdf name
// when the browser sent a generic type.
func looksLikePDF(fileName, contentType string) bool {
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil && mt == "application/pdf" {
			return true
		}
		if err == nil && mt != "application/octet-stream" {
			return false
		}
	}
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}
