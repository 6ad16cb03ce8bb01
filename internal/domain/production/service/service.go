// Package service orchestrates a report analysis: PDF extraction, row
// parsing, interval construction and aggregation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/interval"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/parser"
	"github.com/FACorreiaa/mtr03-counter/pkg/metrics"
)

var (
	// ErrNoData is returned when no production row was found in the PDF.
	ErrNoData = errors.New("no valid lines found in PDF")
	// ErrInvalidInput wraps validation failures of AnalyzeInput.
	ErrInvalidInput = errors.New("invalid input")
)

// Status messages reported through Callbacks.Status.
const (
	StatusStart      = "Iniciando leitura do PDF..."
	StatusExtracted  = "%d linhas extraídas do PDF."
	StatusPreprocess = "Processando linhas (pré-processamento)..."
	StatusAggregate  = "Calculando intervalos..."
	StatusDone       = "Cálculo concluído."
	// NoDataMessage is shown to users when ErrNoData is returned.
	NoDataMessage = "Nenhuma linha válida encontrada no PDF."
)

// Mode selects how intervals are built.
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeAutomatic Mode = "automatic"
)

// Input limits.
const (
	MinYear     = 2000
	MaxYear     = 2100
	MaxCount    = 500
	MaxSpanDays = 365
)

// AnalyzeInput selects the report year and the intervals to aggregate.
// Manual mode uses [Start, End]; automatic mode builds Count intervals of
// Days days each from Start.
type AnalyzeInput struct {
	Year  int       `validate:"required,min=2000,max=2100"`
	Mode  Mode      `validate:"required,oneof=manual automatic"`
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required_if=Mode manual"`
	Count int       `validate:"required_if=Mode automatic,omitempty,min=1,max=500"`
	Days  int       `validate:"required_if=Mode automatic,omitempty,min=1,max=365"`
}

// Intervals returns the intervals the input selects.
func (in AnalyzeInput) Intervals() []production.Interval {
	if in.Mode == ModeAutomatic {
		return interval.Generate(in.Start, in.Count, in.Days)
	}
	return []production.Interval{interval.New(in.Start, in.End)}
}

// Callbacks receives progress and status updates. Both are optional.
type Callbacks struct {
	Progress func(current, total int)
	Status   func(msg string)
}

func (c Callbacks) status(msg string) {
	if c.Status != nil {
		c.Status(msg)
	}
}

func (c Callbacks) progress(cur, total int) {
	if c.Progress != nil {
		c.Progress(cur, total)
	}
}

// Report is the outcome of an analysis.
type Report struct {
	Results       []production.Result
	Pages         int
	SkippedPages  int
	Lines         int // Lines that matched the row filter
	Records       int // Lines with a valid date
	NullCountRows int
	Total         decimal.Decimal
	Good          decimal.Decimal
}

// Extractor pulls the candidate row lines out of a PDF.
type Extractor interface {
	ExtractLinesFromBytes(ctx context.Context, data []byte, opts parser.ExtractOptions) (*parser.ExtractResult, error)
}

// AnalysisService runs report analyses.
type AnalysisService struct {
	extractor Extractor
	validate  *validator.Validate
	metrics   *metrics.Metrics // Optional: nil records nothing
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(extractor Extractor, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		extractor: extractor,
		validate:  validator.New(),
		tracer:    otel.Tracer("github.com/FACorreiaa/mtr03-counter/production"),
		logger:    logger,
	}
}

// WithMetrics adds Prometheus instrumentation to the service
func (s *AnalysisService) WithMetrics(m *metrics.Metrics) *AnalysisService {
	s.metrics = m
	return s
}

// WithTracer replaces the global OpenTelemetry tracer
func (s *AnalysisService) WithTracer(t trace.Tracer) *AnalysisService {
	s.tracer = t
	return s
}

// Validate checks the input against the accepted ranges.
func (s *AnalysisService) Validate(in AnalyzeInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Analyze extracts the production rows of pdfData, parses them for in.Year and
// sums them over the intervals in selects.
func (s *AnalysisService) Analyze(ctx context.Context, pdfData []byte, in AnalyzeInput, cb Callbacks) (report *Report, err error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "production.Analyze", trace.WithAttributes(
		attribute.String("mode", string(in.Mode)),
		attribute.Int("year", in.Year),
		attribute.Int("pdf.bytes", len(pdfData)),
	))
	defer func() {
		outcome := metrics.OutcomeOK
		switch {
		case errors.Is(err, ErrNoData):
			outcome = metrics.OutcomeNoData
		case errors.Is(err, ErrInvalidInput):
			outcome = metrics.OutcomeInvalidInput
		case err != nil:
			outcome = metrics.OutcomeError
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		s.metrics.ObserveAnalysis(string(in.Mode), outcome, time.Since(started))
	}()

	if err := s.Validate(in); err != nil {
		return nil, err
	}

	cb.status(StatusStart)
	extracted, err := s.extractor.ExtractLinesFromBytes(ctx, pdfData, parser.ExtractOptions{
		Progress: cb.Progress,
		Status:   cb.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if len(extracted.Lines) == 0 {
		s.logger.Info("no production rows found",
			slog.Int("pages", extracted.Pages),
			slog.Int("skipped_pages", extracted.SkippedPages),
		)
		return nil, ErrNoData
	}
	cb.status(fmt.Sprintf(StatusExtracted, len(extracted.Lines)))

	cb.status(StatusPreprocess)
	parsed := parser.Preprocess(extracted.Lines, in.Year)
	s.metrics.AddExtraction(len(extracted.Lines), parsed.ParsedRows, extracted.SkippedPages)

	cb.status(StatusAggregate)
	intervals := in.Intervals()
	results := interval.AggregateAll(parsed.Records, intervals)
	total, good := interval.Totals(results)

	cb.progress(extracted.Pages, extracted.Pages)
	cb.status(StatusDone)

	span.SetAttributes(
		attribute.Int("lines", len(extracted.Lines)),
		attribute.Int("records", parsed.ParsedRows),
		attribute.Int("intervals", len(results)),
	)
	s.logger.Info("analysis completed",
		slog.String("mode", string(in.Mode)),
		slog.Int("pages", extracted.Pages),
		slog.Int("lines", len(extracted.Lines)),
		slog.Int("records", parsed.ParsedRows),
		slog.Int("null_count_rows", parsed.NullCountRows),
		slog.Int("intervals", len(results)),
		slog.Duration("duration", time.Since(started)),
	)

	return &Report{
		Results:       results,
		Pages:         extracted.Pages,
		SkippedPages:  extracted.SkippedPages,
		Lines:         len(extracted.Lines),
		Records:       parsed.ParsedRows,
		NullCountRows: parsed.NullCountRows,
		Total:         total,
		Good:          good,
	}, nil
}
