package service

import (
	"context"
	"errors"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/internal/ingestion"
	"github.com/jeovahfialho/faturamento-report/internal/report"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"github.com/jeovahfialho/faturamento-report/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SourceLoader reads one sheet of the workbook a Source points to.
type SourceLoader interface {
	Load(ctx context.Context, src ingestion.Source, sheet string) (*domain.RawTable, error)
}

// Notifier delivers a rendered report by e-mail.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, recipient string, pdf []byte, total decimal.Decimal) error
}

type ReportRequest struct {
	Source  ingestion.Source
	Clients []string
	Start   *time.Time
	End     *time.Time
}

// ReportResult holds everything one run produced. Nothing here outlives
// the request that asked for it.
type ReportResult struct {
	Summary  *domain.Summary
	Artifact domain.ReportArtifact
	PDF      []byte
	XLSX     []byte
}

func (r *ReportResult) Period() string {
	return report.FormatPeriod(r.Artifact.PeriodStart, r.Artifact.PeriodEnd)
}

func (r *ReportResult) FormattedTotal() string {
	return report.FormatCurrency(r.Summary.GrandTotal)
}

type ReportService struct {
	loader      SourceLoader
	aggregation *AggregationService
	notifier    Notifier
	sheet       string
	now         func() time.Time
}

func NewReportService(loader SourceLoader, notifier Notifier, sheet string) *ReportService {
	return &ReportService{
		loader:      loader,
		aggregation: NewAggregationService(),
		notifier:    notifier,
		sheet:       sheet,
		now:         time.Now,
	}
}

// Inspect loads and normalizes the workbook without filtering, which is
// what a caller needs to offer the client and date choices.
func (s *ReportService) Inspect(ctx context.Context, src ingestion.Source) (*domain.DatasetInfo, error) {
	table, err := s.loadTable(ctx, src)
	if err != nil {
		return nil, err
	}

	info := &domain.DatasetInfo{
		Sheet:   s.sheet,
		Rows:    len(table.Orders),
		Columns: table.Columns,
		Clients: table.Clients(),
	}
	if min, max, ok := table.DateExtent(); ok {
		info.FirstDate, info.LastDate = &min, &max
	}
	for _, o := range table.Orders {
		if o.Status == domain.StatusFaturado {
			info.Faturados++
		}
		if !o.HasDate() {
			info.SemData++
		}
	}

	return info, nil
}

// Generate runs the whole pipeline once: load, normalize, select,
// aggregate, then render the chart, the PDF and the summary workbook.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	result, err := s.generate(ctx, req)
	if err != nil {
		metrics.RecordReport(reportStatus(err))
		return nil, err
	}

	metrics.RecordReport("success")
	return result, nil
}

func (s *ReportService) generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	total := metrics.NewTimer()

	table, err := s.loadTable(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sel := ReconcileSelection(table, req.Clients, req.Start, req.End, now)

	summary, err := s.aggregation.Summarize(table, sel)
	if err != nil {
		logger.Info("nenhum pedido para os filtros",
			zap.Strings("clients", sel.Clients),
			zap.Time("start", sel.Start),
			zap.Time("end", sel.End))
		return nil, err
	}

	timer := metrics.NewTimer()
	chartPNG, err := report.RenderChart(summary.Clients)
	if err != nil {
		return nil, err
	}
	timer.ObserveStage("chart")

	artifact := domain.ReportArtifact{
		PeriodStart: sel.Start,
		PeriodEnd:   sel.End,
		GrandTotal:  summary.GrandTotal,
		Chart:       chartPNG,
		GeneratedAt: now,
	}

	timer = metrics.NewTimer()
	pdf, err := report.RenderPDF(artifact)
	if err != nil {
		return nil, err
	}
	timer.ObserveStage("pdf")

	timer = metrics.NewTimer()
	xlsx, err := report.ExportSummary(summary.Clients)
	if err != nil {
		return nil, err
	}
	timer.ObserveStage("xlsx")

	logger.Info("relatório gerado",
		zap.String("source", req.Source.String()),
		zap.Int("clientes", len(summary.Clients)),
		zap.Int("pedidos", summary.Orders),
		zap.String("total", summary.GrandTotal.StringFixed(2)),
		zap.Duration("elapsed", total.Elapsed()))

	return &ReportResult{
		Summary:  summary,
		Artifact: artifact,
		PDF:      pdf,
		XLSX:     xlsx,
	}, nil
}

// Send mails the PDF of a generated report.
func (s *ReportService) Send(ctx context.Context, recipient string, result *ReportResult) error {
	if s.notifier == nil {
		return domain.ErrCredentialsMissing
	}
	return s.notifier.Send(ctx, recipient, result.PDF, result.Summary.GrandTotal)
}

// MailEnabled reports whether Send can work at all.
func (s *ReportService) MailEnabled() bool {
	return s.notifier != nil && s.notifier.Enabled()
}

func (s *ReportService) loadTable(ctx context.Context, src ingestion.Source) (*domain.OrderTable, error) {
	raw, err := s.loader.Load(ctx, src, s.sheet)
	if err != nil {
		return nil, err
	}
	return ingestion.Normalize(raw)
}

func reportStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, domain.ErrSheetNotFound), errors.Is(err, domain.ErrParse):
		return "parse_error"
	case errors.Is(err, domain.ErrMissingColumns):
		return "missing_columns"
	case errors.Is(err, domain.ErrEmptyResult):
		return "empty"
	default:
		return "error"
	}
}
