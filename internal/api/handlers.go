package api

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/internal/ingestion"
	"github.com/jeovahfialho/faturamento-report/internal/report"
	"github.com/jeovahfialho/faturamento-report/internal/service"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"go.uber.org/zap"
)

const (
	Version    = "1.0.0"
	dateLayout = "2006-01-02"
)

// errBadRequest marks input the handler itself rejected.
var errBadRequest = errors.New("requisição inválida")

type Handler struct {
	reports   *service.ReportService
	localFile string
	remoteURL string
}

func NewHandler(reports *service.ReportService, localFile, remoteURL string) *Handler {
	return &Handler{
		reports:   reports,
		localFile: localFile,
		remoteURL: remoteURL,
	}
}

// HealthCheck godoc
// @Summary Status da API
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now(),
	})
}

// ReadinessCheck reports which sources and the mail delivery are usable.
// The API is ready as long as at least one data source can be offered.
func (h *Handler) ReadinessCheck(c *fiber.Ctx) error {
	services := map[string]ServiceHealth{
		"local_source":  {Status: "unavailable", Detail: h.localFile},
		"remote_source": {Status: "unavailable"},
		"mail":          {Status: "disabled"},
	}

	if ingestion.LocalAvailable(h.localFile) {
		services["local_source"] = ServiceHealth{Status: "available", Detail: h.localFile}
	}
	if h.remoteURL != "" {
		services["remote_source"] = ServiceHealth{Status: "configured"}
	}
	if h.reports.MailEnabled() {
		services["mail"] = ServiceHealth{Status: "enabled"}
	}

	// upload is always possible
	return c.JSON(HealthResponse{
		Status:    "ready",
		Version:   Version,
		Timestamp: time.Now(),
		Services:  services,
	})
}

// InspectDataset godoc
// @Summary Lista clientes e período disponíveis na planilha
// @Tags report
// @Accept multipart/form-data
// @Produce json
// @Param source formData string false "local, remote ou upload"
// @Param url formData string false "Link da planilha remota"
// @Param file formData file false "Planilha (.xlsx ou .xls)"
// @Success 200 {object} DatasetResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /dataset [post]
func (h *Handler) InspectDataset(c *fiber.Ctx) error {
	start := time.Now()

	src, err := h.parseSource(c)
	if err != nil {
		return h.respondError(c, err)
	}

	info, err := h.reports.Inspect(c.UserContext(), src)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(DatasetResponse{
		Source:         string(src.Origin),
		DatasetInfo:    info,
		ProcessingTime: time.Since(start).String(),
	})
}

// GenerateReport godoc
// @Summary Gera o resumo de faturamento por cliente
// @Tags report
// @Accept multipart/form-data
// @Produce json
// @Param source formData string false "local, remote ou upload"
// @Param url formData string false "Link da planilha remota"
// @Param file formData file false "Planilha (.xlsx ou .xls)"
// @Param clients formData string false "Siglas separadas por vírgula"
// @Param start_date formData string false "Data inicial (YYYY-MM-DD)"
// @Param end_date formData string false "Data final (YYYY-MM-DD)"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /report [post]
func (h *Handler) GenerateReport(c *fiber.Ctx) error {
	start := time.Now()

	req, err := h.parseReportRequest(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.reports.Generate(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	clients := make([]ClientTotal, 0, len(result.Summary.Clients))
	for _, cs := range result.Summary.Clients {
		clients = append(clients, ClientTotal{
			Sigla:      cs.Sigla,
			ValorTotal: cs.ValorTotal,
			Formatted:  report.FormatCurrency(cs.ValorTotal),
		})
	}

	return c.JSON(ReportResponse{
		Source:         string(req.Source.Origin),
		Period:         result.Period(),
		Start:          result.Artifact.PeriodStart.Format(dateLayout),
		End:            result.Artifact.PeriodEnd.Format(dateLayout),
		Clients:        clients,
		GrandTotal:     result.Summary.GrandTotal,
		FormattedTotal: result.FormattedTotal(),
		Orders:         result.Summary.Orders,
		MailEnabled:    h.reports.MailEnabled(),
		ProcessingTime: time.Since(start).String(),
	})
}

// DownloadPDF godoc
// @Summary Baixa o relatório em PDF
// @Tags report
// @Accept multipart/form-data
// @Produce application/pdf
// @Success 200 {file} file
// @Router /report/pdf [post]
func (h *Handler) DownloadPDF(c *fiber.Ctx) error {
	return h.download(c, func(r *service.ReportResult) ([]byte, string, string) {
		return r.PDF, report.DocumentFilename, report.DocumentContentType
	})
}

// DownloadXLSX godoc
// @Summary Baixa o resumo em Excel
// @Tags report
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /report/xlsx [post]
func (h *Handler) DownloadXLSX(c *fiber.Ctx) error {
	return h.download(c, func(r *service.ReportResult) ([]byte, string, string) {
		return r.XLSX, report.SpreadsheetFilename, report.SpreadsheetContentType
	})
}

// DownloadChart godoc
// @Summary Baixa o gráfico de barras em PNG
// @Tags report
// @Accept multipart/form-data
// @Produce image/png
// @Success 200 {file} file
// @Router /report/chart [post]
func (h *Handler) DownloadChart(c *fiber.Ctx) error {
	return h.download(c, func(r *service.ReportResult) ([]byte, string, string) {
		return r.Artifact.Chart, "grafico.png", report.ChartContentType
	})
}

// SendReport godoc
// @Summary Envia o relatório em PDF por e-mail
// @Tags report
// @Accept multipart/form-data
// @Produce json
// @Param recipient formData string true "E-mail do destinatário"
// @Success 200 {object} EmailResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /report/email [post]
func (h *Handler) SendReport(c *fiber.Ctx) error {
	if !h.reports.MailEnabled() {
		return h.respondError(c, domain.ErrCredentialsMissing)
	}

	recipient := strings.TrimSpace(c.FormValue("recipient"))
	if recipient == "" {
		return h.respondError(c, fmt.Errorf("%w: destinatário vazio", domain.ErrInvalidRecipient))
	}

	req, err := h.parseReportRequest(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.reports.Generate(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.reports.Send(c.UserContext(), recipient, result); err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(EmailResponse{
		Status:     "sent",
		Recipient:  recipient,
		Attachment: report.DocumentFilename,
		Total:      result.FormattedTotal(),
	})
}

func (h *Handler) download(c *fiber.Ctx, pick func(*service.ReportResult) ([]byte, string, string)) error {
	req, err := h.parseReportRequest(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.reports.Generate(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	body, filename, contentType := pick(result)

	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}

func (h *Handler) parseReportRequest(c *fiber.Ctx) (service.ReportRequest, error) {
	src, err := h.parseSource(c)
	if err != nil {
		return service.ReportRequest{}, err
	}

	start, err := parseDate(c.FormValue("start_date"))
	if err != nil {
		return service.ReportRequest{}, err
	}
	end, err := parseDate(c.FormValue("end_date"))
	if err != nil {
		return service.ReportRequest{}, err
	}

	return service.ReportRequest{
		Source:  src,
		Clients: splitClients(c.FormValue("clients")),
		Start:   start,
		End:     end,
	}, nil
}

// parseSource picks the workbook for the request. Without an explicit
// source the local file wins when it exists, the remote link otherwise.
func (h *Handler) parseSource(c *fiber.Ctx) (ingestion.Source, error) {
	value := c.FormValue("source")

	var origin ingestion.Origin
	if strings.TrimSpace(value) == "" {
		origin = ingestion.OriginRemote
		if ingestion.LocalAvailable(h.localFile) {
			origin = ingestion.OriginLocal
		}
	} else {
		parsed, err := ingestion.ParseOrigin(value)
		if err != nil {
			return ingestion.Source{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		origin = parsed
	}

	switch origin {
	case ingestion.OriginLocal:
		return ingestion.LocalSource(h.localFile), nil

	case ingestion.OriginRemote:
		url := strings.TrimSpace(c.FormValue("url"))
		if url == "" {
			url = h.remoteURL
		}
		return ingestion.RemoteSource(url), nil

	default:
		fh, err := c.FormFile("file")
		if err != nil {
			return ingestion.Source{}, fmt.Errorf("%w: campo file é obrigatório para upload", errBadRequest)
		}

		f, err := fh.Open()
		if err != nil {
			return ingestion.Source{}, fmt.Errorf("erro ao abrir arquivo enviado: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return ingestion.Source{}, fmt.Errorf("erro ao ler arquivo enviado: %w", err)
		}
		return ingestion.UploadSource(fh.Filename, data), nil
	}
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: data inválida %q (use YYYY-MM-DD)", errBadRequest, value)
	}
	return &parsed, nil
}

func splitClients(value string) []string {
	var clients []string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			clients = append(clients, c)
		}
	}
	return clients
}

func errorStatus(err error) int {
	var delivery *domain.DeliveryError

	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidRecipient):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrSourceUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrSheetNotFound),
		errors.Is(err, domain.ErrParse),
		errors.Is(err, domain.ErrMissingColumns):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmptyResult):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrCredentialsMissing):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &delivery):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	code := errorStatus(err)

	log := logger.WithContext(c.UserContext())
	if code >= fiber.StatusInternalServerError {
		log.Error("erro ao processar requisição", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	} else {
		log.Warn("requisição rejeitada", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: getRequestID(c),
		Timestamp: time.Now(),
	})
}
