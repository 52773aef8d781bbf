package api

import (
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportForm lists the fields every report endpoint reads, from a
// multipart or urlencoded body.
type ReportForm struct {
	Source    string `form:"source" enums:"local,remote,upload"`
	URL       string `form:"url"`
	Clients   string `form:"clients" example:"ACME,BETA"`
	StartDate string `form:"start_date" format:"date"`
	EndDate   string `form:"end_date" format:"date"`
	Recipient string `form:"recipient"`
}

type ClientTotal struct {
	Sigla      string          `json:"sigla"`
	ValorTotal decimal.Decimal `json:"valor_total"`
	Formatted  string          `json:"formatted"`
}

type ReportResponse struct {
	Source         string          `json:"source"`
	Period         string          `json:"period"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Clients        []ClientTotal   `json:"clients"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	FormattedTotal string          `json:"formatted_total"`
	Orders         int             `json:"orders"`
	MailEnabled    bool            `json:"mail_enabled"`
	ProcessingTime string          `json:"processing_time,omitempty"`
}

type DatasetResponse struct {
	Source string `json:"source"`
	*domain.DatasetInfo
	ProcessingTime string `json:"processing_time,omitempty"`
}

type EmailResponse struct {
	Status     string `json:"status"`
	Recipient  string `json:"recipient"`
	Attachment string `json:"attachment"`
	Total      string `json:"total"`
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

type ServiceHealth struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
