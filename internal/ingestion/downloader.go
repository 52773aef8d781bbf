package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"go.uber.org/zap"
)

const DefaultFetchTimeout = 20 * time.Second

// Downloader fetches workbooks over HTTP. Every call is a single attempt.
type Downloader struct {
	httpClient *http.Client
}

func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch returns the body of a GET on url. Redirects are followed; anything
// but a 2xx answer is reported as ErrSourceUnavailable.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: URL não informada", domain.ErrSourceUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao criar request: %w", domain.ErrSourceUnavailable, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao fazer download: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status code %d para URL: %s", domain.ErrSourceUnavailable, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao ler resposta: %w", domain.ErrSourceUnavailable, err)
	}

	logger.Debug("planilha baixada",
		zap.String("url", url),
		zap.Int("bytes", len(body)))

	return body, nil
}

// DownloadFile saves the workbook at url to outputPath, going through a
// temporary file so a failed download never leaves a partial workbook.
func (d *Downloader) DownloadFile(ctx context.Context, url, outputPath string) (int64, error) {
	body, err := d.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	if DetectFormat(body) == FormatUnknown {
		return 0, fmt.Errorf("%w: o conteúdo baixado não é uma planilha", domain.ErrParse)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("erro ao criar diretório: %w", err)
		}
	}

	tempFile := outputPath + ".tmp"
	if err := os.WriteFile(tempFile, body, 0644); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("erro ao salvar arquivo: %w", err)
	}

	if err := os.Rename(tempFile, outputPath); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("erro ao renomear arquivo: %w", err)
	}

	return int64(len(body)), nil
}
