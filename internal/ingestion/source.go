package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"github.com/jeovahfialho/faturamento-report/pkg/metrics"
	"go.uber.org/zap"
)

type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
	OriginUpload Origin = "upload"
)

func ParseOrigin(value string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "local":
		return OriginLocal, nil
	case "remote", "onedrive", "url":
		return OriginRemote, nil
	case "upload":
		return OriginUpload, nil
	default:
		return "", fmt.Errorf("fonte inválida: %q (use local, remote ou upload)", value)
	}
}

// Source says where the single authoritative workbook of a run comes from.
type Source struct {
	Origin   Origin
	Path     string
	URL      string
	Filename string
	Data     []byte
}

func LocalSource(path string) Source {
	return Source{Origin: OriginLocal, Path: path}
}

func RemoteSource(url string) Source {
	return Source{Origin: OriginRemote, URL: url}
}

func UploadSource(filename string, data []byte) Source {
	return Source{Origin: OriginUpload, Filename: filename, Data: data}
}

func (s Source) String() string {
	switch s.Origin {
	case OriginLocal:
		return "local:" + s.Path
	case OriginRemote:
		return "remote:" + s.URL
	case OriginUpload:
		return "upload:" + s.Filename
	default:
		return string(s.Origin)
	}
}

// LocalAvailable reports whether the local workbook exists, which is what
// decides if the local source is offered at all.
func LocalAvailable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type Loader struct {
	downloader *Downloader
}

func NewLoader(downloader *Downloader) *Loader {
	if downloader == nil {
		downloader = NewDownloader(DefaultFetchTimeout)
	}
	return &Loader{downloader: downloader}
}

// Load acquires the workbook bytes from src and parses the named sheet.
func (l *Loader) Load(ctx context.Context, src Source, sheet string) (*domain.RawTable, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveStage("load")

	data, err := l.acquire(ctx, src)
	if err != nil {
		metrics.RecordSourceLoad(string(src.Origin), loadStatus(err), 0)
		return nil, err
	}

	table, err := ReadSheet(data, sheet)
	if err != nil {
		metrics.RecordSourceLoad(string(src.Origin), loadStatus(err), len(data))
		return nil, err
	}

	metrics.RecordSourceLoad(string(src.Origin), "success", len(data))
	logger.Info("planilha carregada",
		zap.String("source", src.String()),
		zap.String("sheet", sheet),
		zap.Int("rows", len(table.Rows)),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", timer.Elapsed()))

	return table, nil
}

func (l *Loader) acquire(ctx context.Context, src Source) ([]byte, error) {
	switch src.Origin {
	case OriginLocal:
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: erro ao ler %s: %w", domain.ErrSourceUnavailable, src.Path, err)
		}
		return data, nil

	case OriginRemote:
		return l.downloader.Fetch(ctx, src.URL)

	case OriginUpload:
		if _, err := FormatFromFilename(src.Filename); err != nil {
			return nil, err
		}
		if len(src.Data) == 0 {
			return nil, fmt.Errorf("%w: arquivo enviado está vazio", domain.ErrParse)
		}
		return src.Data, nil

	default:
		return nil, fmt.Errorf("%w: origem desconhecida %q", domain.ErrSourceUnavailable, src.Origin)
	}
}

func loadStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrSheetNotFound):
		return "sheet_not_found"
	default:
		return "parse_error"
	}
}
