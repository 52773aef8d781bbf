package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want Origin
		ok   bool
	}{
		{"local", OriginLocal, true},
		{" OneDrive ", OriginRemote, true},
		{"remote", OriginRemote, true},
		{"UPLOAD", OriginUpload, true},
		{"s3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrigin(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoader_Local(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(nil)

	t.Run("success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Controle_Pedidos.xlsx")
		require.NoError(t, os.WriteFile(path, buildWorkbook(t, "data", pedidosRows()), 0644))

		assert.True(t, LocalAvailable(path))

		table, err := loader.Load(ctx, LocalSource(path), "data")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 3)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nao_existe.xlsx")

		assert.False(t, LocalAvailable(path))

		_, err := loader.Load(ctx, LocalSource(path), "data")
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("missing sheet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "outra.xlsx")
		require.NoError(t, os.WriteFile(path, buildWorkbook(t, "Resumo", pedidosRows()), 0644))

		_, err := loader.Load(ctx, LocalSource(path), "data")
		assert.ErrorIs(t, err, domain.ErrSheetNotFound)
	})
}

func TestLoader_Upload(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(nil)
	data := buildWorkbook(t, "data", pedidosRows())

	t.Run("success", func(t *testing.T) {
		table, err := loader.Load(ctx, UploadSource("pedidos.xlsx", data), "data")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 3)
	})

	t.Run("legacy xls", func(t *testing.T) {
		table, err := loader.Load(ctx, UploadSource("pedidos.xls", readFixture(t, "pedidos.xls")), "data")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 3)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := loader.Load(ctx, UploadSource("pedidos.csv", data), "data")
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := loader.Load(ctx, UploadSource("pedidos.xlsx", nil), "data")
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("malformed content", func(t *testing.T) {
		_, err := loader.Load(ctx, UploadSource("pedidos.xlsx", []byte("texto qualquer")), "data")
		assert.ErrorIs(t, err, domain.ErrParse)
	})
}

func TestLoader_Remote(t *testing.T) {
	ctx := context.Background()
	data := buildWorkbook(t, "data", pedidosRows())

	mux := http.NewServeMux()
	mux.HandleFunc("/planilha.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/planilha.xlsx", http.StatusFound)
	})
	mux.HandleFunc("/lento", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	loader := NewLoader(NewDownloader(200 * time.Millisecond))

	t.Run("success following redirects", func(t *testing.T) {
		table, err := loader.Load(ctx, RemoteSource(server.URL+"/redirect"), "data")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 3)
	})

	t.Run("non 2xx", func(t *testing.T) {
		_, err := loader.Load(ctx, RemoteSource(server.URL+"/nao-existe"), "data")
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := loader.Load(ctx, RemoteSource(server.URL+"/lento"), "data")
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := loader.Load(ctx, RemoteSource(""), "data")
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestDownloader_DownloadFile(t *testing.T) {
	data := buildWorkbook(t, "data", pedidosRows())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/html" {
			w.Write([]byte("<html></html>"))
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewDownloader(time.Second)

	t.Run("saves workbook", func(t *testing.T) {
		out := filepath.Join(dir, "sub", "Controle_Pedidos.xlsx")

		written, err := d.DownloadFile(context.Background(), server.URL+"/ok", out)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), written)

		saved, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, data, saved)

		_, err = os.Stat(out + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("rejects non workbook", func(t *testing.T) {
		out := filepath.Join(dir, "pagina.xlsx")

		_, err := d.DownloadFile(context.Background(), server.URL+"/html", out)
		assert.ErrorIs(t, err, domain.ErrParse)

		_, err = os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})
}
