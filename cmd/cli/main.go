package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeovahfialho/faturamento-report/internal/config"
	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/internal/ingestion"
	"github.com/jeovahfialho/faturamento-report/internal/notify"
	"github.com/jeovahfialho/faturamento-report/internal/report"
	"github.com/jeovahfialho/faturamento-report/internal/service"
	pkglogger "github.com/jeovahfialho/faturamento-report/pkg/logger"
)

type sourceFlags struct {
	source string
	file   string
	url    string
	sheet  string
}

type reportFlags struct {
	sourceFlags
	clients   string
	startDate string
	endDate   string
	pdf       string
	xlsx      string
	chart     string
	email     string
}

func main() {
	cfg := config.Load()

	var verbose bool

	var rootCmd = &cobra.Command{
		Use:   "faturamento",
		Short: "Relatório de Faturamento CLI",
		Long: `CLI para gerar relatórios de pedidos FATURADOS por cliente.
Lê a aba "data" de uma planilha local, remota ou enviada, filtra por
clientes e período e gera PDF, Excel e gráfico.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = cfg.LogLevel
			}
			return pkglogger.Init(level, cfg.IsDevelopment())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			pkglogger.Close()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Exibe logs detalhados")

	// Comando report
	rf := &reportFlags{}
	var reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Gera o relatório de faturamento",
		Long: `Gera o relatório de pedidos FATURADOS no período e clientes escolhidos.
Sem clientes, todos são considerados. Sem datas (ou com apenas uma), o
período completo da planilha é usado.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cfg, rf)
		},
	}
	addSourceFlags(reportCmd, &rf.sourceFlags, cfg)
	reportCmd.Flags().StringVarP(&rf.clients, "clients", "c", "", "Siglas separadas por vírgula (padrão: todas)")
	reportCmd.Flags().StringVarP(&rf.startDate, "start-date", "s", "", "Data inicial (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&rf.endDate, "end-date", "e", "", "Data final (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&rf.pdf, "pdf", report.DocumentFilename, "Arquivo PDF de saída (vazio para não gerar)")
	reportCmd.Flags().StringVar(&rf.xlsx, "xlsx", "", "Arquivo Excel de saída com o resumo")
	reportCmd.Flags().StringVar(&rf.chart, "chart", "", "Arquivo PNG de saída com o gráfico")
	reportCmd.Flags().StringVar(&rf.email, "email", "", "Envia o PDF para este e-mail")

	// Comando clients
	cf := &sourceFlags{}
	var clientsCmd = &cobra.Command{
		Use:   "clients",
		Short: "Lista clientes e período disponíveis na planilha",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listClients(cmd.Context(), cfg, cf)
		},
	}
	addSourceFlags(clientsCmd, cf, cfg)

	// Comando download
	var downloadURL, downloadOutput string
	var downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Baixa a planilha remota como fonte local",
		Long: `Baixa a planilha do link configurado (REMOTE_URL) e salva no caminho
da fonte local (LOCAL_FILE), que passa a ser oferecida como fonte padrão.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadWorkbook(cmd.Context(), cfg, downloadURL, downloadOutput)
		},
	}
	downloadCmd.Flags().StringVarP(&downloadURL, "url", "u", cfg.RemoteURL, "Link da planilha")
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", cfg.LocalFile, "Arquivo de saída")

	// Adiciona todos os comandos
	rootCmd.AddCommand(reportCmd, clientsCmd, downloadCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Printf("❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags, cfg *config.Config) {
	cmd.Flags().StringVar(&f.source, "source", "", "Fonte: local, remote ou upload (padrão: local se existir)")
	cmd.Flags().StringVarP(&f.file, "file", "f", cfg.LocalFile, "Planilha local (.xlsx ou .xls)")
	cmd.Flags().StringVarP(&f.url, "url", "u", cfg.RemoteURL, "Link da planilha remota")
	cmd.Flags().StringVar(&f.sheet, "sheet", cfg.SheetName, "Aba com os pedidos")
}

func newReportService(cfg *config.Config, sheet string) *service.ReportService {
	loader := ingestion.NewLoader(ingestion.NewDownloader(cfg.FetchTimeout))
	return service.NewReportService(loader, notify.NewMailer(cfg.MailConfig()), sheet)
}

// buildSource resolves the --source flag. "upload" reads --file into memory
// and goes through the same checks as a file sent to the API.
func buildSource(f *sourceFlags) (ingestion.Source, error) {
	if strings.TrimSpace(f.source) == "" {
		if ingestion.LocalAvailable(f.file) {
			return ingestion.LocalSource(f.file), nil
		}
		return ingestion.RemoteSource(f.url), nil
	}

	origin, err := ingestion.ParseOrigin(f.source)
	if err != nil {
		return ingestion.Source{}, err
	}

	switch origin {
	case ingestion.OriginLocal:
		return ingestion.LocalSource(f.file), nil
	case ingestion.OriginRemote:
		return ingestion.RemoteSource(f.url), nil
	default:
		data, err := os.ReadFile(f.file)
		if err != nil {
			return ingestion.Source{}, fmt.Errorf("erro ao ler %s: %w", f.file, err)
		}
		return ingestion.UploadSource(filepath.Base(f.file), data), nil
	}
}

func parseDateFlag(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("data inválida %q (use YYYY-MM-DD)", value)
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

func runReport(ctx context.Context, cfg *config.Config, f *reportFlags) error {
	src, err := buildSource(&f.sourceFlags)
	if err != nil {
		return err
	}

	start, err := parseDateFlag(f.startDate)
	if err != nil {
		return err
	}
	end, err := parseDateFlag(f.endDate)
	if err != nil {
		return err
	}

	reports := newReportService(cfg, f.sheet)
	if err := requireMail(reports, f.email); err != nil {
		return err
	}

	fmt.Printf("📊 Gerando relatório a partir de %s...\n", src)

	result, err := reports.Generate(ctx, service.ReportRequest{
		Source:  src,
		Clients: splitClients(f.clients),
		Start:   start,
		End:     end,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			fmt.Println("⚠️  Nenhum pedido FATURADO encontrado para os filtros selecionados.")
			return nil
		}
		return err
	}

	printSummary(result)

	outputs := []struct {
		path string
		data []byte
	}{
		{f.pdf, result.PDF},
		{f.xlsx, result.XLSX},
		{f.chart, result.Artifact.Chart},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := os.WriteFile(out.path, out.data, 0644); err != nil {
			return fmt.Errorf("erro ao salvar %s: %w", out.path, err)
		}
		fmt.Printf("💾 Salvo: %s (%s)\n", out.path, formatBytes(int64(len(out.data))))
	}

	if f.email != "" {
		fmt.Printf("📧 Enviando relatório para %s...\n", f.email)
		if err := reports.Send(ctx, f.email, result); err != nil {
			return err
		}
		fmt.Println("✅ E-mail enviado com sucesso!")
	}

	return nil
}

// requireMail fails fast when --email is given without sender credentials,
// before the workbook is fetched.
func requireMail(reports *service.ReportService, email string) error {
	if email != "" && !reports.MailEnabled() {
		return domain.ErrCredentialsMissing
	}
	return nil
}

func printSummary(result *service.ReportResult) {
	fmt.Printf("\n📅 Período: %s\n\n", result.Period())
	fmt.Printf("  %-20s %20s\n", domain.ColumnSigla, domain.ColumnValorTotal)
	for _, c := range result.Summary.Clients {
		fmt.Printf("  %-20s %20s\n", c.Sigla, report.FormatCurrency(c.ValorTotal))
	}
	fmt.Printf("\n💰 Faturamento Total: %s (%d pedidos)\n\n", result.FormattedTotal(), result.Summary.Orders)
}

func listClients(ctx context.Context, cfg *config.Config, f *sourceFlags) error {
	src, err := buildSource(f)
	if err != nil {
		return err
	}

	info, err := newReportService(cfg, f.sheet).Inspect(ctx, src)
	if err != nil {
		return err
	}

	fmt.Printf("📂 Planilha: %s (aba %s, %d linhas)\n\n", src, info.Sheet, info.Rows)

	if len(info.Clients) == 0 {
		fmt.Println("❌ Nenhum cliente encontrado")
	} else {
		fmt.Printf("👥 %d clientes:\n", len(info.Clients))
		for _, c := range info.Clients {
			fmt.Printf("  - %s\n", c)
		}
	}

	if info.FirstDate != nil && info.LastDate != nil {
		fmt.Printf("\n📅 Período disponível: %s\n", report.FormatPeriod(*info.FirstDate, *info.LastDate))
	} else {
		fmt.Println("\n⚠️  Nenhuma data válida na planilha")
	}
	fmt.Printf("✅ %d pedidos FATURADOS, %d sem data\n", info.Faturados, info.SemData)

	return nil
}

func downloadWorkbook(ctx context.Context, cfg *config.Config, url, output string) error {
	fmt.Println("📥 Baixando planilha...")

	downloader := ingestion.NewDownloader(cfg.FetchTimeout)
	size, err := downloader.DownloadFile(ctx, url, output)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Planilha salva em %s (%s)\n", output, formatBytes(size))
	fmt.Println("\n💡 Próximo passo: use 'report' para gerar o relatório a partir da fonte local")
	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
