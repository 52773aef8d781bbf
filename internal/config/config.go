package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/notify"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LocalFile    string        `envconfig:"LOCAL_FILE" default:"Controle_Pedidos.xlsx"`
	RemoteURL    string        `envconfig:"REMOTE_URL" default:"https://1drv.ms/x/c/193EB5E7297B4F7D/EZgeF0J4CKVMlKfmZSWahXUBrhXgnl7mbBoVOlpNyWtfXw?e=cciTkd"`
	SheetName    string        `envconfig:"SHEET_NAME" default:"data"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"20s"`

	SMTPHost      string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort      int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPTimeout   time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`
	SenderAddress string        `envconfig:"EMAIL_REMETENTE"`
	SenderSecret  string        `envconfig:"SENHA_REMETENTE"`

	APIHost         string        `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort         string        `envconfig:"API_PORT" default:"8000"`
	APIReadTimeout  time.Duration `envconfig:"API_READ_TIMEOUT" default:"30s"`
	APIWriteTimeout time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	UploadLimitMB   int           `envconfig:"UPLOAD_LIMIT_MB" default:"20"`
	APIRateLimit    int           `envconfig:"API_RATE_LIMIT" default:"60"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() *Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Validate checks the values a run cannot work without. Missing mail
// credentials are not an error here: they only disable the notifier.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.SheetName) == "" {
		problems = append(problems, "SHEET_NAME não pode ser vazio")
	}
	if c.FetchTimeout <= 0 {
		problems = append(problems, "FETCH_TIMEOUT deve ser positivo")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("SMTP_PORT inválida: %d", c.SMTPPort))
	}
	if c.UploadLimitMB <= 0 {
		problems = append(problems, "UPLOAD_LIMIT_MB deve ser positivo")
	}
	if c.APIRateLimit <= 0 {
		problems = append(problems, "API_RATE_LIMIT deve ser positivo")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuração inválida: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// MailConfig returns the notifier settings.
func (c *Config) MailConfig() notify.MailConfig {
	return notify.MailConfig{
		Host:          c.SMTPHost,
		Port:          c.SMTPPort,
		SenderAddress: c.SenderAddress,
		SenderSecret:  c.SenderSecret,
		Timeout:       c.SMTPTimeout,
	}
}
