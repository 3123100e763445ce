package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/shopspring/decimal"
)

type Config struct {
	Mode              string
	Port              string
	Environment       string
	LogLevel          string
	EntryFee          decimal.Decimal
	HourlyFee         decimal.Decimal
	CurrencySymbol    string
	OTelServiceName   string
	OTelEndpoint      string
	OTelExportEvery   time.Duration
	RMQURL            string
	CheckInQueueName  string
	CheckOutQueueName string
}

func Load() *Config {
	return &Config{
		Mode:              envOr("APP_MODE", "cli"),
		Port:              envOr("APP_PORT", "8080"),
		Environment:       envOr("APP_ENV", "development"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		EntryFee:          envOrFee("LEDGER_ENTRY_FEE", decimal.RequireFromString("5.00")),
		HourlyFee:         envOrFee("LEDGER_HOURLY_FEE", decimal.RequireFromString("2.00")),
		CurrencySymbol:    envOr("LEDGER_CURRENCY_SYMBOL", "R$"),
		OTelServiceName:   envOr("OTEL_SERVICE_NAME", "parking-ledger"),
		OTelEndpoint:      envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		OTelExportEvery:   envOrMillis("OTEL_METRIC_EXPORT_INTERVAL", 5*time.Second),
		RMQURL:            os.Getenv("RMQ_URL"),
		CheckInQueueName:  envOr("CHECK_IN_QUEUE_NAME", "check_ins"),
		CheckOutQueueName: envOr("CHECK_OUT_QUEUE_NAME", "check_outs"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// envOrFee rejects negative and unparseable amounts.
func envOrFee(key string, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			return d
		}
	}
	return fallback
}

// envOrMillis reads a positive number of milliseconds.
func envOrMillis(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
