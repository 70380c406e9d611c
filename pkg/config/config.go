package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGDobiDSN string `envconfig:"PG_DOBI_DSN" required:"true"`
	// Machine lifecycle
	HeartbeatTimeoutSec        int  `envconfig:"HEARTBEAT_TIMEOUT_SEC" default:"15"`
	RequirePaymentConfirmation bool `envconfig:"REQUIRE_PAYMENT_CONFIRMATION" default:"true"`
	// Auth
	SessionExchangeURL string `envconfig:"SESSION_EXCHANGE_URL" default:"https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"`
	SessionTTLHours    int    `envconfig:"SESSION_TTL_HOURS" default:"168"`
	// WhatsApp (WasapBot)
	WasapbotAPIURL      string `envconfig:"WASAPBOT_API_URL" default:"https://dash.wasapbot.my/api/send"`
	WasapbotInstanceID  string `envconfig:"WASAPBOT_INSTANCE_ID" default:""`
	WasapbotAccessToken string `envconfig:"WASAPBOT_ACCESS_TOKEN" default:""`
	// MQ; empty RABBIT_URL means notifications go out directly over HTTP
	RabbitURL      string `envconfig:"RABBIT_URL" default:""`
	MQExchange     string `envconfig:"MQ_EXCHANGE" default:"dobi.exchange"`
	NotifyQueue    string `envconfig:"NOTIFY_QUEUE" default:"notification.q"`
	NotifyBindings string `envconfig:"NOTIFY_BINDINGS" default:"machine.*"`
	NotifyDLX      string `envconfig:"NOTIFY_DLX" default:"notification.dlx"`
	NotifyDLQ      string `envconfig:"NOTIFY_DLQ" default:"notification.q.dlq"`
	// Network
	APIHTTPAddr string `envconfig:"API_HTTP_ADDR" default:":8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`
}

func Load() (App, error) {
	_ = godotenv.Load()
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
