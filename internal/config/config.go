package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:4000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"donaciones.db"`

	Auth   Auth   `envPrefix:"AUTH_"`
	Upload Upload `envPrefix:"UPLOAD_"`

	Paypal      Paypal      `envPrefix:"PAYPAL_"`
	MercadoPago MercadoPago `envPrefix:"MERCADO_PAGO_"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
}

type MercadoPago struct {
	BaseApiURL  string `env:"BASE_API_URL" envDefault:"https://api.mercadopago.com"`
	AccessToken string `env:"ACCESS_TOKEN"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Upload struct {
	Dir          string `env:"DIR" envDefault:"evidencias"`
	MaxFiles     int    `env:"MAX_FILES" envDefault:"5"`
	MaxSizeBytes int64  `env:"MAX_SIZE_BYTES" envDefault:"5242880"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format defaults by environment: console in development, json otherwise.
	Format string `env:"LOG_FORMAT"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"4000"`
}
