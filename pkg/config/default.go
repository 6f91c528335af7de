package config

type Postgres struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	DB       string `koanf:"db"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"ssl_mode"`
}

type HttpServer struct {
	Address string `koanf:"address"`
}

type Vault struct {
	Address string `koanf:"address"`
	Token   string `koanf:"token"`
	CaPath  string `koanf:"ca_path"`
}

type NATS struct {
	URL string `koanf:"url"`
}

type IngestAPI struct {
	BaseURL string `koanf:"base_url"`
	Token   string `koanf:"token"`
}
