package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type MondaySettings struct {
	APIURL     string `toml:"api_url"`
	APIToken   string `toml:"api_token"`
	APIVersion string `toml:"api_version"`
	PageSize   int    `toml:"page_size"`
}

type XeroSettings struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
	TenantID     string `toml:"tenant_id"`
	APIURL       string `toml:"api_url"`
}

type StorageSettings struct {
	Endpoint  string        `toml:"endpoint"`
	AccessKey string        `toml:"access_key"`
	SecretKey string        `toml:"secret_key"`
	Bucket    string        `toml:"bucket"`
	Region    string        `toml:"region"`
	UseSSL    bool          `toml:"use_ssl"`
	URLExpiry time.Duration `toml:"url_expiry"`
}

type Settings struct {
	Port          string        `toml:"port"`
	DatabaseDSN   string        `toml:"database_dsn"`
	RunMigrations bool          `toml:"run_migrations"`
	CronSecret    string        `toml:"cron_secret"`
	CORSOrigins   []string      `toml:"cors_origins"`
	HTTPTimeout   time.Duration `toml:"http_timeout"`
	RecentWeeks   int           `toml:"recent_weeks"`
	ScheduleSpec  string        `toml:"schedule_spec"`
	SyncSchedule  string        `toml:"sync_schedule"`

	Monday  MondaySettings  `toml:"monday"`
	Xero    XeroSettings    `toml:"xero"`
	Storage StorageSettings `toml:"storage"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Port:         "8080",
		CORSOrigins:  []string{"http://localhost:3000"},
		HTTPTimeout:  30 * time.Second,
		RecentWeeks:  3,
		ScheduleSpec: "0 6 * * 1",
		SyncSchedule: "*/30 * * * *",
		Monday: MondaySettings{
			APIURL:     "https://api.monday.com/v2",
			APIVersion: "2024-10",
			PageSize:   100,
		},
		Xero: XeroSettings{
			APIURL: "https://api.xero.com/api.xro/2.0",
		},
		Storage: StorageSettings{
			Region:    "us-east-1",
			UseSSL:    true,
			URLExpiry: 15 * time.Minute,
		},
	}
}

// Load reads the optional TOML file named by CONFIG_FILE and then applies
// environment overrides on top of it.
func Load() (*Settings, error) {
	s := DefaultSettings()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, s); err != nil {
			return nil, err
		}
	}

	applyEnv(s)
	return s, nil
}

func applyEnv(s *Settings) {
	setString(&s.Port, "PORT")
	setString(&s.DatabaseDSN, "DATABASE_DSN")
	setBool(&s.RunMigrations, "RUN_MIGRATIONS")
	setString(&s.CronSecret, "CRON_SECRET")
	setDuration(&s.HTTPTimeout, "HTTP_TIMEOUT")
	setInt(&s.RecentWeeks, "SCORECARD_RECENT_WEEKS")
	setString(&s.ScheduleSpec, "SCHEDULE_SPEC")
	setString(&s.SyncSchedule, "SYNC_SCHEDULE")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		s.CORSOrigins = splitList(v)
	}

	setString(&s.Monday.APIURL, "MONDAY_API_URL")
	setString(&s.Monday.APIToken, "MONDAY_API_TOKEN")
	setString(&s.Monday.APIVersion, "MONDAY_API_VERSION")

	setString(&s.Xero.ClientID, "XERO_CLIENT_ID")
	setString(&s.Xero.ClientSecret, "XERO_CLIENT_SECRET")
	setString(&s.Xero.RedirectURL, "XERO_REDIRECT_URL")
	setString(&s.Xero.TenantID, "XERO_TENANT_ID")
	setString(&s.Xero.APIURL, "XERO_API_URL")

	setString(&s.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&s.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&s.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&s.Storage.Bucket, "STORAGE_BUCKET")
	setString(&s.Storage.Region, "STORAGE_REGION")
	setBool(&s.Storage.UseSSL, "STORAGE_USE_SSL")
	setDuration(&s.Storage.URLExpiry, "STORAGE_URL_EXPIRY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
