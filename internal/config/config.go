package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr    string
		BaseURL string
	}
	Database struct {
		Driver string
		Path   string
		DSN    string
	}
	Capture struct {
		Path string
	}
	Auth struct {
		SessionSecret     string
		SessionTTLMinutes int
		RememberDays      int
		ResetTTLMinutes   int
		SecureCookies     bool
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Mail struct {
		Server        string
		Port          int
		Username      string
		Password      string
		DefaultSender string
		UseTLS        bool
		Workers       int
		QueueSize     int
	}
	Storage struct {
		Backend   string
		LocalDir  string
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// MailConfigured reports whether enough settings exist to talk to an SMTP server.
func (c Config) MailConfigured() bool {
	return strings.TrimSpace(c.Mail.Server) != "" && strings.TrimSpace(c.Mail.DefaultSender) != ""
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("PWDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Flask-Mail style names used by existing deployments.
	_ = v.BindEnv("mail.server", "PWDASH_MAIL_SERVER", "MAIL_SERVER")
	_ = v.BindEnv("mail.port", "PWDASH_MAIL_PORT", "MAIL_PORT")
	_ = v.BindEnv("mail.username", "PWDASH_MAIL_USERNAME", "MAIL_USERNAME")
	_ = v.BindEnv("mail.password", "PWDASH_MAIL_PASSWORD", "MAIL_PASSWORD")
	_ = v.BindEnv("mail.defaultsender", "PWDASH_MAIL_DEFAULTSENDER", "MAIL_DEFAULT_SENDER")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.baseurl", "http://localhost:5000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/dashboard.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("capture.path", "data/captured.db")
	v.SetDefault("auth.sessionsecret", "")
	v.SetDefault("auth.sessionttlminutes", 12*60)
	v.SetDefault("auth.rememberdays", 30)
	v.SetDefault("auth.resetttlminutes", 30)
	v.SetDefault("auth.securecookies", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mail.server", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.defaultsender", "")
	v.SetDefault("mail.usetls", true)
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queuesize", 64)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.localdir", "data/profile_pics")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "profile_pics")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
