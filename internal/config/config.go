// Package config reads the server configuration from the environment. A
// .env file is loaded by the main package before FromEnv runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/studio-sirbu/portfolio/internal/contact"
	applog "github.com/studio-sirbu/portfolio/internal/log"
)

const (
	defaultAdminUser = "admin"
	defaultAdminPass = "admin123"
)

// Config is the full server configuration.
type Config struct {
	Addr    string
	GinMode string

	TemplatesGlob string
	StaticDir     string
	ImagesDir     string
	ThumbCacheDir string

	// Optional content overrides; empty uses the compiled-in copies.
	CatalogFile string
	SiteFile    string

	DatabasePath string
	Tracking     bool

	Admin   Admin
	Contact Contact
	Log     applog.Options
}

// Admin holds dashboard credentials.
type Admin struct {
	Username string
	Password string
	// Defaulted is set when the development credentials were filled in.
	Defaulted bool
}

// Contact configures the contact form transport.
type Contact struct {
	Transport     string
	Policy        contact.Policy
	ToEmail       string
	BannerDismiss time.Duration

	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSPublicKey  string
	EmailJSEndpoint   string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Lookup matches os.LookupEnv.
type Lookup func(key string) (string, bool)

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) { return FromLookup(os.LookupEnv) }

// FromLookup reads the configuration through lookup.
func FromLookup(lookup Lookup) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Addr:          ":" + get("PORT", "8080"),
		GinMode:       get("GIN_MODE", "debug"),
		TemplatesGlob: get("TEMPLATES_GLOB", "templates/*"),
		StaticDir:     get("STATIC_DIR", "./static"),
		ImagesDir:     get("IMAGES_DIR", "./images"),
		ThumbCacheDir: get("THUMB_CACHE_DIR", "./cache/thumbs"),
		CatalogFile:   get("CATALOG_FILE", ""),
		SiteFile:      get("SITE_FILE", ""),
		DatabasePath:  get("DATABASE_PATH", "./data/analytics.db"),
		Admin: Admin{
			Username: get("ADMIN_USERNAME", ""),
			Password: get("ADMIN_PASSWORD", ""),
		},
		Contact: Contact{
			Transport:         strings.ToLower(get("CONTACT_TRANSPORT", "smtp")),
			ToEmail:           get("TO_EMAIL", ""),
			EmailJSServiceID:  get("EMAILJS_SERVICE_ID", ""),
			EmailJSTemplateID: get("EMAILJS_TEMPLATE_ID", ""),
			EmailJSPublicKey:  get("EMAILJS_PUBLIC_KEY", ""),
			EmailJSEndpoint:   get("EMAILJS_ENDPOINT", contact.DefaultEmailJSEndpoint),
			SMTPHost:          get("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:          get("SMTP_PORT", "587"),
			SMTPUser:          get("SMTP_USER", ""),
			SMTPPass:          get("SMTP_PASS", ""),
		},
		Log: applog.Options{
			Level:     get("LOG_LEVEL", "info"),
			Format:    get("LOG_FORMAT", "console"),
			AddSource: strings.EqualFold(get("LOG_SOURCE", "false"), "true"),
			File:      get("LOG_FILE", ""),
		},
	}

	var errs []error

	if v := get("PORT", "8080"); !isPort(v) {
		errs = append(errs, fmt.Errorf("PORT: invalid port %q", v))
	}

	tracking, err := strconv.ParseBool(get("TRACKING_ENABLED", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TRACKING_ENABLED: %w", err))
	}
	cfg.Tracking = tracking

	policy, err := contact.ParsePolicy(get("CONTACT_POLICY", string(contact.PolicyStrict)))
	if err != nil {
		errs = append(errs, fmt.Errorf("CONTACT_POLICY: %w", err))
	}
	cfg.Contact.Policy = policy

	dismiss, err := time.ParseDuration(get("BANNER_DISMISS", "5s"))
	if err != nil || dismiss < 0 {
		errs = append(errs, fmt.Errorf("BANNER_DISMISS: invalid duration %q", get("BANNER_DISMISS", "5s")))
	}
	cfg.Contact.BannerDismiss = dismiss

	switch cfg.Contact.Transport {
	case "smtp", "emailjs":
	default:
		errs = append(errs, fmt.Errorf("CONTACT_TRANSPORT: unknown transport %q", cfg.Contact.Transport))
	}

	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		if cfg.GinMode == "release" {
			errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required in release mode"))
		} else {
			if cfg.Admin.Username == "" {
				cfg.Admin.Username = defaultAdminUser
			}
			if cfg.Admin.Password == "" {
				cfg.Admin.Password = defaultAdminPass
			}
			cfg.Admin.Defaulted = true
		}
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Sender builds the configured contact transport. Missing credentials are
// not an error here; the sender reports contact.ErrNotConfigured on use.
func (c Contact) Sender() contact.Sender {
	if c.Transport == "emailjs" {
		return &contact.EmailJS{
			ServiceID:  c.EmailJSServiceID,
			TemplateID: c.EmailJSTemplateID,
			PublicKey:  c.EmailJSPublicKey,
			ToEmail:    c.ToEmail,
			Endpoint:   c.EmailJSEndpoint,
		}
	}
	return &contact.SMTP{
		Host:    c.SMTPHost,
		Port:    c.SMTPPort,
		User:    c.SMTPUser,
		Pass:    c.SMTPPass,
		ToEmail: c.ToEmail,
	}
}

func isPort(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0 && n < 65536
}
