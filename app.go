package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studio-sirbu/portfolio/internal/analytics"
	"github.com/studio-sirbu/portfolio/internal/casestudy"
	"github.com/studio-sirbu/portfolio/internal/catalog"
	"github.com/studio-sirbu/portfolio/internal/config"
	"github.com/studio-sirbu/portfolio/internal/contact"
	applog "github.com/studio-sirbu/portfolio/internal/log"
	"github.com/studio-sirbu/portfolio/internal/portfolio"
	"github.com/studio-sirbu/portfolio/internal/site"
	"github.com/studio-sirbu/portfolio/internal/thumbs"
)

// app carries everything the handlers share. All of it is read-only after
// start-up except the analytics store, which serializes its own writes.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	index   *portfolio.Index
	content *site.Content
	contact *contact.Service
	store   *analytics.Store
	thumbs  *thumbs.Generator

	adminToken string

	// bg tracks fire-and-forget analytics writes.
	bg sync.WaitGroup
}

func newApp(cfg config.Config, logger *slog.Logger, cat *catalog.Catalog, content *site.Content,
	store *analytics.Store, sender contact.Sender) (*app, error) {
	token, err := generateAdminToken()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		logger:  logger,
		index:   portfolio.NewIndex(cat),
		content: content,
		store:   store,
		thumbs:  thumbs.New(cfg.ImagesDir, cfg.ThumbCacheDir, applog.WithComponent(logger, "thumbs")),
		contact: contact.NewService(sender,
			contact.WithPolicy(cfg.Contact.Policy),
			contact.WithLogger(applog.WithComponent(logger, "contact")),
			contact.WithRecorder(store)),
		adminToken: token,
	}
	return a, nil
}

func generateAdminToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate admin token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// background runs fn off the request path with its own deadline.
func (a *app) background(fn func(ctx context.Context)) {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

func (a *app) funcMap() template.FuncMap {
	return template.FuncMap{
		"thumb": func(size, src string) string {
			return thumbs.URL(thumbs.Size(size), src)
		},
		"markdown": casestudy.RenderMarkdown,
		"inc":      func(i int) int { return i + 1 },
		"join":     strings.Join,
		"millis":   func(d time.Duration) int64 { return d.Milliseconds() },
		"year":     func() int { return time.Now().Year() },
		"fieldError": func(field, msg string) map[string]string {
			return map[string]string{"Field": field, "Message": msg}
		},
		"workTitle": func(id string) string {
			if w, ok := a.index.Catalog().ByID(id); ok {
				return w.Title
			}
			return id
		},
	}
}

// router builds the gin engine with every route mounted.
func (a *app) router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(a.logger), gin.Recovery())
	if a.cfg.Tracking {
		r.Use(a.visitorTrackingMiddleware())
	}

	r.SetFuncMap(a.funcMap())
	r.LoadHTMLGlob(a.cfg.TemplatesGlob)

	r.Static(thumbs.ImagePrefix, a.cfg.ImagesDir)
	r.Static("/static", a.cfg.StaticDir)

	r.GET("/healthz", a.healthz)
	r.GET("/", a.home)

	r.GET("/portfolio", a.portfolioFragment)
	r.GET("/portfolio/key", a.portfolioKey)
	r.GET("/portfolio/swipe", a.portfolioSwipe)
	r.GET("/portfolio/pinch", a.portfolioPinch)

	r.GET("/contact-form", a.contactForm)
	r.POST("/contact", a.contactSubmit)
	r.POST("/contact/validate/:field", a.contactValidate)
	r.GET("/contact/banner/dismiss", a.contactDismiss)

	r.GET(thumbs.RoutePrefix+"/:size/*path", a.thumbnail)

	a.setupAdminRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{"message": NotFoundText})
	})
	return r
}

func (a *app) healthz(c *gin.Context) {
	if err := a.store.Ping(c.Request.Context()); err != nil {
		a.logger.Error("health check failed", "err", err)
		c.String(http.StatusServiceUnavailable, "unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}
