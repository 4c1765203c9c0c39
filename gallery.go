package main

import (
	"context"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studio-sirbu/portfolio/internal/casestudy"
	"github.com/studio-sirbu/portfolio/internal/catalog"
	"github.com/studio-sirbu/portfolio/internal/portfolio"
)

const (
	pagePath     = "/"
	fragmentPath = "/portfolio"
)

// galleryView is everything portfolio.html needs to draw one state.
type galleryView struct {
	Title    string
	Subtitle string

	Phase  string
	Active string
	Cards  []portfolio.CategoryCard
	Works  []*catalog.WorkItem

	Work    *catalog.WorkItem
	Summary template.HTML
	Brief   *casestudy.Document
	Thumbs  []catalog.IndexedImage

	Image      catalog.Image
	ImageIndex int
	ImageCount int
	Zoom       portfolio.Zoom

	// Page links are plain hrefs, Frag links are HTMX fragment requests.
	Page portfolio.Links
	Frag portfolio.Links

	// State is the encoded snapshot scripts send back with gestures.
	State     string
	PushURL   string
	Locked    bool
	LockDepth int
}

func (a *app) galleryView(n *portfolio.Navigator) galleryView {
	f := n.Filter()
	snap := n.Snapshot()
	v := galleryView{
		Title:      a.content.Portfolio.Title,
		Subtitle:   a.content.Portfolio.Subtitle,
		Phase:      n.Phase().String(),
		Active:     f.Active(),
		Cards:      f.Categories(),
		Works:      f.FilteredWorks(),
		Work:       n.SelectedWork(),
		ImageIndex: portfolio.NoImage,
		Zoom:       n.Zoom(),
		Page:       n.Links(pagePath),
		Frag:       n.Links(fragmentPath),
		State:      snap.Query().Encode(),
		PushURL:    snap.URL(pagePath),
	}

	if w := v.Work; w != nil {
		v.Summary = casestudy.RenderMarkdown(w.CaseStudy.Summary)
		v.Brief = casestudy.Parse(w.CaseStudy.Brief)
		v.Thumbs = catalog.VisibleGallery(w)
		v.ImageCount = w.GallerySize()
	}
	if img, ok := n.CurrentImage(); ok {
		v.Image = img
		v.ImageIndex, _ = n.ImageIndex()
	}
	v.Locked = n.ScrollLocked()
	v.LockDepth = n.LockDepth()
	return v
}

// renderGallery answers an HTMX navigation with the section fragment and
// pushes the new state onto the browser history.
func (a *app) renderGallery(c *gin.Context, n *portfolio.Navigator) {
	v := a.galleryView(n)
	c.Header("HX-Push-Url", v.PushURL)
	c.HTML(http.StatusOK, "portfolio.html", v)
}

func (a *app) navigatorFromQuery(c *gin.Context) *portfolio.Navigator {
	return portfolio.FromQuery(a.index, c.Request.URL.Query())
}

func (a *app) home(c *gin.Context) {
	n := a.navigatorFromQuery(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":    a.content,
		"social":  a.content.SocialLinks(),
		"gallery": a.galleryView(n),
		"contact": a.contactView(nil, nil, nil),
	})
}

// portfolioFragment renders the state named by the query. op=open marks a
// case study being opened from the grid so it can be counted.
func (a *app) portfolioFragment(c *gin.Context) {
	n := a.navigatorFromQuery(c)
	if c.Query("op") == "open" && n.SelectedWork() != nil {
		id := n.SelectedWork().ID
		a.background(func(ctx context.Context) {
			if err := a.store.RecordWorkView(ctx, id); err != nil {
				a.logger.Warn("record work view", "work", id, "err", err)
			}
		})
	}
	a.renderGallery(c, n)
}

// portfolioKey applies a keyboard shortcut, steps times for arrows. Keys that
// do nothing in the current phase answer 204 so HTMX leaves the page alone.
func (a *app) portfolioKey(c *gin.Context) {
	steps, err := strconv.Atoi(c.DefaultQuery("steps", "1"))
	if err != nil || steps < 1 {
		c.String(http.StatusBadRequest, "steps must be a positive integer")
		return
	}
	n := a.navigatorFromQuery(c)
	if !n.HandleKeyRepeat(c.Query("key"), steps) {
		c.Status(http.StatusNoContent)
		return
	}
	a.renderGallery(c, n)
}

func (a *app) portfolioSwipe(c *gin.Context) {
	dx, errX := strconv.ParseFloat(c.Query("dx"), 64)
	dy, errY := strconv.ParseFloat(c.Query("dy"), 64)
	if errX != nil || errY != nil || !finite(dx) || !finite(dy) {
		c.String(http.StatusBadRequest, "dx and dy must be numbers")
		return
	}
	n := a.navigatorFromQuery(c)
	if !n.HandleSwipe(dx, dy) {
		c.Status(http.StatusNoContent)
		return
	}
	a.renderGallery(c, n)
}

// portfolioPinch folds a pinch or pan gesture into the zoom the client sent
// (zs, zx, zy) and returns the resulting transform. The zoom never travels in
// the history snapshot.
func (a *app) portfolioPinch(c *gin.Context) {
	n := a.navigatorFromQuery(c)
	if n.Phase() != portfolio.ImageOpen {
		c.Status(http.StatusNoContent)
		return
	}

	q := c.Request.URL.Query()
	if zs := floatParam(q, "zs", 1); zs > 1 {
		n.Pinch(zs)
		n.Pan(floatParam(q, "zx", 0), floatParam(q, "zy", 0))
	}
	if f := floatParam(q, "factor", 1); f != 1 {
		n.Pinch(f)
	}
	n.Pan(floatParam(q, "dx", 0), floatParam(q, "dy", 0))

	z := n.Zoom()
	c.JSON(http.StatusOK, gin.H{
		"scale":     z.Scale,
		"x":         z.X,
		"y":         z.Y,
		"identity":  z.IsIdentity(),
		"transform": z.CSS(),
	})
}

func floatParam(q url.Values, key string, def float64) float64 {
	v, err := strconv.ParseFloat(q.Get(key), 64)
	if err != nil || !finite(v) {
		return def
	}
	return v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
