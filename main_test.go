package main

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/studio-sirbu/portfolio/internal/analytics"
	"github.com/studio-sirbu/portfolio/internal/catalog"
	"github.com/studio-sirbu/portfolio/internal/config"
	"github.com/studio-sirbu/portfolio/internal/contact"
	applog "github.com/studio-sirbu/portfolio/internal/log"
	"github.com/studio-sirbu/portfolio/internal/site"
)

type stubSender struct {
	mu    sync.Mutex
	err   error
	forms []contact.Form
}

func (s *stubSender) Name() string { return "stub" }

func (s *stubSender) Send(_ context.Context, f contact.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, f)
	return s.err
}

func (s *stubSender) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

type testServer struct {
	app    *app
	router *gin.Engine
	sender *stubSender
	images string
}

func newTestServer(t *testing.T, sendErr error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := applog.Discard()
	cfg := config.Config{
		TemplatesGlob: "templates/*",
		StaticDir:     "static",
		ImagesDir:     t.TempDir(),
		ThumbCacheDir: t.TempDir(),
		Tracking:      true,
		Admin:         config.Admin{Username: "studio", Password: "pa55word"},
		Contact: config.Contact{
			Policy:        contact.PolicyStrict,
			BannerDismiss: 5 * time.Second,
		},
	}
	content, err := site.Default()
	require.NoError(t, err)
	store, err := analytics.Open(context.Background(), analytics.MemoryDSN, analytics.WithLogger(logger), analytics.WithSalt("t"))
	require.NoError(t, err)

	sender := &stubSender{err: sendErr}
	a, err := newApp(cfg, logger, catalog.Default(), content, store, sender)
	require.NoError(t, err)
	t.Cleanup(func() {
		a.bg.Wait()
		_ = store.Close()
	})
	return &testServer{app: a, router: a.router(), sender: sender, images: cfg.ImagesDir}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("HX-Request", "true")
	return s.do(t, req)
}

func (s *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req)
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestHomeBrowsingAll(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	section := doc.Find("#portfolio")
	require.Equal(t, 1, section.Length())
	require.Equal(t, "browsing", section.AttrOr("data-phase", ""))
	require.Equal(t, "false", section.AttrOr("data-scroll-locked", ""))
	require.False(t, doc.Find("body").HasClass("scroll-locked"))

	require.Equal(t, 11, doc.Find(".works .work").Length())
	require.Equal(t, 5, doc.Find(".category-card").Length())
	require.Equal(t, catalog.All, doc.Find(".category-card.active").AttrOr("data-category", ""))
	require.Equal(t, "11", strings.TrimSpace(doc.Find(".category-card.active .count").Text()))
	require.Equal(t, 0, doc.Find("#case-study").Length())
	require.Equal(t, 0, doc.Find("#viewer").Length())

	// Services link into their portfolio category.
	href := doc.Find(`.service[data-service="social"] a`).AttrOr("href", "")
	require.Equal(t, "/?category=Social+Media#portfolio", href)
}

func TestHomeDeepLinkOpensViewer(t *testing.T) {
	s := newTestServer(t, nil)
	doc := parseHTML(t, s.get(t, "/?work=branding-granier&image=2"))

	section := doc.Find("#portfolio")
	require.Equal(t, "image", section.AttrOr("data-phase", ""))
	require.Equal(t, "2", section.AttrOr("data-lock-depth", ""))
	require.True(t, doc.Find("body").HasClass("scroll-locked"))

	require.Equal(t, "Granier Brand Identity", doc.Find("#case-title").Text())
	require.Equal(t, 22, doc.Find(".case-gallery li").Length())
	require.Contains(t, doc.Find(".summary strong").Text(), "modern lifestyle brand")
	require.Equal(t, "2", doc.Find("#viewer").AttrOr("data-index", ""))
	require.Equal(t, "3 / 23", strings.TrimSpace(doc.Find("#viewer figcaption").Text()))
	require.Equal(t, "/images/branding/granier-presentation/granier-03.jpg", doc.Find("#viewer-image").AttrOr("src", ""))
	require.Equal(t, "/?image=3&work=branding-granier", doc.Find("#viewer .next").AttrOr("href", ""))
	require.Equal(t, "1", doc.Find("#viewer .next").AttrOr("data-step", ""))
	require.Equal(t, "-1", doc.Find("#viewer .prev").AttrOr("data-step", ""))
	_, fixed := doc.Find("#viewer .next").Attr("hx-get")
	require.False(t, fixed, "steps are resolved against the state at send time")
	require.Equal(t, "/?image=1&work=branding-granier", doc.Find("#viewer .prev").AttrOr("href", ""))
	require.Equal(t, "/?work=branding-granier", doc.Find("#viewer .close").AttrOr("href", ""))
}

func TestHomeFailsOpen(t *testing.T) {
	s := newTestServer(t, nil)

	doc := parseHTML(t, s.get(t, "/?category=Illustration&work=nope&image=4"))
	section := doc.Find("#portfolio")
	require.Equal(t, "browsing", section.AttrOr("data-phase", ""))
	require.Equal(t, catalog.All, doc.Find(".category-card.active").AttrOr("data-category", ""))

	doc = parseHTML(t, s.get(t, "/?work=packaging-tirol&image=99"))
	require.Equal(t, "case-study", doc.Find("#portfolio").AttrOr("data-phase", ""))
	require.Equal(t, 0, doc.Find("#viewer").Length())
}

func TestPortfolioFragmentFiltersAndPushesURL(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.get(t, "/portfolio?category=Social+Media")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/?category=Social+Media", rec.Header().Get("HX-Push-Url"))

	doc := parseHTML(t, rec)
	require.Equal(t, 0, doc.Find("header.site-nav").Length())
	works := doc.Find(".works .work")
	require.Equal(t, 3, works.Length())
	works.Each(func(_ int, w *goquery.Selection) {
		require.Equal(t, "Social Media", w.AttrOr("data-category", ""))
	})
	require.Equal(t, "/?category=Social+Media&work=social-laur-gifts",
		doc.Find(`.work[data-work="social-laur-gifts"] a`).AttrOr("href", ""))
}

func TestPortfolioOpenRecordsView(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.get(t, "/portfolio?work=packaging-selik&op=open")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/?work=packaging-selik", rec.Header().Get("HX-Push-Url"))

	// Closing the viewer is not an open.
	s.get(t, "/portfolio?work=packaging-selik")
	s.app.bg.Wait()

	top, err := s.app.store.TopWorks(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "packaging-selik", top[0].WorkID)
	require.EqualValues(t, 1, top[0].Views)
}

func TestPortfolioKeys(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name    string
		query   string
		code    int
		pushURL string
	}{
		{"escape closes image", "key=Escape&work=branding-renee&image=4", http.StatusOK, "/?work=branding-renee"},
		{"escape closes case study", "key=Escape&category=Branding&work=branding-renee", http.StatusOK, "/?category=Branding"},
		{"right wraps to first", "key=ArrowRight&work=social-esterra-park&image=3", http.StatusOK, "/?image=0&work=social-esterra-park"},
		{"left wraps to last", "key=ArrowLeft&work=social-esterra-park&image=0", http.StatusOK, "/?image=3&work=social-esterra-park"},
		{"arrows ignored in case study", "key=ArrowRight&work=social-esterra-park", http.StatusNoContent, ""},
		{"escape ignored while browsing", "key=Escape", http.StatusNoContent, ""},
		{"other keys ignored", "key=Enter&work=social-esterra-park&image=1", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(t, "/portfolio/key?"+tt.query)
			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.pushURL, rec.Header().Get("HX-Push-Url"))
		})
	}
}

func TestPortfolioSwipe(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/portfolio/swipe?work=packaging-tirol&image=6"

	rec := s.get(t, base+"&dx=-120&dy=10")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/?image=0&work=packaging-tirol", rec.Header().Get("HX-Push-Url"))

	rec = s.get(t, base+"&dx=90&dy=-5")
	require.Equal(t, "/?image=5&work=packaging-tirol", rec.Header().Get("HX-Push-Url"))

	require.Equal(t, http.StatusNoContent, s.get(t, base+"&dx=30&dy=0").Code)
	require.Equal(t, http.StatusNoContent, s.get(t, base+"&dx=80&dy=120").Code)
	require.Equal(t, http.StatusBadRequest, s.get(t, base+"&dx=left&dy=0").Code)
	require.Equal(t, http.StatusBadRequest, s.get(t, base+"&dx=NaN&dy=0").Code)
	require.Equal(t, http.StatusBadRequest, s.get(t, base+"&dx=-120&dy=Inf").Code)
	require.Equal(t, http.StatusBadRequest, s.get(t, base+"&dx=-Inf&dy=0").Code)
}

func TestPortfolioKeySteps(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/portfolio/key?work=branding-granier&image=2"

	rec := s.get(t, base+"&key=ArrowRight&steps=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/?image=4&work=branding-granier", rec.Header().Get("HX-Push-Url"))

	rec = s.get(t, base+"&key=ArrowLeft&steps=4")
	require.Equal(t, "/?image=21&work=branding-granier", rec.Header().Get("HX-Push-Url"))

	rec = s.get(t, base+"&key=Escape&steps=3")
	require.Equal(t, "/?work=branding-granier", rec.Header().Get("HX-Push-Url"))

	require.Equal(t, http.StatusBadRequest, s.get(t, base+"&key=ArrowRight&steps=0").Code)
	require.Equal(t, http.StatusBadRequest, s.get(t, base+"&key=ArrowRight&steps=many").Code)
}

func TestPortfolioPinch(t *testing.T) {
	s := newTestServer(t, nil)

	var z struct {
		Scale     float64 `json:"scale"`
		X         float64 `json:"x"`
		Identity  bool    `json:"identity"`
		Transform string  `json:"transform"`
	}
	rec := s.get(t, "/portfolio/pinch?work=packaging-tirol&image=1&factor=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &z))
	require.Equal(t, 2.0, z.Scale)
	require.False(t, z.Identity)

	rec = s.get(t, "/portfolio/pinch?work=packaging-tirol&image=1&zs=2&zx=10&factor=1&dx=100")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &z))
	require.Equal(t, 25.0, z.X)

	rec = s.get(t, "/portfolio/pinch?work=packaging-tirol&image=1&zs=2&factor=0.25")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &z))
	require.True(t, z.Identity)
	require.Equal(t, "scale(1.00) translate(0.0%, 0.0%)", z.Transform)

	rec = s.get(t, "/portfolio/pinch?work=packaging-tirol&image=1&factor=2&dx=NaN&zx=Inf")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &z))
	require.Equal(t, 2.0, z.Scale)
	require.Zero(t, z.X)

	require.Equal(t, http.StatusNoContent, s.get(t, "/portfolio/pinch?work=packaging-tirol&factor=2").Code)
}

func validContact() url.Values {
	return url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.com"},
		"subject": {"New identity"},
		"message": {"We are opening a bakery."},
	}
}

func TestContactInvalidNeverSends(t *testing.T) {
	s := newTestServer(t, nil)
	form := validContact()
	form.Set("name", "  ")
	form.Set("email", "ana@")

	rec := s.postForm(t, "/contact", form)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, s.sender.sent())

	doc := parseHTML(t, rec)
	require.Equal(t, "Name is required", doc.Find("#error-name").Text())
	require.Equal(t, "Email is invalid", doc.Find("#error-email").Text())
	require.Empty(t, doc.Find("#error-subject").Text())
	require.True(t, doc.Find("#contact-name").Parent().HasClass("invalid"))
	require.Equal(t, "New identity", doc.Find("#contact-subject").AttrOr("value", ""))
	require.Contains(t, doc.Find("#contact-banner").Text(), ContactInvalid)
}

func TestContactSentResetsForm(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.postForm(t, "/contact", validContact())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, s.sender.sent())

	doc := parseHTML(t, rec)
	banner := doc.Find("#contact-banner")
	require.True(t, banner.HasClass("banner-success"))
	require.Contains(t, banner.Text(), ContactSent)
	require.Equal(t, "load delay:5000ms", banner.AttrOr("hx-trigger", ""))
	require.Empty(t, doc.Find("#contact-name").AttrOr("value", ""))
	require.Empty(t, strings.TrimSpace(doc.Find("#contact-message").Text()))

	msgs, err := s.app.store.Messages(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, contact.OutcomeSent, msgs[0].Outcome)
}

func TestContactTransportFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport", contact.ErrTransport, ContactFailed},
		{"not configured", contact.ErrNotConfigured, ContactUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.err)
			doc := parseHTML(t, s.postForm(t, "/contact", validContact()))

			banner := doc.Find("#contact-banner")
			require.True(t, banner.HasClass("banner-error"))
			require.Contains(t, banner.Text(), tt.want)
			require.Equal(t, "Ana", doc.Find("#contact-name").AttrOr("value", ""))
		})
	}
}

func TestContactValidateField(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.postForm(t, "/contact/validate/email", url.Values{"email": {"nope"}, "on": {"change"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Email is invalid", parseHTML(t, rec).Find("#error-email").Text())

	rec = s.postForm(t, "/contact/validate/email", url.Values{"email": {"nope"}, "on": {"input"}})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	require.Equal(t, 1, doc.Find("#error-email").Length())
	require.Empty(t, doc.Find("#error-email").Text())

	require.Equal(t, http.StatusNotFound, s.postForm(t, "/contact/validate/phone", url.Values{}).Code)
}

func TestContactFormFragment(t *testing.T) {
	s := newTestServer(t, nil)
	doc := parseHTML(t, s.get(t, "/contact-form"))
	require.Equal(t, "/contact", doc.Find("form").AttrOr("hx-post", ""))
	require.Equal(t, "Your Email", doc.Find("#contact-email").AttrOr("placeholder", ""))
	require.Equal(t, 0, doc.Find("#contact-banner").Length())
}

func TestThumbnails(t *testing.T) {
	s := newTestServer(t, nil)
	src := filepath.Join(s.images, "work", "cover.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, imaging.Save(imaging.New(900, 600, color.NRGBA{R: 10, G: 20, B: 30, A: 255}), src))

	rec := s.get(t, "/thumbs/thumb/work/cover.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	require.Equal(t, http.StatusNotFound, s.get(t, "/thumbs/thumb/work/missing.png").Code)
	require.Equal(t, http.StatusNotFound, s.get(t, "/thumbs/poster/work/cover.png").Code)
}

func TestVisitorTracking(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("DNT", "1")
	s.do(t, req)
	s.get(t, "/static/site.css")
	s.get(t, "/?category=Logo")
	s.app.bg.Wait()

	visits, err := s.app.store.Visitors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	require.Equal(t, "/", visits[0].Path)
	require.Len(t, visits[0].HashedIP, 16)
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/admin/dashboard")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = s.postForm(t, "/admin/login", url.Values{"username": {"studio"}, "password": {"wrong"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), AdminLoginFailed)

	rec = s.postForm(t, "/admin/login", url.Values{"username": {"studio"}, "password": {"pa55word"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	s.postForm(t, "/contact", validContact())
	s.get(t, "/portfolio?work=logo-concept-store&op=open")
	s.app.bg.Wait()

	authed := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.AddCookie(cookies[0])
		return s.do(t, req)
	}

	rec = authed("/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	require.Equal(t, "1", doc.Find("#total-messages").Text())
	require.Equal(t, "1", doc.Find("#work-views").Text())
	require.Contains(t, doc.Find(`.top-works tr[data-work="logo-concept-store"]`).Text(), "Concept Store")

	rec = authed("/admin/messages")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "We are opening a bakery.")

	rec = authed("/admin/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.TotalMessages)

	rec = authed("/admin/export/stats")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "admin-stats.json")

	rec = s.get(t, "/admin/logout")
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestPrivacyAndNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/privacy")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Do Not Track")

	rec = s.get(t, "/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), NotFoundText)
}
