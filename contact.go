package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studio-sirbu/portfolio/internal/contact"
	"github.com/studio-sirbu/portfolio/internal/site"
)

// banner is the feedback strip above the form.
type banner struct {
	Kind    string // "success" or "error"
	Message string
}

type contactView struct {
	Copy    site.Contact
	Form    contact.Form
	Errors  contact.FieldErrors
	Banner  *banner
	Dismiss time.Duration
}

func (a *app) contactView(f *contact.Form, errs contact.FieldErrors, b *banner) contactView {
	v := contactView{
		Copy:    a.content.Contact,
		Errors:  errs,
		Banner:  b,
		Dismiss: a.cfg.Contact.BannerDismiss,
	}
	if f != nil {
		v.Form = *f
	}
	if v.Errors == nil {
		v.Errors = contact.FieldErrors{}
	}
	return v
}

// contactForm returns just the form, for HTMX to swap in.
func (a *app) contactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", a.contactView(nil, nil, nil))
}

func (a *app) contactSubmit(c *gin.Context) {
	var f contact.Form
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "malformed form")
		return
	}

	res := a.contact.Submit(c.Request.Context(), f)
	switch res.Outcome {
	case contact.OutcomeSent:
		// A sent form starts over empty.
		c.HTML(http.StatusOK, "contact.html", a.contactView(nil, nil, &banner{Kind: "success", Message: ContactSent}))
	case contact.OutcomeInvalid:
		c.HTML(http.StatusOK, "contact.html", a.contactView(&f, res.Errors, &banner{Kind: "error", Message: ContactInvalid}))
	case contact.OutcomeUnavailable:
		c.HTML(http.StatusOK, "contact.html", a.contactView(&f, nil, &banner{Kind: "error", Message: ContactUnavailable}))
	default:
		c.HTML(http.StatusOK, "contact.html", a.contactView(&f, nil, &banner{Kind: "error", Message: ContactFailed}))
	}
}

// contactValidate re-checks one field while the visitor edits the form.
// An input event clears the field's message; anything else (change, blur)
// validates the value.
func (a *app) contactValidate(c *gin.Context) {
	field := c.Param("field")
	if !contact.IsField(field) {
		c.String(http.StatusNotFound, "unknown field")
		return
	}
	var f contact.Form
	_ = c.ShouldBind(&f)

	msg := ""
	if c.DefaultPostForm("on", c.Query("on")) != "input" {
		msg = f.ValidateField(field)
	}
	c.HTML(http.StatusOK, "field-error", map[string]string{"Field": field, "Message": msg})
}

// contactDismiss answers the banner's delayed self-removal.
func (a *app) contactDismiss(c *gin.Context) {
	c.String(http.StatusOK, "")
}
