package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-sirbu/portfolio/internal/thumbs"
)

func (a *app) thumbnail(c *gin.Context) {
	size, err := thumbs.ParseSize(c.Param("size"))
	if err != nil {
		c.String(http.StatusNotFound, "unknown size")
		return
	}
	p, err := a.thumbs.Path(size, c.Param("path"))
	switch {
	case errors.Is(err, thumbs.ErrNotFound):
		c.String(http.StatusNotFound, "image not found")
		return
	case err != nil:
		a.logger.Error("thumbnail failed", "path", c.Param("path"), "size", string(size), "err", err)
		c.String(http.StatusInternalServerError, "thumbnail failed")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(p)
}
