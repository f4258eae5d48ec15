package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// sitemapLimit caps the number of post URLs in sitemap.xml.
const sitemapLimit = 1000

type SEOHandler struct {
	db      *gorm.DB
	siteURL string
}

func NewSEOHandler(db *gorm.DB, siteURL string) *SEOHandler {
	return &SEOHandler{db: db, siteURL: strings.TrimSuffix(siteURL, "/")}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /auth/
Disallow: /create/
Disallow: /follow/
Disallow: /media/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the index, groups and the most recent posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	conn := h.db.WithContext(c.Request.Context())

	var groups []models.Group
	if err := conn.Order("slug").Find(&groups).Error; err != nil {
		serverError(c, fmt.Errorf("sitemap groups: %w", err))
		return
	}

	var posts []models.Post
	err := conn.Select("id", "created_at").
		Scopes(models.PostsNewestFirst).
		Limit(sitemapLimit).
		Find(&posts).Error
	if err != nil {
		serverError(c, fmt.Errorf("sitemap posts: %w", err))
		return
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        h.siteURL + "/",
		LastMod:    time.Now().Format("2006-01-02"),
		ChangeFreq: "hourly",
		Priority:   "1.0",
	})
	for _, g := range groups {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/group/" + g.Slug + "/",
			ChangeFreq: "daily",
			Priority:   "0.8",
		})
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:      h.siteURL + postPath(p.ID),
			LastMod:  p.CreatedAt.Format("2006-01-02"),
			Priority: "0.6",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		serverError(c, fmt.Errorf("sitemap encode: %w", err))
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
