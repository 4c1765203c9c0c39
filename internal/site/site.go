// Package site holds the editable copy of the portfolio: personal details,
// hero, about, services, contact and footer text.
package site

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultContent []byte

type Person struct {
	Name         string `yaml:"name"`
	Title        string `yaml:"title"`
	Tagline      string `yaml:"tagline"`
	Description  string `yaml:"description"`
	Availability string `yaml:"availability"`
	Image        string `yaml:"image"`
	ImageAlt     string `yaml:"image_alt"`
	Logo         string `yaml:"logo"`
}

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type Stat struct {
	Number string `yaml:"number"`
	Label  string `yaml:"label"`
}

type Hero struct {
	Badge          string `yaml:"badge"`
	Title          string `yaml:"title"`
	TitleHighlight string `yaml:"title_highlight"`
	Description    string `yaml:"description"`
	Primary        Link   `yaml:"primary"`
	Secondary      Link   `yaml:"secondary"`
	Stats          []Stat `yaml:"stats"`
}

// Service is an offering shown in the about section. Category names the
// portfolio category its card links to.
type Service struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Category    string `yaml:"category"`
}

type About struct {
	Title          string    `yaml:"title"`
	Subtitle       string    `yaml:"subtitle"`
	StoryTitle     string    `yaml:"story_title"`
	Story          []string  `yaml:"story"`
	SkillsTitle    string    `yaml:"skills_title"`
	Skills         []string  `yaml:"skills"`
	ServicesTitle  string    `yaml:"services_title"`
	Services       []Service `yaml:"services"`
	CTATitle       string    `yaml:"cta_title"`
	CTADescription string    `yaml:"cta_description"`
	CTAButton      Link      `yaml:"cta_button"`
	CTABackgrounds []string  `yaml:"cta_backgrounds"`
}

type Portfolio struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
}

type Contact struct {
	Title           string            `yaml:"title"`
	Subtitle        string            `yaml:"subtitle"`
	InfoTitle       string            `yaml:"info_title"`
	InfoDescription string            `yaml:"info_description"`
	Email           string            `yaml:"email"`
	Phone           string            `yaml:"phone"`
	Location        string            `yaml:"location"`
	Social          map[string]string `yaml:"social"`
	RecentWorkTitle string            `yaml:"recent_work_title"`
	RecentWork      []string          `yaml:"recent_work"`
	FormTitle       string            `yaml:"form_title"`
	Placeholders    map[string]string `yaml:"placeholders"`
	SubmitButton    string            `yaml:"submit_button"`
	SubmittingText  string            `yaml:"submitting_text"`
}

type Footer struct {
	BrandTitle       string   `yaml:"brand_title"`
	BrandDescription string   `yaml:"brand_description"`
	QuickLinks       []Link   `yaml:"quick_links"`
	Services         []string `yaml:"services"`
}

// Content is the whole site copy.
type Content struct {
	Person    Person    `yaml:"person"`
	Nav       []Link    `yaml:"nav"`
	Hero      Hero      `yaml:"hero"`
	About     About     `yaml:"about"`
	Portfolio Portfolio `yaml:"portfolio"`
	Contact   Contact   `yaml:"contact"`
	Footer    Footer    `yaml:"footer"`
}

// Default returns the compiled-in copy.
func Default() (*Content, error) {
	return Parse(defaultContent)
}

// Load reads content from path, or the compiled-in copy when path is empty.
func Load(path string) (*Content, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site content %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML content document.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse site content: %w", err)
	}
	if strings.TrimSpace(c.Person.Name) == "" {
		return nil, fmt.Errorf("parse site content: person.name is required")
	}
	return &c, nil
}

// ServiceCategory returns the portfolio category a service links to.
func (c *Content) ServiceCategory(serviceID string) (string, bool) {
	for _, s := range c.About.Services {
		if s.ID == serviceID && s.Category != "" {
			return s.Category, true
		}
	}
	return "", false
}

// SocialLinks returns the configured social links in a stable order, skipping blanks.
func (c *Content) SocialLinks() []Link {
	order := []string{"behance", "dribbble", "instagram", "linkedin", "twitter"}
	var out []Link
	for _, key := range order {
		if href := strings.TrimSpace(c.Contact.Social[key]); href != "" {
			out = append(out, Link{Label: strings.ToUpper(key[:1]) + key[1:], Href: href})
		}
	}
	return out
}
