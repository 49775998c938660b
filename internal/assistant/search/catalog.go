package search

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

const catalogPathEnv = "SB_SEARCH_CATALOG_PATH"

//go:embed catalog.yaml
var catalogFS embed.FS

type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Catalog struct {
	TrustedDomains []string `yaml:"trusted_domains"`
	Sources        []Source `yaml:"sources"`
	SiteFanout     int      `yaml:"site_fanout"`
	SubqueryLimit  int      `yaml:"subquery_limit"`
}

func (c Catalog) SourceNames() []string {
	out := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = s.Name
	}
	return out
}

func (c Catalog) SourceURLs() []string {
	out := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = s.URL
	}
	return out
}

// used when the YAML is missing or invalid
var fallbackCatalog = Catalog{
	TrustedDomains: []string{
		"islamweb.net", "islamqa.info", "dar-alifta.org", "alukah.net", "islamway.net",
		"binbaz.org.sa", "al-eman.com", "dorar.net", "fatawa.islamonline.net", "alifta.gov.sa",
	},
	Sources: []Source{
		{Name: "إسلام ويب - فتاوى", URL: "https://www.islamweb.net/ar/fatawa/"},
		{Name: "موقع دار الإفتاء المصرية", URL: "https://www.dar-alifta.org/AR/default.aspx"},
		{Name: "موقع الألوكة الشرعية", URL: "https://www.alukah.net/sharia/"},
		{Name: "طريق الإسلام", URL: "https://ar.islamway.net/"},
		{Name: "موقع فتاوى اللجنة الدائمة", URL: "https://www.alifta.gov.sa/"},
		{Name: "موقع الشيخ ابن باز", URL: "https://binbaz.org.sa/fatwas/"},
	},
	SiteFanout:    3,
	SubqueryLimit: 3,
}

type yamlCatalog struct {
	Kind    string `yaml:"catalog"`
	Version int    `yaml:"version"`
	Catalog `yaml:",inline"`
}

var (
	catalogOnce  sync.Once
	catalogCache Catalog
	catalogErr   error
)

// DefaultCatalog returns the embedded catalog, or the file named by
// SB_SEARCH_CATALOG_PATH. A load failure is logged once and the built-in
// catalog is used instead.
func DefaultCatalog(log *logger.Logger) Catalog {
	catalogOnce.Do(func() {
		var data []byte
		data, catalogErr = readCatalog()
		if catalogErr == nil {
			catalogCache, catalogErr = ParseCatalog(data)
		}
	})
	if catalogErr != nil {
		if log != nil {
			log.Warn("search: catalog load failed; using fallback", "error", catalogErr)
		}
		return fallbackCatalog
	}
	return catalogCache
}

func readCatalog() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(catalogPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile("catalog.yaml")
}

func ParseCatalog(data []byte) (Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Catalog{}, err
	}
	if strings.TrimSpace(doc.Kind) != "search" {
		return Catalog{}, fmt.Errorf("unexpected catalog: %q", doc.Kind)
	}
	c := doc.Catalog
	if len(c.TrustedDomains) == 0 {
		return Catalog{}, errors.New("no trusted domains defined")
	}
	if len(c.Sources) == 0 {
		return Catalog{}, errors.New("no sources defined")
	}
	for i, s := range c.Sources {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.URL) == "" {
			return Catalog{}, fmt.Errorf("source %d: name and url are required", i)
		}
	}
	if c.SiteFanout <= 0 {
		c.SiteFanout = fallbackCatalog.SiteFanout
	}
	if c.SiteFanout > len(c.TrustedDomains) {
		c.SiteFanout = len(c.TrustedDomains)
	}
	if c.SubqueryLimit <= 0 {
		c.SubqueryLimit = fallbackCatalog.SubqueryLimit
	}
	return c, nil
}
