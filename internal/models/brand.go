// internal/models/brand.go
package models

// BrandProfile is the read-only brand snapshot attached to a generation
// request. It is owned and edited outside this service.
type BrandProfile struct {
	Name          string   `json:"name"`
	CategoryHints []string `json:"categoryHints"`
	Description   string   `json:"description"`
	Services      []string `json:"services"`
	Products      []string `json:"products"`
	Audience      string   `json:"audience"`
	Location      string   `json:"location"`
	Platforms     []string `json:"platforms"`
	Voice         string   `json:"voice"`
	VisualStyle   string   `json:"visualStyle"`
	SiteText      string   `json:"siteText"`
}

// BusinessTypeDetection is the classifier output. Recomputed per request,
// never persisted.
type BusinessTypeDetection struct {
	PrimaryType         string   `json:"primaryType"`
	PrimaryConfidence   int      `json:"primaryConfidence"`
	SecondaryType       string   `json:"secondaryType,omitempty"`
	SecondaryConfidence int      `json:"secondaryConfidence,omitempty"`
	Signals             []string `json:"signals"`
}
