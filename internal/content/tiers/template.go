// internal/content/tiers/template.go
package tiers

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"content-workers/internal/models"
)

// Template is the offline liveness floor: deterministic assembly from the
// brand profile, no network, never fails. Its headline and caption are
// built from the same profile fields so they stay on message.
type Template struct{}

func NewTemplate() *Template {
	return &Template{}
}

func (t *Template) Name() string {
	return models.SourceTierTemplate
}

func (t *Template) Generate(_ context.Context, req *Request) (*Draft, error) {
	name := strings.TrimSpace(req.Profile.Name)
	if name == "" {
		name = "Our Team"
	}

	headline, cta := goalFraming(req.ContentGoal, name)

	var caption strings.Builder
	caption.WriteString(name)
	if req.Profile.Description != "" {
		caption.WriteString(" — ")
		caption.WriteString(strings.TrimRight(req.Profile.Description, ". "))
		caption.WriteString(".")
	}
	if len(req.Profile.Services) > 0 {
		caption.WriteString(fmt.Sprintf(" We offer %s.", joinNatural(req.Profile.Services)))
	}
	if req.Profile.Location != "" {
		caption.WriteString(fmt.Sprintf(" Find us in %s.", req.Profile.Location))
	}
	if req.Profile.Audience != "" {
		caption.WriteString(fmt.Sprintf(" Made for %s.", req.Profile.Audience))
	}

	subheadline := ""
	if len(req.Profile.Services) > 0 {
		subheadline = req.Profile.Services[0]
	} else if req.Profile.Description != "" {
		subheadline = req.Profile.Description
	}

	return &Draft{
		Headline:    headline,
		Subheadline: subheadline,
		Caption:     caption.String(),
		CTA:         cta,
		Hashtags:    t.buildHashtags(req, name),
	}, nil
}

// joinNatural renders a list as prose: "a", "a and b", "a, b and c".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func goalFraming(goal, name string) (headline, cta string) {
	switch strings.ToLower(goal) {
	case "promotion":
		return fmt.Sprintf("Special Offer at %s", name), "Claim your offer today"
	case "announcement":
		return fmt.Sprintf("Big News from %s", name), "Learn more"
	case "engagement":
		return fmt.Sprintf("%s Wants to Hear From You", name), "Tell us in the comments"
	default:
		return fmt.Sprintf("Discover %s", name), "Follow us for more"
	}
}

func (t *Template) buildHashtags(req *Request, name string) []string {
	var tags []string
	add := func(raw string) {
		tag := sanitizeHashtag(raw)
		if tag == "" {
			return
		}
		for _, existing := range tags {
			if existing == tag {
				return
			}
		}
		tags = append(tags, tag)
	}

	add(name)
	if req.Detection.PrimaryType != "" && req.Detection.PrimaryType != "general" {
		add(req.Detection.PrimaryType)
	}
	add(req.ContentGoal)
	if req.Profile.Location != "" {
		add(req.Profile.Location)
		add("local")
	}
	for _, service := range req.Profile.Services {
		if len(tags) >= 6 {
			break
		}
		add(service)
	}

	return tags
}

func sanitizeHashtag(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}
