// Package normalizer maps source-specific lead payloads onto the canonical
// contact fields. Every known source has its own strategy; unknown sources use
// the generic one. Normalization never fails: missing fields fall back to
// empty values or a "<Source> Lead" name.
package normalizer

import (
	"strings"

	"leadsync_backend/platform/phone"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lead is the canonical result of normalizing one payload.
type Lead struct {
	Name     string
	Phone    string
	Email    string
	Tags     []string
	Notes    string
	Metadata map[string]string
}

// MetadataLeadSource is the metadata key that always records the origin source.
const MetadataLeadSource = "lead_source"

const defaultEventType = "lead.created"

type strategy func(f fields, payload any) Lead

// Normalizer dispatches payloads to per-source strategies.
type Normalizer struct {
	region     string
	strategies map[string]strategy
}

// New creates a normalizer. defaultRegion is used to parse phone numbers
// that carry no country prefix.
func New(defaultRegion string) *Normalizer {
	return &Normalizer{
		region: defaultRegion,
		strategies: map[string]strategy{
			"angi":        normalizeAngi,
			"thumbtack":   normalizeThumbtack,
			"homeadvisor": normalizeHomeAdvisor,
			"google":      normalizeGoogle,
			"facebook":    normalizeFacebook,
			"yelp":        normalizeYelp,
		},
	}
}

// Known reports whether source has a dedicated strategy.
func (n *Normalizer) Known(source string) bool {
	_, ok := n.strategies[strings.ToLower(strings.TrimSpace(source))]
	return ok
}

// KnownSourceKey returns the lower-cased name of a source with a dedicated
// strategy, or "" for any other source.
func KnownSourceKey(source string) string {
	key := strings.ToLower(strings.TrimSpace(source))
	if _, ok := displayNames[key]; ok {
		return key
	}
	return ""
}

// Sources lists the sources with a dedicated strategy.
func (n *Normalizer) Sources() []string {
	out := make([]string, 0, len(n.strategies))
	for source := range n.strategies {
		out = append(out, source)
	}
	return out
}

// Normalize maps a decoded JSON payload from source onto a Lead.
// Dispatch ignores case; tags and lead_source keep the source as given.
func (n *Normalizer) Normalize(source string, payload any) Lead {
	source = strings.TrimSpace(source)
	key := strings.ToLower(source)
	f := asFields(payload)

	var lead Lead
	if s, ok := n.strategies[key]; ok {
		lead = s(f, payload)
	} else {
		lead = normalizeGeneric(f, payload)
	}

	if lead.Metadata == nil {
		lead.Metadata = map[string]string{}
	}
	if lead.Name == "" {
		lead.Name = joinName(lead.Metadata["first_name"], lead.Metadata["last_name"])
	}
	if lead.Name == "" {
		lead.Name = DisplayName(key) + " Lead"
	}
	lead.Phone = phone.NormalizeE164(lead.Phone, n.region)
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	lead.Notes = strings.TrimSpace(lead.Notes)
	lead.Tags = []string{source}
	lead.Metadata[MetadataLeadSource] = source
	return lead
}

var displayNames = map[string]string{
	"angi":        "Angi",
	"thumbtack":   "Thumbtack",
	"homeadvisor": "HomeAdvisor",
	"google":      "Google",
	"facebook":    "Facebook",
	"yelp":        "Yelp",
}

// DisplayName returns the human-readable name of a source.
func DisplayName(source string) string {
	if name, ok := displayNames[source]; ok {
		return name
	}
	spaced := strings.NewReplacer("_", " ", "-", " ").Replace(source)
	if strings.TrimSpace(spaced) == "" {
		return "Webhook"
	}
	return cases.Title(language.English).String(spaced)
}

// IsTest reports whether the payload marks itself as test traffic.
func IsTest(payload any) bool {
	return asFields(payload).flag("is_test", "isTest", "test", "test_lead", "testLead")
}

// EventType returns the payload's declared event type, or "lead.created".
func EventType(payload any) string {
	if t := asFields(payload).str("event_type", "eventType", "type"); t != "" {
		return t
	}
	return defaultEventType
}
