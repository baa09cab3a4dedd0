package normalizer

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestNormalizeEmptyPayloadUsesSourceFallbackName(t *testing.T) {
	n := New("US")
	tests := []struct {
		source string
		want   string
	}{
		{"angi", "Angi Lead"},
		{"thumbtack", "Thumbtack Lead"},
		{"homeadvisor", "HomeAdvisor Lead"},
		{"google", "Google Lead"},
		{"facebook", "Facebook Lead"},
		{"yelp", "Yelp Lead"},
		{"acme_crm", "Acme Crm Lead"},
		{"zapier", "Zapier Lead"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			lead := n.Normalize(tt.source, map[string]any{})
			if lead.Name != tt.want {
				t.Fatalf("expected name %q, got %q", tt.want, lead.Name)
			}
			if lead.Metadata[MetadataLeadSource] != tt.source {
				t.Fatalf("expected lead_source %q, got %q", tt.source, lead.Metadata[MetadataLeadSource])
			}
			if len(lead.Tags) != 1 || lead.Tags[0] != tt.source {
				t.Fatalf("expected tags [%s], got %v", tt.source, lead.Tags)
			}
		})
	}
}

func TestNormalizeDispatchIgnoresCaseButKeepsSource(t *testing.T) {
	n := New("US")
	lead := n.Normalize(" HomeAdvisor ", map[string]any{})
	if lead.Name != "HomeAdvisor Lead" {
		t.Fatalf("expected homeadvisor fallback name, got %q", lead.Name)
	}
	if lead.Metadata[MetadataLeadSource] != "HomeAdvisor" || len(lead.Tags) != 1 || lead.Tags[0] != "HomeAdvisor" {
		t.Fatalf("expected source kept as HomeAdvisor, got %q %v", lead.Metadata[MetadataLeadSource], lead.Tags)
	}
}

func TestKnownSourceKey(t *testing.T) {
	tests := map[string]string{"angi": "angi", "Yelp": "yelp", " google ": "google", "acme": "", "": ""}
	for in, want := range tests {
		if got := KnownSourceKey(in); got != want {
			t.Fatalf("KnownSourceKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeNonObjectPayloadDoesNotPanic(t *testing.T) {
	n := New("US")
	for _, payload := range []any{nil, "text", []any{"a"}, json.Number("42")} {
		lead := n.Normalize("angi", payload)
		if lead.Name != "Angi Lead" {
			t.Fatalf("payload %v: expected fallback name, got %q", payload, lead.Name)
		}
	}
}

func TestNormalizeVariantsAreEquivalent(t *testing.T) {
	n := New("US")
	tests := []struct {
		source   string
		variants []string
	}{
		{"angi", []string{
			`{"first_name":"Jane","last_name":"Doe","phone_number":"4155552671","email_address":"jane@example.com","service_category":"Roofing","postal_code":"94103","lead_id":"A1"}`,
			`{"firstName":"Jane","lastName":"Doe","phoneNumber":"4155552671","emailAddress":"jane@example.com","serviceCategory":"Roofing","postalCode":"94103","leadId":"A1"}`,
			`{"firstName":"Jane","lastName":"Doe","primaryPhone":"4155552671","email":"jane@example.com","taskName":"Roofing","zipCode":"94103","srOid":"A1"}`,
		}},
		{"thumbtack", []string{
			`{"customer":{"name":"Jane Doe","phone":"4155552671","email":"jane@example.com"},"request":{"category":"Plumbing","description":"Leaky sink"},"location":{"zipCode":"94103"},"leadID":"T1"}`,
			`{"customer_name":"Jane Doe","customer_phone":"4155552671","customer_email":"jane@example.com","category":"Plumbing","description":"Leaky sink","zip_code":"94103","lead_id":"T1"}`,
			`{"customerName":"Jane Doe","customerPhone":"4155552671","customerEmail":"jane@example.com","category":"Plumbing","description":"Leaky sink","zipCode":"94103","leadId":"T1"}`,
		}},
		{"homeadvisor", []string{
			`{"first_name":"Jane","last_name":"Doe","phone_primary":"4155552671","email":"jane@example.com","task_name":"Painting","postal_code":"94103","sr_oid":"H1"}`,
			`{"firstName":"Jane","lastName":"Doe","phonePrimary":"4155552671","email":"jane@example.com","taskName":"Painting","postalCode":"94103","srOid":"H1"}`,
		}},
		{"facebook", []string{
			`{"full_name":"Jane Doe","phone_number":"4155552671","email":"jane@example.com","ad_name":"Spring","form_id":"F1","leadgen_id":"L1"}`,
			`{"fullName":"Jane Doe","phoneNumber":"4155552671","email":"jane@example.com","adName":"Spring","formId":"F1","leadgenId":"L1"}`,
		}},
		{"yelp", []string{
			`{"customer_name":"Jane Doe","phone":"4155552671","email":"jane@example.com","message":"Need a quote","category":"HVAC","zip":"94103"}`,
			`{"customerName":"Jane Doe","phone":"4155552671","email":"jane@example.com","text":"Need a quote","job_type":"HVAC","postal_code":"94103"}`,
		}},
		{"google", []string{
			`{"user_column_data":[{"column_id":"FULL_NAME","string_value":"Jane Doe"},{"column_id":"PHONE_NUMBER","string_value":"4155552671"},{"column_id":"EMAIL","string_value":"jane@example.com"}]}`,
			`{"userColumnData":[{"columnId":"FULL_NAME","stringValue":"Jane Doe"},{"columnId":"PHONE_NUMBER","stringValue":"4155552671"},{"columnId":"EMAIL","stringValue":"jane@example.com"}]}`,
			`[{"columnId":"FULL_NAME","value":"Jane Doe"},{"columnId":"PHONE_NUMBER","value":"4155552671"},{"columnId":"EMAIL","value":"jane@example.com"}]`,
			`{"full_name":"Jane Doe","phone_number":"4155552671","email":"jane@example.com"}`,
			`{"fullName":"Jane Doe","phoneNumber":"4155552671","email":"jane@example.com"}`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			first := n.Normalize(tt.source, decode(t, tt.variants[0]))
			if first.Name != "Jane Doe" {
				t.Fatalf("expected name Jane Doe, got %q", first.Name)
			}
			if first.Phone != "+14155552671" {
				t.Fatalf("expected E.164 phone, got %q", first.Phone)
			}
			for i, raw := range tt.variants[1:] {
				got := n.Normalize(tt.source, decode(t, raw))
				if !reflect.DeepEqual(first, got) {
					t.Fatalf("variant %d differs:\nwant %+v\ngot  %+v", i+1, first, got)
				}
			}
		})
	}
}

func TestNormalizeNameFallsBackToFirstAndLast(t *testing.T) {
	n := New("US")
	lead := n.Normalize("angi", decode(t, `{"first_name":"Jane","last_name":"Doe","phone":"555-0100"}`))
	if lead.Name != "Jane Doe" {
		t.Fatalf("expected Jane Doe, got %q", lead.Name)
	}
	if lead.Phone != "555-0100" {
		t.Fatalf("expected unparseable phone to be kept trimmed, got %q", lead.Phone)
	}
	if lead.Metadata["first_name"] != "Jane" || lead.Metadata["last_name"] != "Doe" {
		t.Fatalf("expected first/last in metadata, got %v", lead.Metadata)
	}
}

func TestNormalizeGoogleDropsUnknownColumns(t *testing.T) {
	n := New("US")
	lead := n.Normalize("google", decode(t, `{
		"lead_id":"G-1","campaign_id":123,"form_id":"9",
		"user_column_data":[
			{"column_id":"FIRST_NAME","string_value":"Jane"},
			{"column_id":"LAST_NAME","string_value":"Doe"},
			{"column_id":"POSTAL_CODE","string_value":"94103"},
			{"column_id":"CITY","string_value":"San Francisco"},
			{"column_id":"WHAT_IS_YOUR_BUDGET","string_value":"$5000"}
		]}`))

	if lead.Name != "Jane Doe" {
		t.Fatalf("expected Jane Doe, got %q", lead.Name)
	}
	want := map[string]string{
		"first_name":       "Jane",
		"last_name":        "Doe",
		"postal_code":      "94103",
		"city":             "San Francisco",
		"external_lead_id": "G-1",
		"campaign_id":      "123",
		"form_id":          "9",
		"lead_source":      "google",
	}
	if !reflect.DeepEqual(lead.Metadata, want) {
		t.Fatalf("unexpected metadata %v", lead.Metadata)
	}
}

func TestNormalizeGenericKeepsExtraScalars(t *testing.T) {
	n := New("US")
	lead := n.Normalize("custom-crm", decode(t, `{
		"fullName":"Sam Lee","mobile":"+44 20 7946 0958","emailAddress":"SAM@Example.com",
		"message":"Call after 5","budget":2500,"urgent":true,"nested":{"ignored":"yes"},
		"lead_source":"spoofed"}`))

	if lead.Name != "Sam Lee" || lead.Email != "sam@example.com" || lead.Notes != "Call after 5" {
		t.Fatalf("unexpected canonical fields %+v", lead)
	}
	if lead.Phone != "+442079460958" {
		t.Fatalf("expected international number in E.164, got %q", lead.Phone)
	}
	if lead.Metadata["budget"] != "2500" || lead.Metadata["urgent"] != "true" {
		t.Fatalf("expected scalar extras in metadata, got %v", lead.Metadata)
	}
	if _, ok := lead.Metadata["nested"]; ok {
		t.Fatalf("nested objects must not be stringified into metadata")
	}
	if lead.Metadata[MetadataLeadSource] != "custom-crm" {
		t.Fatalf("lead_source must reflect the actual source, got %q", lead.Metadata[MetadataLeadSource])
	}
}

func TestIsTest(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"is_test":true}`, true},
		{`{"isTest":"true"}`, true},
		{`{"test":"1"}`, true},
		{`{"test_lead":"yes"}`, true},
		{`{"testLead":1}`, true},
		{`{"is_test":false}`, false},
		{`{"is_test":"no"}`, false},
		{`{}`, false},
		{`[]`, false},
	}
	for _, tt := range tests {
		if got := IsTest(decode(t, tt.raw)); got != tt.want {
			t.Fatalf("IsTest(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestEventType(t *testing.T) {
	if got := EventType(decode(t, `{"eventType":"lead.updated"}`)); got != "lead.updated" {
		t.Fatalf("unexpected event type %q", got)
	}
	if got := EventType(decode(t, `{}`)); got != "lead.created" {
		t.Fatalf("expected default event type, got %q", got)
	}
}

func TestUpperSnake(t *testing.T) {
	for in, want := range map[string]string{
		"fullName":       "FULL_NAME",
		"full_name":      "FULL_NAME",
		"FULL_NAME":      "FULL_NAME",
		"phoneNumber":    "PHONE_NUMBER",
		"street-address": "STREET_ADDRESS",
	} {
		if got := upperSnake(in); got != want {
			t.Fatalf("upperSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
