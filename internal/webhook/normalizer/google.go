package normalizer

// Google Lead Form column identifiers with a canonical home. Anything else a
// form collects is dropped.
const (
	columnFullName      = "FULL_NAME"
	columnFirstName     = "FIRST_NAME"
	columnLastName      = "LAST_NAME"
	columnPhoneNumber   = "PHONE_NUMBER"
	columnEmail         = "EMAIL"
	columnPostalCode    = "POSTAL_CODE"
	columnCity          = "CITY"
	columnCompanyName   = "COMPANY_NAME"
	columnStreetAddress = "STREET_ADDRESS"
)

var knownColumns = map[string]struct{}{
	columnFullName:      {},
	columnFirstName:     {},
	columnLastName:      {},
	columnPhoneNumber:   {},
	columnEmail:         {},
	columnPostalCode:    {},
	columnCity:          {},
	columnCompanyName:   {},
	columnStreetAddress: {},
}

// normalizeGoogle accepts a flat object, an object carrying user_column_data,
// or a bare array of column entries.
func normalizeGoogle(f fields, payload any) Lead {
	columns := map[string]string{}

	switch {
	case isArray(payload):
		collectColumns(payload.([]any), columns)
	case isArray(f["user_column_data"]):
		collectColumns(f["user_column_data"].([]any), columns)
	case isArray(f["userColumnData"]):
		collectColumns(f["userColumnData"].([]any), columns)
	default:
		for key, value := range f {
			column := upperSnake(key)
			if _, ok := knownColumns[column]; ok {
				putIfSet(columns, column, scalarString(value))
			}
		}
	}

	meta := map[string]string{}
	putIfSet(meta, "first_name", columns[columnFirstName])
	putIfSet(meta, "last_name", columns[columnLastName])
	putIfSet(meta, "postal_code", columns[columnPostalCode])
	putIfSet(meta, "city", columns[columnCity])
	putIfSet(meta, "company_name", columns[columnCompanyName])
	putIfSet(meta, "street_address", columns[columnStreetAddress])
	putIfSet(meta, "external_lead_id", f.str("lead_id", "leadId"))
	putIfSet(meta, "campaign_id", f.str("campaign_id", "campaignId"))
	putIfSet(meta, "form_id", f.str("form_id", "formId"))

	name := columns[columnFullName]
	if name == "" {
		name = joinName(columns[columnFirstName], columns[columnLastName])
	}
	return Lead{
		Name:     name,
		Phone:    columns[columnPhoneNumber],
		Email:    columns[columnEmail],
		Metadata: meta,
	}
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func collectColumns(entries []any, into map[string]string) {
	for _, entry := range entries {
		e := asFields(entry)
		column := upperSnake(e.str("column_id", "columnId"))
		if _, ok := knownColumns[column]; !ok {
			continue
		}
		if _, seen := into[column]; seen {
			continue
		}
		putIfSet(into, column, e.str("string_value", "stringValue", "value"))
	}
}
