package normalizer

func normalizeAngi(f fields, _ any) Lead {
	first := f.str("firstName", "first_name")
	last := f.str("lastName", "last_name")
	meta := map[string]string{}
	putIfSet(meta, "first_name", first)
	putIfSet(meta, "last_name", last)
	putIfSet(meta, "service_category", f.str("serviceCategory", "service_category", "taskName", "task_name"))
	putIfSet(meta, "postal_code", f.str("postalCode", "postal_code", "zip", "zipCode"))
	putIfSet(meta, "external_lead_id", f.str("leadId", "lead_id", "srOid", "sr_oid"))

	name := f.str("fullName", "full_name", "name")
	if name == "" {
		name = joinName(first, last)
	}
	return Lead{
		Name:     name,
		Phone:    f.str("phone", "phoneNumber", "phone_number", "primaryPhone"),
		Email:    f.str("email", "emailAddress", "email_address"),
		Notes:    f.str("comments", "description"),
		Metadata: meta,
	}
}

func normalizeThumbtack(f fields, _ any) Lead {
	customer := f.object("customer")
	request := f.object("request")
	location := f.object("location")

	meta := map[string]string{}
	category := request.str("category")
	if category == "" {
		category = f.str("category")
	}
	postal := location.str("zipCode", "zip_code")
	if postal == "" {
		postal = f.str("zip_code", "zipCode")
	}
	putIfSet(meta, "service_category", category)
	putIfSet(meta, "postal_code", postal)
	putIfSet(meta, "external_lead_id", f.str("leadID", "lead_id", "leadId"))

	name := customer.str("name")
	if name == "" {
		name = f.str("customerName", "customer_name")
	}
	phone := customer.str("phone")
	if phone == "" {
		phone = f.str("customerPhone", "customer_phone")
	}
	email := customer.str("email")
	if email == "" {
		email = f.str("customerEmail", "customer_email")
	}
	notes := request.str("description")
	if notes == "" {
		notes = f.str("description")
	}
	return Lead{Name: name, Phone: phone, Email: email, Notes: notes, Metadata: meta}
}

func normalizeHomeAdvisor(f fields, _ any) Lead {
	meta := map[string]string{}
	putIfSet(meta, "first_name", f.str("firstName", "first_name"))
	putIfSet(meta, "last_name", f.str("lastName", "last_name"))
	putIfSet(meta, "service_category", f.str("taskName", "task_name"))
	putIfSet(meta, "postal_code", f.str("postalCode", "postal_code", "zip"))
	putIfSet(meta, "external_lead_id", f.str("srOid", "sr_oid", "leadId"))
	return Lead{
		Phone:    f.str("phonePrimary", "phone_primary", "phone"),
		Email:    f.str("email"),
		Notes:    f.str("comments"),
		Metadata: meta,
	}
}

func normalizeFacebook(f fields, _ any) Lead {
	meta := map[string]string{}
	putIfSet(meta, "first_name", f.str("first_name", "firstName"))
	putIfSet(meta, "last_name", f.str("last_name", "lastName"))
	putIfSet(meta, "ad_name", f.str("ad_name", "adName"))
	putIfSet(meta, "form_id", f.str("form_id", "formId"))
	putIfSet(meta, "external_lead_id", f.str("leadgen_id", "leadgenId"))
	return Lead{
		Name:     f.str("full_name", "fullName"),
		Phone:    f.str("phone_number", "phoneNumber", "phone"),
		Email:    f.str("email"),
		Metadata: meta,
	}
}

func normalizeYelp(f fields, _ any) Lead {
	meta := map[string]string{}
	putIfSet(meta, "service_category", f.str("category", "job_type"))
	putIfSet(meta, "postal_code", f.str("zip", "postal_code"))
	return Lead{
		Name:     f.str("customer_name", "customerName", "name"),
		Phone:    f.str("phone"),
		Email:    f.str("email"),
		Notes:    f.str("message", "text"),
		Metadata: meta,
	}
}

var genericKeys = map[string]struct{}{}

var (
	genericNameKeys  = []string{"name", "full_name", "fullName"}
	genericFirstKeys = []string{"first_name", "firstName"}
	genericLastKeys  = []string{"last_name", "lastName"}
	genericPhoneKeys = []string{"phone", "phone_number", "phoneNumber", "mobile"}
	genericEmailKeys = []string{"email", "email_address", "emailAddress"}
	genericNoteKeys  = []string{"notes", "message", "comments", "description"}
)

func init() {
	for _, group := range [][]string{genericNameKeys, genericFirstKeys, genericLastKeys, genericPhoneKeys, genericEmailKeys, genericNoteKeys} {
		for _, key := range group {
			genericKeys[key] = struct{}{}
		}
	}
}

// normalizeGeneric keeps every unrecognized scalar field in metadata so that
// nothing an unknown platform sends is lost.
func normalizeGeneric(f fields, _ any) Lead {
	meta := map[string]string{}
	for key, value := range f {
		if _, consumed := genericKeys[key]; consumed {
			continue
		}
		putIfSet(meta, key, scalarString(value))
	}
	putIfSet(meta, "first_name", f.str(genericFirstKeys...))
	putIfSet(meta, "last_name", f.str(genericLastKeys...))

	return Lead{
		Name:     f.str(genericNameKeys...),
		Phone:    f.str(genericPhoneKeys...),
		Email:    f.str(genericEmailKeys...),
		Notes:    f.str(genericNoteKeys...),
		Metadata: meta,
	}
}
