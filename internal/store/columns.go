package store

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/govscout/govscout/internal/samgov"
)

// column maps one flattened opportunities column to its place in the
// nested wire shape. get reads the value (NULL when any parent is absent);
// set is only called with a non-NULL value and allocates parents as needed.
type column struct {
	name string
	get  func(o *samgov.Opportunity) sql.NullString
	set  func(o *samgov.Opportunity, v string)
}

// columns lists every opportunities column after notice_id, in storage
// order. Both the upsert and the read path are generated from it.
var columns = []column{
	field("title", func(o *samgov.Opportunity) **string { return &o.Title }),
	field("solicitation_number", func(o *samgov.Opportunity) **string { return &o.SolicitationNumber }),
	field("department", func(o *samgov.Opportunity) **string { return &o.Department }),
	field("sub_tier", func(o *samgov.Opportunity) **string { return &o.SubTier }),
	field("office", func(o *samgov.Opportunity) **string { return &o.Office }),
	field("full_parent_path_name", func(o *samgov.Opportunity) **string { return &o.FullParentPathName }),
	field("organization_type", func(o *samgov.Opportunity) **string { return &o.OrganizationType }),
	field("opp_type", func(o *samgov.Opportunity) **string { return &o.Type }),
	field("base_type", func(o *samgov.Opportunity) **string { return &o.BaseType }),
	field("posted_date", func(o *samgov.Opportunity) **string { return &o.PostedDate }),
	field("response_deadline", func(o *samgov.Opportunity) **string { return &o.ResponseDeadline }),
	field("archive_date", func(o *samgov.Opportunity) **string { return &o.ArchiveDate }),
	field("naics_code", func(o *samgov.Opportunity) **string { return &o.NAICSCode }),
	field("classification_code", func(o *samgov.Opportunity) **string { return &o.ClassificationCode }),
	field("set_aside", func(o *samgov.Opportunity) **string { return &o.SetAside }),
	field("set_aside_description", func(o *samgov.Opportunity) **string { return &o.SetAsideDescription }),
	field("description", func(o *samgov.Opportunity) **string { return &o.Description }),
	field("ui_link", func(o *samgov.Opportunity) **string { return &o.UILink }),
	field("active", func(o *samgov.Opportunity) **string { return &o.Active }),
	{
		name: "resource_links",
		get: func(o *samgov.Opportunity) sql.NullString {
			if o.ResourceLinks == nil {
				return sql.NullString{}
			}
			b, err := json.Marshal(o.ResourceLinks)
			if err != nil {
				return sql.NullString{}
			}
			return sql.NullString{String: string(b), Valid: true}
		},
		set: func(o *samgov.Opportunity, v string) {
			var links []string
			if err := json.Unmarshal([]byte(v), &links); err == nil {
				o.ResourceLinks = links
			}
		},
	},

	awardField("award_amount", func(a *samgov.Award) **string { return &a.Amount }),
	awardField("award_date", func(a *samgov.Award) **string { return &a.Date }),
	awardField("award_number", func(a *samgov.Award) **string { return &a.Number }),
	awardeeField("awardee_name", func(a *samgov.Awardee) **string { return &a.Name }),
	awardeeField("awardee_duns", func(a *samgov.Awardee) **string { return &a.DUNS }),
	awardeeField("awardee_uei_sam", func(a *samgov.Awardee) **string { return &a.UEISAM }),

	placeField("pop_state_code", statePlace, codeOf),
	placeField("pop_state_name", statePlace, nameOf),
	placeField("pop_city_code", cityPlace, codeOf),
	placeField("pop_city_name", cityPlace, nameOf),
	placeField("pop_country_code", countryPlace, codeOf),
	placeField("pop_country_name", countryPlace, nameOf),
	{
		name: "pop_zip",
		get: func(o *samgov.Opportunity) sql.NullString {
			if o.PlaceOfPerformance == nil {
				return sql.NullString{}
			}
			return nullable(o.PlaceOfPerformance.Zip)
		},
		set: func(o *samgov.Opportunity, v string) {
			pop(o).Zip = &v
		},
	},
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// field maps a top-level scalar.
func field(name string, ref func(*samgov.Opportunity) **string) column {
	return column{
		name: name,
		get:  func(o *samgov.Opportunity) sql.NullString { return nullable(*ref(o)) },
		set:  func(o *samgov.Opportunity, v string) { *ref(o) = &v },
	}
}

func award(o *samgov.Opportunity) *samgov.Award {
	if o.Award == nil {
		o.Award = &samgov.Award{}
	}
	return o.Award
}

func awardField(name string, ref func(*samgov.Award) **string) column {
	return column{
		name: name,
		get: func(o *samgov.Opportunity) sql.NullString {
			if o.Award == nil {
				return sql.NullString{}
			}
			return nullable(*ref(o.Award))
		},
		set: func(o *samgov.Opportunity, v string) { *ref(award(o)) = &v },
	}
}

func awardeeField(name string, ref func(*samgov.Awardee) **string) column {
	return column{
		name: name,
		get: func(o *samgov.Opportunity) sql.NullString {
			if o.Award == nil || o.Award.Awardee == nil {
				return sql.NullString{}
			}
			return nullable(*ref(o.Award.Awardee))
		},
		set: func(o *samgov.Opportunity, v string) {
			a := award(o)
			if a.Awardee == nil {
				a.Awardee = &samgov.Awardee{}
			}
			*ref(a.Awardee) = &v
		},
	}
}

func pop(o *samgov.Opportunity) *samgov.PlaceOfPerformance {
	if o.PlaceOfPerformance == nil {
		o.PlaceOfPerformance = &samgov.PlaceOfPerformance{}
	}
	return o.PlaceOfPerformance
}

// placeRef selects one PlaceValue slot of a PlaceOfPerformance.
type placeRef func(*samgov.PlaceOfPerformance) **samgov.PlaceValue

func statePlace(p *samgov.PlaceOfPerformance) **samgov.PlaceValue { return &p.State }
func cityPlace(p *samgov.PlaceOfPerformance) **samgov.PlaceValue { return &p.City }
func countryPlace(p *samgov.PlaceOfPerformance) **samgov.PlaceValue { return &p.Country }

func codeOf(v *samgov.PlaceValue) **string { return &v.Code }
func nameOf(v *samgov.PlaceValue) **string { return &v.Name }

func placeField(name string, slot placeRef, ref func(*samgov.PlaceValue) **string) column {
	return column{
		name: name,
		get: func(o *samgov.Opportunity) sql.NullString {
			if o.PlaceOfPerformance == nil {
				return sql.NullString{}
			}
			pv := *slot(o.PlaceOfPerformance)
			if pv == nil {
				return sql.NullString{}
			}
			return nullable(*ref(pv))
		},
		set: func(o *samgov.Opportunity, v string) {
			s := slot(pop(o))
			if *s == nil {
				*s = &samgov.PlaceValue{}
			}
			*ref(*s) = &v
		},
	}
}

// columnNames returns the mapped column names, comma separated.
func columnNames() string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

// columnDefs returns the CREATE TABLE fragment for the mapped columns.
func columnDefs() string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c.name + " TEXT"
	}
	return strings.Join(defs, ",\n\t\t")
}

// upsertOpportunitySQL overwrites every mapped column on conflict and bumps
// modified_at. created_at is left alone.
var upsertOpportunitySQL = func() string {
	placeholders := strings.Repeat(", ?", len(columns))
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c.name + " = excluded." + c.name
	}
	return `INSERT INTO opportunities (notice_id, ` + columnNames() + `)
	VALUES (?` + placeholders + `)
	ON CONFLICT(notice_id) DO UPDATE SET
		` + strings.Join(sets, ",\n\t\t") + `,
		modified_at = datetime('now')`
}()

// values returns the bind arguments for upsertOpportunitySQL.
func values(noticeID string, o *samgov.Opportunity) []any {
	args := make([]any, 0, len(columns)+1)
	args = append(args, noticeID)
	for _, c := range columns {
		args = append(args, c.get(o))
	}
	return args
}
