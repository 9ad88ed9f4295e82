package samgov

// SearchResponse is the body returned by the opportunities search endpoint.
// Both fields are nullable upstream.
type SearchResponse struct {
	TotalRecords      *int          `json:"totalRecords"`
	OpportunitiesData []Opportunity `json:"opportunitiesData"`
}

// Total returns the advertised record count, or 0 when upstream omitted it.
func (r *SearchResponse) Total() int {
	if r == nil || r.TotalRecords == nil {
		return 0
	}
	return *r.TotalRecords
}

// Len returns the number of records in this page.
func (r *SearchResponse) Len() int {
	if r == nil {
		return 0
	}
	return len(r.OpportunitiesData)
}

// Opportunity is one contracting notice as emitted upstream.
//
// Date fields are kept as the upstream strings and never parsed here.
type Opportunity struct {
	NoticeID            *string             `json:"noticeId"`
	Title               *string             `json:"title"`
	SolicitationNumber  *string             `json:"solicitationNumber"`
	Department          *string             `json:"department"`
	SubTier             *string             `json:"subTier"`
	Office              *string             `json:"office"`
	FullParentPathName  *string             `json:"fullParentPathName"`
	OrganizationType    *string             `json:"organizationType"`
	Type                *string             `json:"type"`
	BaseType            *string             `json:"baseType"`
	PostedDate          *string             `json:"postedDate"`
	ResponseDeadline    *string             `json:"responseDeadLine"`
	ArchiveDate         *string             `json:"archiveDate"`
	NAICSCode           *string             `json:"naicsCode"`
	ClassificationCode  *string             `json:"classificationCode"`
	SetAside            *string             `json:"setAside"`
	SetAsideDescription *string             `json:"setAsideDescription"`
	Description         *string             `json:"description"`
	UILink              *string             `json:"uiLink"`
	ResourceLinks       []string            `json:"resourceLinks"`
	Award               *Award              `json:"award"`
	PointOfContact      []PointOfContact    `json:"pointOfContact"`
	PlaceOfPerformance  *PlaceOfPerformance `json:"placeOfPerformance"`
	Active              *string             `json:"active"`
}

// Key returns the natural key, or "" if the record has none.
func (o *Opportunity) Key() string {
	if o == nil || o.NoticeID == nil {
		return ""
	}
	return *o.NoticeID
}

// Award describes the award attached to an award notice.
type Award struct {
	Amount  *string  `json:"amount"`
	Date    *string  `json:"date"`
	Number  *string  `json:"number"`
	Awardee *Awardee `json:"awardee"`
}

// Awardee is the entity that received an award.
type Awardee struct {
	Name   *string `json:"name"`
	DUNS   *string `json:"duns"`
	UEISAM *string `json:"ueiSAM"`
}

// PointOfContact is a contact listed on a notice. Contacts have no stable
// upstream identifier.
type PointOfContact struct {
	Type     *string `json:"type"`
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Title    *string `json:"title"`
}

// PlaceOfPerformance is where the contracted work happens.
type PlaceOfPerformance struct {
	State   *PlaceValue `json:"state"`
	City    *PlaceValue `json:"city"`
	Country *PlaceValue `json:"country"`
	Zip     *string     `json:"zip"`
}

// PlaceValue is a code/name pair such as {"code":"VA","name":"Virginia"}.
type PlaceValue struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// SearchParams are the query filters for one search request.
//
// PostedFrom/PostedTo are required unless NoticeID is set, in which case
// they are not sent at all.
type SearchParams struct {
	Limit      int
	Offset     int
	PostedFrom string
	PostedTo   string
	Title      string
	PType      string
	NAICS      string
	State      string
	SetAside   string
	NoticeID   string
}

// String returns a pointer to s, for building records in code.
func String(s string) *string {
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
