package display

import (
	"fmt"
	"io"
)

// Code is one entry of a reference table.
type Code struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// NoticeTypes are the values accepted by the ptype filter.
var NoticeTypes = []Code{
	{"o", "Solicitation"},
	{"p", "Presolicitation"},
	{"k", "Combined Synopsis/Solicitation"},
	{"r", "Sources Sought"},
	{"s", "Special Notice"},
	{"a", "Award Notice"},
	{"u", "Justification and Approval (J&A)"},
	{"g", "Intent to Bundle"},
	{"i", "Fair Opportunity / Limited Sources Justification"},
}

// SetAsideCodes are the values accepted by the set-aside filter.
var SetAsideCodes = []Code{
	{"SBA", "Total Small Business Set-Aside (FAR 19.5)"},
	{"SBP", "Partial Small Business Set-Aside (FAR 19.5)"},
	{"8A", "8(a) Set-Aside (FAR 19.8)"},
	{"8AN", "8(a) Sole Source (FAR 19.8)"},
	{"HZC", "HUBZone Set-Aside (FAR 19.13)"},
	{"HZS", "HUBZone Sole Source (FAR 19.13)"},
	{"SDVOSBC", "SDVOSB Set-Aside (FAR 19.14)"},
	{"SDVOSBS", "SDVOSB Sole Source (FAR 19.14)"},
	{"WOSB", "WOSB Set-Aside (FAR 19.15)"},
	{"WOSBSS", "WOSB Sole Source (FAR 19.15)"},
	{"EDWOSB", "EDWOSB Set-Aside (FAR 19.15)"},
	{"EDWOSBSS", "EDWOSB Sole Source (FAR 19.15)"},
	{"VSA", "Veteran-Owned Small Business Set-Aside"},
	{"VSS", "Veteran-Owned Small Business Sole Source"},
}

// Types prints both reference tables.
func Types(w io.Writer) {
	fmt.Fprintln(w, "Opportunity Type Codes (--ptype):")
	fmt.Fprintln(w)
	for _, c := range NoticeTypes {
		fmt.Fprintf(w, "  %-4s %s\n", c.Code, c.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Set-Aside Codes (--set-aside):")
	fmt.Fprintln(w)
	for _, c := range SetAsideCodes {
		fmt.Fprintf(w, "  %-12s %s\n", c.Code, c.Description)
	}
}
