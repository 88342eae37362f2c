package domain

import "strings"

// Filters narrows a mix listing. Every non-empty field must match.
//
// Category matches case-insensitively on equality. Name and Notes are
// case-insensitive substrings. Tags is a comma separated list where each
// entry must be a substring of at least one mix tag. Date is "YYYY-MM" or
// "YYYY" and is compared against the mix release date.
type Filters struct {
	Category string `json:"category,omitempty" form:"category"`
	Name     string `json:"name,omitempty" form:"name"`
	Notes    string `json:"notes,omitempty" form:"notes"`
	Tags     string `json:"tags,omitempty" form:"tags"`
	Date     string `json:"date,omitempty" form:"date"`
}

// IsEmpty reports whether no field constrains the listing.
func (f Filters) IsEmpty() bool {
	return strings.TrimSpace(f.Category) == "" &&
		strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Notes) == "" &&
		strings.TrimSpace(f.Tags) == "" &&
		strings.TrimSpace(f.Date) == ""
}

// TagList splits Tags into trimmed, lower-cased entries.
func (f Filters) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(f.Tags, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
