package common

import "strings"

type Address struct {
	State        string `json:"state"`
	City         string `json:"city"`
	Street       string `json:"street"`
	StreetNumber string `json:"street_number"`
	PostalCode   string `json:"postal_code"`
}

// String joins the non-empty parts as state, city, street, number, postal code.
func (a Address) String() string {
	return strings.Join(nonEmpty(a.State, a.City, a.Street, a.StreetNumber, a.PostalCode), ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

type ProjectStatus string

const (
	ProjectStart      ProjectStatus = "start"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectFinished   ProjectStatus = "finished"
)
