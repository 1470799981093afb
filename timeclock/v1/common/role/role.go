package role

import "fmt"

type Role string

const (
	Admin  Role = "admin"
	Office Role = "office"
	Field  Role = "field"
)

func Parse(s string) (Role, error) {
	switch r := Role(s); r {
	case Admin, Office, Field:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RequiresDetection reports whether clock-in photos go through safety detection.
func (r Role) RequiresDetection() bool {
	return r == Field
}

func (r Role) IsAdmin() bool {
	return r == Admin
}
