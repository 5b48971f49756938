package backend

import (
	"encoding/json"
	"fmt"
)

type Resource string

const (
	Drivers  Resource = "drivers"
	Vehicles Resource = "vehicles"
	Shifts   Resource = "shifts"
	Media    Resource = "media"
)

// ParseResource accepts the resource names the backend exposes.
func ParseResource(s string) (Resource, error) {
	switch r := Resource(s); r {
	case Drivers, Vehicles, Shifts, Media:
		return r, nil
	}
	return "", fmt.Errorf("unknown backend resource %q", s)
}

// ID accepts both numeric and string identifiers from the backend.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("backend id %s: %w", string(b), err)
	}
	*id = ID(n.String())
	return nil
}

type Driver struct {
	ID            ID     `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
	Active        bool   `json:"active"`
}

type Vehicle struct {
	ID           ID     `json:"id"`
	LicensePlate string `json:"licensePlate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Seats        int    `json:"seats,omitempty"`
}

type Shift struct {
	ID        ID     `json:"id"`
	DriverID  ID     `json:"driverId"`
	VehicleID ID     `json:"vehicleId"`
	StartsAt  string `json:"startsAt"`
	EndsAt    string `json:"endsAt"`
}

type MediaFile struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
}
