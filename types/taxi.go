package types

import (
	"time"

	"github.com/paulmach/orb"
)

type TaxiStatus string

const (
	StatusAvailable TaxiStatus = "available"
)

// AllStatuses lists every status a taxi can carry. Only StatusAvailable is produced today.
var AllStatuses = []TaxiStatus{StatusAvailable}

func (s TaxiStatus) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Taxi is one simulated mobile unit on the live map.
// ID, DisplayName and ZoneID never change after creation, only Position and LastUpdated do.
type Taxi struct {
	ID          string     `json:"id" firestore:"id"`
	DisplayName string     `json:"displayName" firestore:"displayName"`
	Position    orb.Point  `json:"position" firestore:"-"` // [lon, lat]
	ZoneID      string     `json:"zoneId" firestore:"zoneId"`
	Status      TaxiStatus `json:"status" firestore:"status"`
	LastUpdated time.Time  `json:"lastUpdated" firestore:"lastUpdated"`
}
