package entity

import (
	"time"

	"github.com/paulmach/orb"
)

// TravelQuery describes one catchment request against the travel-time
// provider. TravelMinutes carries the already-clamped duration budget.
type TravelQuery struct {
	// Destination is the arrival point in WGS-84 (lng, lat) order.
	Destination orb.Point

	// ArrivalTime is the moment the traveller must arrive by.
	ArrivalTime time.Time

	// TravelMinutes is the clamped duration budget in minutes.
	TravelMinutes int

	Mode TravelMode
}

// TravelSeconds returns the duration budget as seconds for the outbound
// provider request.
func (q *TravelQuery) TravelSeconds() int {
	return q.TravelMinutes * 60
}
