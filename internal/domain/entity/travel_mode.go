// Package entity contains the core business objects of the project.
package entity

// TravelMode represents the transport mode used for a catchment query.
type TravelMode string

const (
	// ModePublicTransport computes the catchment over the transit network.
	ModePublicTransport TravelMode = "public_transport"
	// ModeDriving computes the catchment over the road network by car.
	ModeDriving TravelMode = "driving"
	// ModeCycling computes the catchment over the road network by bicycle.
	ModeCycling TravelMode = "cycling"
	// ModeWalking computes the catchment over the pedestrian network.
	ModeWalking TravelMode = "walking"
)

// String returns the string representation of the TravelMode.
func (m TravelMode) String() string {
	return string(m)
}

// IsValid checks if the TravelMode is a valid value.
func (m TravelMode) IsValid() bool {
	switch m {
	case ModePublicTransport, ModeDriving, ModeCycling, ModeWalking:
		return true
	default:
		return false
	}
}
