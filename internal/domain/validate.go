package domain

import (
	"errors"
	"fmt"
	"math"
)

// Validate checks the value ranges of a parsed record. It returns every
// violation joined into one error, or nil.
func (r FloodRecord) Validate() error {
	var errs []error
	if r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, fmt.Errorf("latitude %g out of range [-90, 90]", r.Latitude))
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, fmt.Errorf("longitude %g out of range [-180, 180]", r.Longitude))
	}
	if r.HasDuration() && (r.Duration < 0 || math.IsInf(r.Duration, 0)) {
		errs = append(errs, fmt.Errorf("duration %g is negative or infinite", r.Duration))
	}
	if r.HumanFatality < 0 {
		errs = append(errs, fmt.Errorf("human fatality %d is negative", r.HumanFatality))
	}
	if r.HumanInjured < 0 {
		errs = append(errs, fmt.Errorf("human injured %d is negative", r.HumanInjured))
	}
	if r.AnimalFatality < 0 {
		errs = append(errs, fmt.Errorf("animal fatality %d is negative", r.AnimalFatality))
	}
	if r.MainCause == "" {
		errs = append(errs, errors.New("main cause is empty"))
	}
	return errors.Join(errs...)
}
