package robot

import "errors"

// Fanout forwards joint values to every setter in order. All setters are
// called even when one fails, and the errors are joined.
type Fanout []JointSetter

func (f Fanout) SetJointValues(values map[string]float64) error {
	var errs []error
	for _, s := range f {
		if err := s.SetJointValues(values); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
