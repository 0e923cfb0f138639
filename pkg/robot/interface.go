// Package robot keeps the joint state of a URDF robot and forwards joint
// values to local listeners and remote viewers.
//
// Interfaces are small so consumers depend only on what they use: the
// animation player needs a JointSetter, the pose overlay a JointReader.
package robot

// JointSetter accepts joint values in the joints' native units (radians or meters).
type JointSetter interface {
	SetJointValues(values map[string]float64) error
}

// JointReader exposes the current joint values.
type JointReader interface {
	JointValues() map[string]float64
}

// Controller drives a remote robot or viewer.
type Controller interface {
	JointSetter
	Close() error
}

// SetterFunc adapts a function to JointSetter.
type SetterFunc func(values map[string]float64) error

// SetJointValues calls f(values).
func (f SetterFunc) SetJointValues(values map[string]float64) error {
	return f(values)
}

var (
	_ JointSetter = (*Model)(nil)
	_ JointReader = (*Model)(nil)
	_ Controller  = (*HTTPController)(nil)
	_ Controller  = (*WSController)(nil)
	_ JointSetter = (*RateController)(nil)
	_ JointSetter = Fanout(nil)
)
