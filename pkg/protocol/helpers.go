package protocol

import "time"

// NewJointsMessage creates a joints message.
func NewJointsMessage(values map[string]float64, source string) (*Message, error) {
	return NewMessage(TypeJoints, JointsData{Values: values, Source: source})
}

// NewAnglesMessage creates an angles message.
func NewAnglesMessage(data AnglesData) (*Message, error) {
	return NewMessage(TypeAngles, data)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: err.Error()})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: time.Now().UnixMilli()})
}

// NewPongMessage answers ping, computing latency from the ping's timestamp.
func NewPongMessage(ping PingData) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        ping.ID,
		PingTS:    ping.Timestamp,
		PongTS:    now,
		LatencyMs: now - ping.Timestamp,
	})
}

// GetPoseData extracts pose data from a message
func (m *Message) GetPoseData() (*PoseData, error) {
	var data PoseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetJointsData extracts joint values from a message
func (m *Message) GetJointsData() (*JointsData, error) {
	var data JointsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAnglesData extracts angles from a message
func (m *Message) GetAnglesData() (*AnglesData, error) {
	var data AnglesData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
