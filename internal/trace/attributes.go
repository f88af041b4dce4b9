package trace

import "go.opentelemetry.io/otel/attribute"

// Attribute keys.
const (
	AttrSessionID  = "session.id"
	AttrDevice     = "audio.device"
	AttrDirection  = "audio.direction"
	AttrChannels   = "audio.channels"
	AttrSampleRate = "audio.sample_rate"
	AttrBlockSize  = "audio.block_size"
	AttrState      = "session.state"
)

// SessionAttrs tags a span with a session id.
func SessionAttrs(id string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(AttrSessionID, id)}
}

// StreamAttrs describes one negotiated stream.
func StreamAttrs(direction, device string, channels, sampleRate, blockSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDirection, direction),
		attribute.String(AttrDevice, device),
		attribute.Int(AttrChannels, channels),
		attribute.Int(AttrSampleRate, sampleRate),
		attribute.Int(AttrBlockSize, blockSize),
	}
}
