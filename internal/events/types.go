package events

// Feed lifecycle events
const (
	EventTypeFeedCreate = "CREATE"
	EventTypeFeedUpdate = "UPDATE"
	EventTypeFeedDelete = "DELETE"
)

// Subscription events
const (
	EventTypeNewSubscribe   = "NEW_SUBSCRIBE"
	EventTypeNewUnsubscribe = "NEW_UNSUBSCRIBE"
)

// Stream field holding the encoded envelope
const StreamFieldEnvelope = "envelope"

// Outcome is the terminal decision for one delivery of a message.
type Outcome int

const (
	// Ack commits the message. It is never redelivered.
	Ack Outcome = iota
	// Suspend asks the queue to redeliver the same message later,
	// before anything behind it in the partition.
	Suspend
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Suspend:
		return "suspend"
	default:
		return "unknown"
	}
}
