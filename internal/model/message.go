package model

// MessageKind classifies a transient status message.
type MessageKind int

const (
	MessageSuccess MessageKind = iota
	MessageError
)

func (k MessageKind) String() string {
	if k == MessageError {
		return "error"
	}
	return "success"
}

// Message is the single transient status line shown to the user.
type Message struct {
	Kind MessageKind
	Text string
}
