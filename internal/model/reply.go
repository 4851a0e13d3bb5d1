package model

// ReplyShape identifies how a calculator reply encodes its estimates.
type ReplyShape int

const (
	// ReplyDirect is a JSON object keyed by outcome field name.
	ReplyDirect ReplyShape = iota
	// ReplyEmbedded is an HTML or text fragment with labelled percentages.
	ReplyEmbedded
)

func (s ReplyShape) String() string {
	switch s {
	case ReplyDirect:
		return "direct"
	case ReplyEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Reply is an unparsed calculator response.
type Reply struct {
	Shape ReplyShape
	Body  []byte
}
