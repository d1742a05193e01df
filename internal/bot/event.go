// Package bot implements the conversation state machine driving multi-step
// habit flows, one state per user.
package bot

// EventKind discriminates inbound user events.
type EventKind int

const (
	// EventCommand is a slash command, possibly with arguments.
	EventCommand EventKind = iota
	// EventText is a free-text reply.
	EventText
	// EventChoice is a button press carrying opaque choice data.
	EventChoice
)

// Event is a single inbound user interaction. Events for one user arrive in
// order; events for different users are independent.
type Event struct {
	UserID  int64
	Kind    EventKind
	Command string // without the leading slash, for EventCommand
	Text    string // message text, for EventText
	Choice  string // callback data, for EventChoice
}

// Choice is one selectable button offered to the user. Data round-trips
// through the transport and comes back as Event.Choice.
type Choice struct {
	Label string
	Data  string
}

// Sender delivers outbound messages to a user. Implementations report
// delivery failures as errors; the failure of one send never affects other
// users.
type Sender interface {
	Send(userID int64, text string) error
	SendChoices(userID int64, text string, choices []Choice) error
}
