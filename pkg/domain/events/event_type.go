package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	EventTypeAccountCreated       EventType = "Account.Created"
	EventTypeAccountStatusChanged EventType = "Account.StatusChanged"
	EventTypeTransactionRecorded  EventType = "Transaction.Recorded"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}
