package events

// EventTypes maps wire type names to constructors, used by the broker-backed
// buses to decode envelopes.
var EventTypes = map[string]func() Event{
	EventTypeAccountCreated.String():       func() Event { return &AccountCreated{} },
	EventTypeAccountStatusChanged.String(): func() Event { return &AccountStatusChanged{} },
	EventTypeTransactionRecorded.String():  func() Event { return &TransactionRecorded{} },
}
