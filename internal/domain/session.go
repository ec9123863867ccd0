// Package domain contains core domain types for the proxybot application.
package domain

// ConversationState identifies the step a multi-turn dialog is at.
type ConversationState string

const (
	// StateIdle means no dialog is pending for the operator.
	StateIdle ConversationState = "IDLE"
	// StateCreateUserEnterUsername awaits the username for a new proxy account.
	StateCreateUserEnterUsername ConversationState = "CREATE_USER_ENTER_USERNAME"
	// StateCreateUserEnterPassword awaits the password for a new proxy account.
	StateCreateUserEnterPassword ConversationState = "CREATE_USER_ENTER_PASSWORD"
	// StateDeleteUserEnterUsername awaits the username of the account to delete.
	StateDeleteUserEnterUsername ConversationState = "DELETE_USER_ENTER_USERNAME"
)

// Session is the persisted conversation state for one operator, plus
// scratch data accumulated across the turns of a single dialog.
// A turn always writes a complete record; Data is replaced wholesale,
// never merged, so no values leak between dialogs.
type Session struct {
	State ConversationState `json:"state"`
	Data  map[string]string `json:"data"`
}

// NewIdleSession returns a fresh session with no pending dialog.
func NewIdleSession() *Session {
	return &Session{State: StateIdle, Data: map[string]string{}}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	data := make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		data[k] = v
	}
	return &Session{State: s.State, Data: data}
}
