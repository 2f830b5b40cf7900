package chat

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Greeting seeds every new conversation.
const Greeting = "Hello! I'm Safir's AI Assistant. Ask me about his projects, skills, or experience!"

// Phase is the controller's position in the per-submission state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseStreaming
)

func (p Phase) String() string {
	switch p {
	case PhaseSending:
		return "sending"
	case PhaseStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// Outcome reports how a submission ended.
type Outcome int

const (
	// OutcomeRejected means the input was blank or another request was in flight.
	OutcomeRejected Outcome = iota
	// OutcomeComplete means the remote stream ended normally.
	OutcomeComplete
	// OutcomeFallback means the FAQ answer was appended instead of (or after) a streamed reply.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeFallback:
		return "fallback"
	default:
		return "rejected"
	}
}

// Snapshot is an immutable view of the conversation handed to observers.
type Snapshot struct {
	Turns   []Turn
	Pending bool
	Phase   Phase
}

// Last returns the most recent turn and false when the conversation is empty.
func (s Snapshot) Last() (Turn, bool) {
	if len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}
