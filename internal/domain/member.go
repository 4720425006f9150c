package domain

type MemberID string

type ChannelID string

// TransitionEvent is a single voice-state change, flattened at the gateway
// boundary so the core never inspects raw gateway payloads.
type TransitionEvent struct {
	Member      MemberID
	DisplayName string
	Bot         bool
	Before      ChannelID
	BeforeName  string
	After       ChannelID
	AfterName   string
}
