package session

import (
	"github.com/sevasaathi/sevasaathi/internal/match"
	"github.com/sevasaathi/sevasaathi/internal/profile"
)

// Roles for conversation exchanges.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Exchange is one turn of the conversation.
type Exchange struct {
	Role    string
	Content string
}

// Session is the explicit per-conversation state: the accumulated profile,
// the conversation history, and the last ranked results. Nothing here is
// global; each interactive run owns exactly one session.
type Session struct {
	Profile     *profile.Profile
	History     []Exchange
	LastResults []*match.Result
}

func New() *Session {
	return &Session{Profile: profile.New()}
}

// Remember appends one exchange to the history.
func (s *Session) Remember(role, content string) {
	s.History = append(s.History, Exchange{Role: role, Content: content})
}

// UpdateProfile replaces the accumulated profile. A nil profile resets it
// to empty.
func (s *Session) UpdateProfile(p *profile.Profile) {
	if p == nil {
		p = profile.New()
	}
	s.Profile = p
}

// RememberResults stores the latest ranked results for later display.
func (s *Session) RememberResults(results []*match.Result) {
	s.LastResults = results
}

// ResetProfile clears the accumulated profile and the last results. The
// conversation history survives a reset.
func (s *Session) ResetProfile() {
	s.Profile = profile.New()
	s.LastResults = nil
}
