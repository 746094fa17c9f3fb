package followup

import (
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
)

// StatusSimulated is the only status a trigger ever carries.
const StatusSimulated = "simulated"

// Simulator records send events for drafted messages without delivering
// anything.
type Simulator struct {
	log logging.Logger
	now func() time.Time
}

// NewSimulator creates a simulator. A nil logger discards output.
func NewSimulator(log logging.Logger) *Simulator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Simulator{log: log, now: time.Now}
}

// Send records one simulated send event on the state.
func (s *Simulator) Send(st *meeting.State, msg *meeting.FollowUpMessage) *meeting.EmailTrigger {
	trigger := &meeting.EmailTrigger{
		To:          msg.ToEmail,
		ToName:      msg.ToName,
		Subject:     msg.Subject,
		Body:        msg.Body,
		TriggeredAt: s.now().UTC(),
		Status:      StatusSimulated,
	}
	st.Triggers = append(st.Triggers, trigger)

	s.log.Info("email send simulated",
		logging.F("to", trigger.To),
		logging.F("subject", trigger.Subject))
	return trigger
}

// SendAll records a simulated send for every drafted message and returns
// the trigger count.
func (s *Simulator) SendAll(st *meeting.State) int {
	for _, msg := range st.Messages {
		s.Send(st, msg)
	}
	if len(st.Messages) > 0 {
		st.Note("Follow-up: %d email sends simulated", len(st.Messages))
	}
	return len(st.Triggers)
}
