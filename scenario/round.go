package scenario

import (
	"context"
	"fmt"
	"slices"

	"github.com/looplab/fsm"
)

// Round phases, in play order. The command engine does not consult them;
// they tell drivers which kind of input to collect next.
const (
	PhaseInit               = "init"
	PhaseStartOfRound       = "start_of_round"
	PhaseCardSelection      = "card_selection"
	PhaseOrderingInitiative = "ordering_initiative"
	PhaseTurns              = "turns"
	PhaseEndOfRound         = "end_of_round"

	eventAdvance = "advance"
)

var phaseOrder = []string{
	PhaseInit,
	PhaseStartOfRound,
	PhaseCardSelection,
	PhaseOrderingInitiative,
	PhaseTurns,
	PhaseEndOfRound,
}

func newRoundFSM(onRound func()) *fsm.FSM {
	events := fsm.Events{
		{Name: eventAdvance, Src: []string{PhaseInit, PhaseEndOfRound}, Dst: PhaseStartOfRound},
		{Name: eventAdvance, Src: []string{PhaseStartOfRound}, Dst: PhaseCardSelection},
		{Name: eventAdvance, Src: []string{PhaseCardSelection}, Dst: PhaseOrderingInitiative},
		{Name: eventAdvance, Src: []string{PhaseOrderingInitiative}, Dst: PhaseTurns},
		{Name: eventAdvance, Src: []string{PhaseTurns}, Dst: PhaseEndOfRound},
	}
	return fsm.NewFSM(PhaseInit, events, fsm.Callbacks{
		"enter_" + PhaseStartOfRound: func(_ context.Context, _ *fsm.Event) {
			onRound()
		},
	})
}

// Phases lists the round phases in order.
func Phases() []string {
	out := make([]string, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// AdvanceTo advances until the round flow reaches phase. It passes through
// end of round and into the next round when phase lies behind the current
// one.
func (s *Session) AdvanceTo(ctx context.Context, phase string) error {
	if !slices.Contains(phaseOrder, phase) || phase == PhaseInit {
		return fmt.Errorf("scenario: cannot advance to %q", phase)
	}
	for s.Phase() != phase {
		if err := s.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}
