package script

import (
	"context"

	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/scenario"
)

// PlayRound plays one round headlessly: it moves the session to the turns
// phase, queues the producer's commands, resolves them and moves on to end of
// round. It returns how many commands completed. A roll waiting on a drawn
// column stops resolution early; the round still ends.
func (p *Producer) PlayRound(ctx context.Context, s *scenario.Session) (int, error) {
	if err := s.AdvanceTo(ctx, scenario.PhaseTurns); err != nil {
		return 0, err
	}
	cmds, err := p.Produce(ctx, s)
	if err != nil {
		return 0, err
	}
	s.Enqueue(cmds...)
	n, err := s.Run()
	if err != nil {
		return n, err
	}
	p.logger.Debug("round played",
		zap.Int("round", s.Round()),
		zap.Int("produced", len(cmds)),
		zap.Int("completed", n),
	)
	return n, s.AdvanceTo(ctx, scenario.PhaseEndOfRound)
}
