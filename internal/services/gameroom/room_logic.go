package gameroom

import (
	"time"

	"github.com/sirupsen/logrus"

	"pongmatch/internal/game/pong"
	"pongmatch/internal/services/events"
	"pongmatch/internal/session/message"
)

func (gr *GameRoom) handle(action any) {
	switch act := action.(type) {
	case inputAction:
		if gr.Phase() != PhaseRunning {
			gr.log.WithField("phase", gr.Phase()).Debug("input ignored outside running phase")
			return
		}
		if !gr.sim.ApplyInput(act.player, act.dir) {
			gr.log.WithField("player", act.player).Debug("input ignored for invalid player")
		}

	case pauseAction:
		if gr.Phase() != PhaseRunning {
			return
		}
		gr.stopTicker()
		gr.setPhase(PhasePaused)
		gr.log.Info("match paused")
		gr.out.EmitToRoom(gr.ID, message.GamePaused, nil)

	case resumeAction:
		if gr.Phase() != PhasePaused {
			return
		}
		gr.setPhase(PhaseRunning)
		gr.startTicker()
		gr.log.Info("match resumed")
		gr.out.EmitToRoom(gr.ID, message.GameResumed, nil)

	case abortAction:
		gr.finish(pong.NoSide, act.reason, act.leaverID)

	case infoRequest:
		act.reply <- gr.info()
	}
}

// beginCountdown envia o estado inicial e arma o timer de largada.
func (gr *GameRoom) beginCountdown() {
	gr.setPhase(PhaseCountingDown)
	gr.log.WithField("countdown", gr.cfg.Countdown).Info("countdown started")
	gr.out.EmitToRoom(gr.ID, message.StartingGame, gr.sim.State())
	gr.countdown = time.NewTimer(gr.cfg.Countdown)
}

// beginMatch roda quando a contagem termina. Sem os dois jogadores ativos a partida é cancelada.
func (gr *GameRoom) beginMatch() {
	for _, c := range gr.conns {
		if !c.Connected() {
			gr.cancel(message.ReasonNotEnoughPlayers)
			return
		}
	}
	gr.setPhase(PhaseRunning)
	gr.startTicker()
	gr.log.Info("match running")
	gr.pub.Publish(events.SubjectMatchStarted, events.MatchEvent{RoomID: gr.ID, Players: gr.Players()})
}

func (gr *GameRoom) tick() {
	if winner := gr.sim.Step(); winner != pong.NoSide {
		gr.finish(winner, "", "")
		return
	}
	gr.out.EmitToRoom(gr.ID, message.GameStateUpdate, gr.sim.State())
}

// finish leva a sala a Ended e avisa os participantes com gameEnded.
func (gr *GameRoom) finish(winner pong.Side, reason, leaverID string) {
	if !gr.end() {
		return
	}
	payload := message.Ended(winner.String(), reason)
	for _, c := range gr.conns {
		if c.ID() == leaverID {
			continue
		}
		c.Emit(message.GameEnded, payload)
	}
	gr.log.WithFields(logrus.Fields{"winner": winner.String(), "reason": reason}).Info("match ended")
	gr.report(Result{RoomID: gr.ID, Players: gr.Players(), Winner: winner, Reason: reason, Score: gr.score()})
}

func (gr *GameRoom) cancel(reason string) {
	if !gr.end() {
		return
	}
	payload := message.MatchCancelledPayload{Reason: reason}
	for _, c := range gr.conns {
		if c.Connected() {
			c.Emit(message.MatchCancelled, payload)
		}
	}
	gr.log.WithField("reason", reason).Info("match cancelled")
	gr.report(Result{RoomID: gr.ID, Players: gr.Players(), Reason: reason, Cancelled: true, Score: gr.score()})
}

// end cancela timers pendentes e fecha quit. Retorna false se a sala já tinha terminado.
func (gr *GameRoom) end() bool {
	if gr.Phase() == PhaseEnded {
		return false
	}
	gr.stopTimers()
	gr.setPhase(PhaseEnded)
	close(gr.quit)
	return true
}

func (gr *GameRoom) report(res Result) {
	select {
	case gr.finished <- res:
	case <-gr.halt:
	}
}

func (gr *GameRoom) score() [2]int {
	l, r := gr.sim.Scores()
	return [2]int{l, r}
}

func (gr *GameRoom) info() Info {
	return Info{
		RoomID:    gr.ID,
		Phase:     gr.Phase(),
		Players:   gr.Players(),
		Score:     gr.score(),
		CreatedAt: gr.CreatedAt,
	}
}
