package server

import (
	"context"
	"time"

	"ringrace/server/internal/events"
	"ringrace/server/internal/ranking"
	"ringrace/server/internal/score"
)

// Race reward items are always granted with this item type and a single
// option unit.
const (
	raceRewardItemType int32 = 9
	raceRewardItemOpt  int32 = 1
)

// The finish response carries fixed fatigue values.
const (
	fatigueValue = 50
	fatigueLevel = 1
)

// raceSession is one in-progress run, keyed by the player's connection.
// collectedRings only ever grows; the session is removed on cancel or
// finish.
type raceSession struct {
	collectedRings map[int32]struct{}
	mode           int32
	ticketSlot     int32
	startTime      time.Time
	raceID         int32
	limitTime      int
}

// raceStart begins a run at a starting-line agent. An unknown agent or a
// zone without a race drops the request; an already-running session is
// replaced unconditionally, which is the protocol's restart policy.
func (h *Hub) raceStart(plr *playerState, msg ClientMessage) []any {
	agent, ok := h.catalog.Agent(msg.AgentID)
	if !ok {
		return nil
	}
	cfg, ok := h.catalog.ZoneRace(agent.Zone)
	if !ok {
		return nil
	}

	h.sessions[plr.ID] = &raceSession{
		collectedRings: make(map[int32]struct{}),
		mode:           msg.Mode,
		ticketSlot:     msg.TicketSlot,
		startTime:      h.now(),
		raceID:         cfg.RaceID,
		limitTime:      cfg.MaxTime,
	}
	h.log.Debug().Str("player", plr.ID).Int32("race", cfg.RaceID).Msg("race started")

	return []any{raceStartMessage{Type: msgRaceStartOK, LimitTime: cfg.MaxTime}}
}

// ringCollect credits a checkpoint ring. Collecting the same ring twice is a
// no-op; without an anti-cheat layer the validator is the only gate on
// honoring the request.
func (h *Hub) ringCollect(plr *playerState, msg ClientMessage) []any {
	session, ok := h.sessions[plr.ID]
	if !ok {
		return nil
	}
	if _, dup := session.collectedRings[msg.RingID]; dup {
		return nil
	}

	elapsed := int64(h.now().Sub(session.startTime).Seconds())
	if !h.validator.AllowCollect(plr.ID, msg.RingID, len(session.collectedRings), elapsed) {
		h.log.Debug().Str("player", plr.ID).Int32("ring", msg.RingID).Msg("ring collect rejected by validator")
		return nil
	}

	session.collectedRings[msg.RingID] = struct{}{}

	return []any{ringMessage{
		Type:      msgRingOK,
		RingID:    msg.RingID,
		RingCount: len(session.collectedRings),
	}}
}

// raceCancel ends a run without scoring it. The same request arrives when a
// client-side timer expires, and in that case the client locks movement
// until a server placement message releases it — so the relocation always
// follows the ack, even though nothing failed server-side.
func (h *Hub) raceCancel(plr *playerState) []any {
	if _, ok := h.sessions[plr.ID]; !ok {
		return nil
	}
	delete(h.sessions, plr.ID)

	target := plr.respawnPoint()
	plr.X, plr.Y, plr.Z, plr.Zone = target.X, target.Y, target.Z, target.Zone

	return []any{
		raceCancelMessage{Type: msgRaceCancelOK},
		relocateMessage{Type: msgRelocate, X: target.X, Y: target.Y, Z: target.Z, Zone: target.Zone},
	}
}

// raceFinish scores a run, persists and re-reads the ranking, grants the
// rewards, and ends the session.
//
// The ranking entry is persisted before the reward grant, and there is no
// compensation between the two: a failure after the persist leaves the
// ranking recorded and the reward lost. That window is accepted rather than
// papered over with transaction machinery.
func (h *Hub) raceFinish(plr *playerState, msg ClientMessage) []any {
	session, ok := h.sessions[plr.ID]
	if !ok {
		return nil
	}

	// The finish agent resolves independently of the start: the session is
	// left intact on failure so the client can retry at the right line.
	agent, ok := h.catalog.Agent(msg.AgentID)
	if !ok {
		return nil
	}
	cfg, ok := h.catalog.ZoneRace(agent.Zone)
	if !ok {
		return nil
	}

	now := h.now()
	elapsed := int64(now.Sub(session.startTime).Seconds())
	podsCollected := len(session.collectedRings)

	if !h.validator.AllowFinish(plr.ID, podsCollected, elapsed) {
		h.log.Info().Str("player", plr.ID).Int("pods", podsCollected).Int64("elapsed", elapsed).
			Msg("race finish rejected by validator")
		return nil
	}

	params := score.Params{
		PodFactor:   cfg.PodFactor,
		TimeFactor:  cfg.TimeFactor,
		ScaleFactor: cfg.ScaleFactor,
		MaxPods:     cfg.MaxPods,
		MaxTime:     cfg.MaxTime,
		MaxScore:    cfg.MaxScore,
		Capped:      h.cfg.ScoreCapEnabled,
	}
	runScore := score.Run(params, podsCollected, elapsed)
	fusionMatter := score.FusionMatter(params, podsCollected)

	entry := ranking.Entry{
		RaceID:         cfg.RaceID,
		PlayerID:       plr.ID,
		RingCount:      podsCollected,
		Score:          runScore,
		ElapsedSeconds: elapsed,
		RecordedAt:     now,
	}

	// The ranking is submitted first; the best-ever read below may then
	// legitimately return the run just recorded.
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.StoreTimeout)
	defer cancel()
	if err := h.store.Record(ctx, entry); err != nil {
		h.log.Error().Err(err).Str("player", plr.ID).Msg("failed to record ranking")
		return nil
	}
	best, err := h.store.Best(ctx, cfg.RaceID, plr.ID)
	if err != nil {
		h.log.Error().Err(err).Str("player", plr.ID).Msg("failed to read best ranking")
		return nil
	}

	table, ok := h.catalog.Rewards(cfg.RaceID)
	if !ok {
		h.log.Error().Int32("race", cfg.RaceID).Msg("race has no reward table")
		return nil
	}

	// Two independent lookups: this run's tier and the all-time best tier.
	rank := score.Rank(table.Thresholds, runScore)
	topRank := score.Rank(table.Thresholds, best.Score)

	plr.FusionMatter += fusionMatter

	resp := raceFinishMessage{
		Type:         msgRaceFinishOK,
		Rank:         rank + 1,
		RingCount:    podsCollected,
		Score:        runScore,
		Time:         elapsed,
		Mode:         session.mode,
		RewardFM:     fusionMatter,
		FusionMatter: plr.FusionMatter,
		Fatigue:      fatigueValue,
		FatigueLevel: fatigueLevel,
		TopRank:      topRank + 1,
		TopRingCount: best.RingCount,
		TopScore:     best.Score,
		TopTime:      best.ElapsedSeconds,
	}

	// A full inventory or a tier with no item simply omits the item grant;
	// the run itself still succeeded.
	slot := plr.Inventory.FindFreeSlot()
	itemID := table.ItemIDs[rank]
	if slot > -1 && itemID != 0 {
		item := wireToItem(WireItem{ID: itemID, Type: raceRewardItemType, Opt: raceRewardItemOpt})
		if err := plr.Inventory.Set(slot, item); err == nil {
			resp.Reward = &rewardItemMessage{
				Slot: slot,
				Item: WireItem{ID: itemID, Type: raceRewardItemType, Opt: raceRewardItemOpt},
			}
		}
	}

	delete(h.sessions, plr.ID)

	h.events.RaceFinished(events.RaceFinished{
		RaceID:       cfg.RaceID,
		PlayerID:     plr.ID,
		RingCount:    podsCollected,
		Score:        runScore,
		Elapsed:      elapsed,
		Rank:         rank + 1,
		FusionMatter: fusionMatter,
		FinishedAt:   now,
	})
	h.log.Info().Str("player", plr.ID).Int32("race", cfg.RaceID).Int("score", runScore).
		Int("rank", rank+1).Msg("race finished")

	return []any{resp}
}
