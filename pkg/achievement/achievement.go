// Package achievement detects personal-record events for a session.
//
// Detection is a pure function over the session's climbs and the full climb
// history. It runs once per session pause/end as a full-history scan rather
// than an incremental computation. That is fine for single-user climb logs;
// a larger deployment would keep a running per-type max, which only ever
// grows.
package achievement

import (
	"fmt"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/grade"
)

// TypeNewPR is the only achievement type currently produced.
const TypeNewPR = "new_pr"

// Achievement is an ephemeral personal-record event. It appears only inside
// a session summary and is never persisted.
type Achievement struct {
	// Type is the achievement kind, always TypeNewPR.
	Type string `json:"type"`

	// ClimbType is the climb type the record was set in.
	ClimbType grade.Type `json:"climbType"`

	// Grade is the record-setting grade as stored.
	Grade string `json:"grade"`

	// Description is the display string, e.g. "New Boulder PR: V8".
	Description string `json:"description"`
}

// Detect returns the personal records set during the session.
//
// A send sets a PR when its normalized index exceeds the hardest prior send
// of that type (climbs outside sessionID). Only the single hardest new-PR
// send per type is reported, even when several sends in the session broke
// the prior record; on equal indexes the earlier send stands. Results follow
// the fixed boulder, sport, trad order, omitting types with no record.
func Detect(sessionClimbs, allClimbs []climb.Climb, sessionID string) []Achievement {
	// Hardest prior send per type, -1 when none.
	priorMax := make(map[grade.Type]int)
	for _, t := range grade.Types() {
		priorMax[t] = -1
	}

	for _, c := range allClimbs {
		if c.SessionID == sessionID || c.Status != climb.StatusSend {
			continue
		}
		if idx := grade.NormalizedIndex(c.Grade, c.Type); idx > priorMax[c.Type] {
			priorMax[c.Type] = idx
		}
	}

	// Best new-PR candidate per type within this session.
	bestIdx := make(map[grade.Type]int)
	bestGrade := make(map[grade.Type]string)

	for _, c := range sessionClimbs {
		if c.Status != climb.StatusSend {
			continue
		}

		idx := grade.NormalizedIndex(c.Grade, c.Type)
		if idx <= priorMax[c.Type] {
			continue
		}

		if current, ok := bestIdx[c.Type]; ok && idx <= current {
			continue
		}

		bestIdx[c.Type] = idx
		bestGrade[c.Type] = c.Grade
	}

	var achievements []Achievement
	for _, t := range grade.Types() {
		g, ok := bestGrade[t]
		if !ok {
			continue
		}

		achievements = append(achievements, Achievement{
			Type:        TypeNewPR,
			ClimbType:   t,
			Grade:       g,
			Description: fmt.Sprintf("New %s PR: %s", t.Label(), g),
		})
	}

	return achievements
}
