// Package quests tracks quest and task progress and pays out rewards on
// explicit completion.
package quests

import (
	"fmt"
	"time"

	"github.com/nathoo/kaito/engine/state"
	"github.com/nathoo/kaito/types"
)

// MaxActive is the number of concurrent quests a player can hold.
const MaxActive = 3

// Task reset periods.
const (
	DailyPeriod  = 24 * time.Hour
	WeeklyPeriod = 7 * 24 * time.Hour
)

func matches(q *types.Quest, kind, item string) bool {
	return q.Kind == kind && (q.Item == "" || q.Item == item)
}

func advance(q *types.Quest, n int) bool {
	if q.Progress >= q.Target {
		return false
	}
	q.Progress += n
	if q.Progress > q.Target {
		q.Progress = q.Target
	}
	return q.Progress >= q.Target
}

// Record advances every quest and open task matching kind and item by n.
// It returns quest_ready events for objectives that reached their target.
func Record(p *types.Player, kind, item string, n int) []types.Event {
	if n <= 0 {
		return nil
	}
	var evts []types.Event
	ready := func(id, desc string) {
		evts = append(evts, types.Event{
			Type: "quest_ready",
			Data: map[string]any{"id": id, "description": desc},
		})
	}
	for i := range p.Quests {
		q := &p.Quests[i]
		if matches(q, kind, item) && advance(q, n) {
			ready(q.ID, q.Description)
		}
	}
	for _, list := range [][]types.Task{p.DailyTasks, p.WeeklyTasks} {
		for i := range list {
			tk := &list[i]
			if tk.Completed {
				continue
			}
			if matches(&tk.Quest, kind, item) && advance(&tk.Quest, n) {
				ready(tk.ID, tk.Description)
			}
		}
	}
	return evts
}

// Completable reports whether progress reached the target.
func Completable(q types.Quest) bool {
	return q.Progress >= q.Target
}

// Accept adds a copy of the quest template to the player's list.
func Accept(p *types.Player, tmpl types.Quest) (types.Result, error) {
	for _, q := range p.Quests {
		if q.ID == tmpl.ID {
			return types.Result{}, state.Reject(state.ErrInvalid, "You are already on %q.", tmpl.Description)
		}
	}
	if len(p.Quests) >= MaxActive {
		return types.Result{}, state.Reject(state.ErrQuestLimit, "You can only hold %d quests at a time.", MaxActive)
	}
	q := tmpl
	q.Progress = 0
	p.Quests = append(p.Quests, q)
	return types.Result{
		Output:  []string{fmt.Sprintf("New quest: %s (0/%d).", q.Description, q.Target)},
		Events:  []types.Event{{Type: "quest_accepted", Data: map[string]any{"id": q.ID}}},
		Changed: true,
	}, nil
}

// CompleteQuest pays out a completable quest and removes it.
func CompleteQuest(p *types.Player, id string) (types.Result, error) {
	idx := -1
	for i, q := range p.Quests {
		if q.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Result{}, state.Reject(state.ErrUnknown, "You have no quest %q.", id)
	}
	q := p.Quests[idx]
	if !Completable(q) {
		return types.Result{}, state.Reject(state.ErrNotCompletable, "%s is not done yet (%d/%d).", q.Description, q.Progress, q.Target)
	}
	p.Quests = append(p.Quests[:idx], p.Quests[idx+1:]...)
	res := payout(p, q.Reward, fmt.Sprintf("Quest complete: %s!", q.Description))
	res.Events = append(res.Events, types.Event{Type: "quest_completed", Data: map[string]any{"id": q.ID}})
	return res, nil
}

// CompleteTask pays out a completable daily or weekly task.
func CompleteTask(p *types.Player, id string) (types.Result, error) {
	tk := findTask(p, id)
	if tk == nil {
		return types.Result{}, state.Reject(state.ErrUnknown, "There is no task %q.", id)
	}
	if tk.Completed {
		return types.Result{}, state.Reject(state.ErrNotCompletable, "%s was already claimed.", tk.Description)
	}
	if !Completable(tk.Quest) {
		return types.Result{}, state.Reject(state.ErrNotCompletable, "%s is not done yet (%d/%d).", tk.Description, tk.Progress, tk.Target)
	}
	tk.Completed = true
	res := payout(p, tk.Reward, fmt.Sprintf("Task complete: %s!", tk.Description))
	res.Events = append(res.Events, types.Event{Type: "task_completed", Data: map[string]any{"id": tk.ID}})
	return res, nil
}

func findTask(p *types.Player, id string) *types.Task {
	for i := range p.DailyTasks {
		if p.DailyTasks[i].ID == id {
			return &p.DailyTasks[i]
		}
	}
	for i := range p.WeeklyTasks {
		if p.WeeklyTasks[i].ID == id {
			return &p.WeeklyTasks[i]
		}
	}
	return nil
}

func payout(p *types.Player, r types.Reward, headline string) types.Result {
	p.Gold += r.Gold
	res := types.Result{
		Output:  []string{headline, fmt.Sprintf("  +%d gold, +%d XP", r.Gold, r.XP)},
		Changed: true,
	}
	if state.GrantXP(p, r.XP) {
		res.Events = append(res.Events, types.Event{Type: "level_up", Data: map[string]any{"level": p.Level}})
		res.Output = append(res.Output, fmt.Sprintf("You reached level %d!", p.Level))
	}
	return res
}

// ResetTasks refreshes daily and weekly tasks whose period has elapsed.
func ResetTasks(p *types.Player, defs *state.Defs, now time.Time) []types.Event {
	var evts []types.Event
	if !p.DailyResetAt.IsZero() && now.Sub(p.DailyResetAt) >= DailyPeriod {
		p.DailyTasks = state.FreshTasks(defs.DailyTasks)
		p.DailyResetAt = now
		evts = append(evts, types.Event{Type: "tasks_reset", Data: map[string]any{"period": "daily"}})
	}
	if !p.WeeklyResetAt.IsZero() && now.Sub(p.WeeklyResetAt) >= WeeklyPeriod {
		p.WeeklyTasks = state.FreshTasks(defs.WeeklyTasks)
		p.WeeklyResetAt = now
		evts = append(evts, types.Event{Type: "tasks_reset", Data: map[string]any{"period": "weekly"}})
	}
	if p.DailyResetAt.IsZero() {
		p.DailyResetAt = now
	}
	if p.WeeklyResetAt.IsZero() {
		p.WeeklyResetAt = now
	}
	return evts
}
