// Package reorder turns a drag gesture into either a new authoritative order
// or a completion status change.
package reorder

import (
	"tasklist/internal/models/task"
	"tasklist/internal/view"
)

type Kind int

const (
	NoOp Kind = iota
	Move
	StatusChange
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case StatusChange:
		return "status_change"
	default:
		return "noop"
	}
}

// Outcome is what a gesture resolves to. Sequence is set for Move and holds
// every task id in the new authoritative order. Completed is set for
// StatusChange and is the status the source task takes.
type Outcome struct {
	Kind      Kind
	TaskID    string
	Sequence  []string
	Completed bool
}

// Resolve interprets dropping sourceID onto targetID. all is the authoritative
// sequence and v the partitions the user saw when the drag started.
func Resolve(all []task.Task, v view.Views, sourceID, targetID string) Outcome {
	if sourceID == "" || sourceID == targetID {
		return Outcome{}
	}

	srcPart, srcIdx := locate(v, sourceID)
	dstPart, dstIdx := locate(v, targetID)
	if srcPart == nil || dstPart == nil {
		return Outcome{}
	}

	if srcPart[0].Completed != dstPart[0].Completed {
		return Outcome{
			Kind:      StatusChange,
			TaskID:    sourceID,
			Completed: dstPart[0].Completed,
		}
	}

	moved := move(idsOf(srcPart), srcIdx, dstIdx)
	return Outcome{
		Kind:     Move,
		TaskID:   sourceID,
		Sequence: splice(idsOf(all), idsOf(srcPart), moved),
	}
}

func locate(v view.Views, id string) ([]task.Task, int) {
	for _, part := range [][]task.Task{v.Incomplete, v.Complete} {
		for i, t := range part {
			if t.ID == id {
				return part, i
			}
		}
	}
	return nil, -1
}

// move removes the element at from and reinserts it at to.
func move(ids []string, from, to int) []string {
	res := make([]string, 0, len(ids))
	res = append(res, ids[:from]...)
	res = append(res, ids[from+1:]...)

	item := ids[from]
	res = append(res[:to], append([]string{item}, res[to:]...)...)
	return res
}

// splice writes moved back into the slots the original partition ids held in
// sequence. Everything outside the partition keeps its position.
func splice(sequence, original, moved []string) []string {
	inPartition := make(map[string]struct{}, len(original))
	for _, id := range original {
		inPartition[id] = struct{}{}
	}

	res := make([]string, len(sequence))
	next := 0
	for i, id := range sequence {
		if _, ok := inPartition[id]; ok {
			res[i] = moved[next]
			next++
			continue
		}
		res[i] = id
	}
	return res
}

func idsOf(tasks []task.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}
