package tracker

import (
	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker/entity"
)

// EntityState renders a frozen entity for observers.
func EntityState(e *entity.Entity, cards entity.CardLookup) protocol.EntityState {
	pairs := e.Pairs()
	tags := make([]protocol.TagState, 0, len(pairs))
	for _, p := range pairs {
		tags = append(tags, protocol.TagState{
			Tag:   int(p.Tag),
			Name:  tag.FormatName(p.Tag),
			Value: tag.FormatValue(p.Tag, p.Value),
		})
	}
	return protocol.EntityState{ID: e.ID(), Description: e.Describe(cards), Tags: tags}
}

// CommitMsg renders a commit for observers.
func CommitMsg(ev CommitEvent, cards entity.CardLookup) protocol.CommitMsg {
	msg := protocol.CommitMsg{
		Type:            protocol.TypeCommit,
		ProtocolVersion: protocol.Version,
		GameID:          ev.GameID,
		Seq:             ev.Seq,
		GameOver:        ev.GameOver,
	}
	for _, e := range ev.Commit.Created {
		msg.Created = append(msg.Created, EntityState(e, cards))
	}
	for _, ch := range ev.Commit.Changed {
		diff := make([]protocol.TagDiff, 0, len(ch.Changes))
		for _, c := range ch.Changes {
			d := protocol.TagDiff{
				Tag:   int(c.Tag),
				Name:  tag.FormatName(c.Tag),
				After: tag.FormatValue(c.Tag, c.After),
			}
			if c.Before.IsSet() {
				d.Before = tag.FormatValue(c.Tag, c.Before)
			}
			diff = append(diff, d)
		}
		msg.Changed = append(msg.Changed, protocol.EntityChange{
			ID:          ch.Entity.ID(),
			Description: ch.Entity.Describe(cards),
			Diff:        diff,
		})
	}
	return msg
}

// Lines renders a commit the way the command line prints it: one
// description per created entity and one diff block per changed entity.
func Lines(c CommitEvent, cards entity.CardLookup) []string {
	out := make([]string, 0, len(c.Commit.Created)+len(c.Commit.Changed))
	for _, e := range c.Commit.Created {
		out = append(out, "+ "+e.Describe(cards))
	}
	for _, ch := range c.Commit.Changed {
		out = append(out, "~ "+ch.Diff(cards))
	}
	return out
}
