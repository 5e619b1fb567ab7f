package tracker

import (
	"hearthy.dev/internal/hs/enums"
	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker/world"
)

func applyOp(tx *world.Txn, op protocol.Op) error {
	switch op.Op {
	case protocol.OpCreateGame:
		pairs, err := wirePairs(op.Tags)
		if err != nil {
			return err
		}
		pairs = withDefault(pairs, tag.CardType, tag.Int(int(enums.CardTypeGame)))
		if err := tx.Create(op.Entity, pairs...); err != nil {
			return err
		}
		for _, p := range op.Players {
			pp, err := wirePairs(p.Tags)
			if err != nil {
				return err
			}
			pp = append(pp, tag.P(tag.PlayerID, tag.Int(p.PlayerID)))
			pp = withDefault(pp, tag.CardType, tag.Int(int(enums.CardTypePlayer)))
			if p.Name != "" {
				pp = append(pp, tag.P(tag.CustomName, tag.Text(p.Name)))
			}
			if err := tx.Create(p.Entity, pp...); err != nil {
				return err
			}
		}
		return nil

	case protocol.OpFullEntity:
		pairs, err := wirePairs(op.Tags)
		if err != nil {
			return err
		}
		if op.CardID != "" {
			pairs = append(pairs, tag.P(tag.PowerName, tag.Text(op.CardID)))
		}
		return tx.Create(op.Entity, pairs...)

	case protocol.OpShowEntity:
		pairs, err := wirePairs(op.Tags)
		if err != nil {
			return err
		}
		if op.CardID != "" {
			pairs = append(pairs, tag.P(tag.PowerName, tag.Text(op.CardID)))
		}
		if _, ok := tx.Get(op.Entity); !ok {
			return protocol.Errorf(protocol.ErrNotFound, "entity %d", op.Entity)
		}
		for _, p := range pairs {
			if err := tx.Set(op.Entity, p.Tag, p.Value); err != nil {
				return err
			}
		}
		return nil

	case protocol.OpHideEntity:
		return tx.Set(op.Entity, tag.Zone, tag.Int(op.Zone))

	case protocol.OpTagChange:
		t := tag.Tag(op.Tag)
		if t.Pseudo() {
			return protocol.Errorf(protocol.ErrBadRequest, "reserved tag %d", op.Tag)
		}
		return tx.Set(op.Entity, t, tag.Int(op.Value))
	}
	return protocol.Errorf(protocol.ErrBadRequest, "unknown op %q", op.Op)
}

func wirePairs(tvs []protocol.TagValue) ([]tag.Pair, error) {
	out := make([]tag.Pair, 0, len(tvs)+2)
	for _, tv := range tvs {
		t := tag.Tag(tv.Tag)
		if t.Pseudo() {
			return nil, protocol.Errorf(protocol.ErrBadRequest, "reserved tag %d", tv.Tag)
		}
		out = append(out, tag.P(t, tag.Int(tv.Value)))
	}
	return out, nil
}

func withDefault(pairs []tag.Pair, t tag.Tag, v tag.Value) []tag.Pair {
	for _, p := range pairs {
		if p.Tag == t {
			return pairs
		}
	}
	return append(pairs, tag.P(t, v))
}
