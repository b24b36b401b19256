package evgraph

// seenPair is a cycle guard key: once (a, b) has been assumed equivalent
// during a deep comparison, a re-visit short-circuits to true rather than
// recursing forever around a loop in the graph.
type seenPair struct {
	a, b NodeID
}

// Equivalent reports whether nodes a and b are candidates to be merged into
// a single node. With deep=false ("flat") it only compares each node's own
// payload; with deep=true it also requires every reachable Next edge to be
// pairwise Equivalent, guarding against cycles via a seen-pair set.
func Equivalent(arena *Arena, a, b NodeID, deep bool) bool {
	return equivalent(arena, a, b, deep, make(map[seenPair]bool))
}

func equivalent(arena *Arena, a, b NodeID, deep bool, seen map[seenPair]bool) bool {
	if a == b {
		return true
	}
	na, nb := arena.Get(a), arena.Get(b)
	if na == nil || nb == nil {
		return na == nb
	}
	if na.Kind != nb.Kind {
		return false
	}
	if na.Source != nb.Source {
		return false
	}
	if !payloadEqual(na, nb) {
		return false
	}
	if !deep {
		return true
	}

	key := seenPair{a, b}
	if v, ok := seen[key]; ok {
		return v
	}
	// Assume true while recursing so a cycle back to (a, b) does not
	// re-derive the same answer from scratch (and cannot infinite-loop).
	seen[key] = true

	ok := nextEquivalent(arena, na.Next, nb.Next, deep, seen)
	if !ok {
		seen[key] = false
	}
	return ok
}

// nextEquivalent compares two Next maps key-by-key, recursing with the same
// seen set so deep comparisons share cycle-guard state across the whole
// traversal.
func nextEquivalent(arena *Arena, na, nb map[int32]NodeID, deep bool, seen map[seenPair]bool) bool {
	if len(na) != len(nb) {
		return false
	}
	for k, va := range na {
		vb, ok := nb[k]
		if !ok {
			return false
		}
		if !equivalent(arena, va, vb, deep, seen) {
			return false
		}
	}
	return true
}

func payloadEqual(a, b *EventNode) bool {
	switch a.Kind {
	case KindNPCMessage:
		return npcMessageEqual(&a.NPCMessage, &b.NPCMessage)
	case KindExNPCMessage:
		return a.ExNPCMessage == b.ExNPCMessage
	case KindMultitalk:
		return a.Multitalk == b.Multitalk
	case KindPrompt:
		return promptEqual(&a.Prompt, &b.Prompt)
	case KindPlayScene:
		return a.PlayScene == b.PlayScene
	case KindOpenMenu:
		return a.OpenMenu == b.OpenMenu
	case KindDirection:
		return a.Direction == b.Direction
	case KindPerformActions:
		return actionsEqual(a.PerformActions.Actions, b.PerformActions.Actions)
	default:
		return false
	}
}

// npcMessageEqual tolerates missing Unknown entries: a zero stored value is
// substituted with the node's own default before comparison (see
// NPCMessagePayload.EffectiveUnknown), and a value still zero after that
// (the node never observed a nonzero unknown) matches any value.
func npcMessageEqual(a, b *NPCMessagePayload) bool {
	if len(a.MessageIDs) != len(b.MessageIDs) {
		return false
	}
	for i := range a.MessageIDs {
		if a.MessageIDs[i] != b.MessageIDs[i] {
			return false
		}
		ua, ub := a.EffectiveUnknown(i), b.EffectiveUnknown(i)
		if ua != 0 && ub != 0 && ua != ub {
			return false
		}
	}
	return true
}

// promptEqual pads the shorter Choices list conceptually: a missing choice
// on one side is tolerated as equal to any choice on the other (message id
// 0 is the "unobserved" wildcard).
func promptEqual(a, b *PromptPayload) bool {
	if a.MessageID != b.MessageID {
		return false
	}
	n := len(a.Choices)
	if len(b.Choices) > n {
		n = len(b.Choices)
	}
	for i := 0; i < n; i++ {
		var ca, cb PromptChoice
		if i < len(a.Choices) {
			ca = a.Choices[i]
		}
		if i < len(b.Choices) {
			cb = b.Choices[i]
		}
		if ca.MessageID == 0 || cb.MessageID == 0 {
			continue
		}
		if ca.MessageID != cb.MessageID {
			return false
		}
	}
	return true
}

func actionsEqual(a, b []Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !actionEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func actionEqual(a, b Action) bool {
	if a.ActionKind() != b.ActionKind() {
		return false
	}
	switch av := a.(type) {
	case DisplayMessageAction:
		bv := b.(DisplayMessageAction)
		return int32SliceEqual(av.MessageIDs, bv.MessageIDs)
	case AddRemoveItemsAction:
		bv := b.(AddRemoveItemsAction)
		return itemsEqual(av.Items, bv.Items) && av.Notify == bv.Notify
	case SetHomepointAction:
		return true
	case SetNPCStateAction:
		return av == b.(SetNPCStateAction)
	case SpecialDirectionAction:
		return av == b.(SpecialDirectionAction)
	case StageEffectAction:
		return av == b.(StageEffectAction)
	case PlaySoundEffectAction:
		return av == b.(PlaySoundEffectAction)
	case PlayBGMAction:
		return av == b.(PlayBGMAction)
	case ZoneChangeAction:
		return av == b.(ZoneChangeAction)
	case UpdateFlagAction:
		return av == b.(UpdateFlagAction)
	case UpdateLNCAction:
		return av == b.(UpdateLNCAction)
	case UpdateQuestAction:
		return av == b.(UpdateQuestAction)
	case StartEventAction:
		return av == b.(StartEventAction)
	default:
		return false
	}
}

func int32SliceEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func itemsEqual(a, b map[uint32]int32) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
