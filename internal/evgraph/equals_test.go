package evgraph

import "testing"

func TestEquivalentFlatNPCMessage(t *testing.T) {
	a := NewArena()
	src := Source{Present: true, EntityID: 1, X: 10, Y: 20, Rot: 0}
	n1 := a.NewNPCMessage(src)
	n2 := a.NewNPCMessage(src)

	a.Get(n1).NPCMessage = NPCMessagePayload{MessageIDs: []int32{100}, Unknowns: []int32{5}}
	a.Get(n2).NPCMessage = NPCMessagePayload{MessageIDs: []int32{100}, Unknowns: []int32{5}}

	if !Equivalent(a, n1, n2, false) {
		t.Error("expected identical NPCMessage nodes to be flat-equivalent")
	}
}

func TestEquivalentNPCMessageUnknownDefaultSubstitution(t *testing.T) {
	a := NewArena()
	src := Source{Present: true, EntityID: 1}
	n1 := a.NewNPCMessage(src)
	n2 := a.NewNPCMessage(src)

	a.Get(n1).NPCMessage = NPCMessagePayload{MessageIDs: []int32{100}, Unknowns: []int32{7}}
	a.Get(n2).NPCMessage = NPCMessagePayload{MessageIDs: []int32{100}, Unknowns: []int32{0}}

	if !Equivalent(a, n1, n2, false) {
		t.Error("expected a zero Unknown to be tolerated via default substitution")
	}
}

func TestEquivalentRejectsDifferentSource(t *testing.T) {
	a := NewArena()
	n1 := a.NewNPCMessage(Source{Present: true, EntityID: 1})
	n2 := a.NewNPCMessage(Source{Present: true, EntityID: 2})

	a.Get(n1).NPCMessage = NPCMessagePayload{MessageIDs: []int32{100}}
	a.Get(n2).NPCMessage = NPCMessagePayload{MessageIDs: []int32{100}}

	if Equivalent(a, n1, n2, false) {
		t.Error("expected different Source entities to block equivalence")
	}
}

func TestEquivalentRejectsDifferentKind(t *testing.T) {
	a := NewArena()
	n1 := a.NewNPCMessage(Source{})
	n2 := a.NewMultitalk(Source{})

	if Equivalent(a, n1, n2, false) {
		t.Error("expected mismatched kinds to never be equivalent")
	}
}

func TestEquivalentDeepFollowsNext(t *testing.T) {
	a := NewArena()
	n1 := a.NewNPCMessage(Source{})
	n2 := a.NewNPCMessage(Source{})
	a.Get(n1).NPCMessage = NPCMessagePayload{MessageIDs: []int32{1}}
	a.Get(n2).NPCMessage = NPCMessagePayload{MessageIDs: []int32{1}}

	c1 := a.NewMultitalk(Source{})
	c2 := a.NewMultitalk(Source{})
	a.Get(c1).Multitalk = MultitalkPayload{MessageID: 42}
	a.Get(c2).Multitalk = MultitalkPayload{MessageID: 99}

	a.Get(n1).Next[0] = c1
	a.Get(n2).Next[0] = c2

	if Equivalent(a, n1, n2, true) {
		t.Error("expected deep comparison to fail when a downstream node differs")
	}

	a.Get(c2).Multitalk = MultitalkPayload{MessageID: 42}
	if !Equivalent(a, n1, n2, true) {
		t.Error("expected deep comparison to succeed once downstream nodes match")
	}
}

func TestEquivalentDeepCycleGuardTerminates(t *testing.T) {
	a := NewArena()
	n1 := a.NewMultitalk(Source{})
	n2 := a.NewMultitalk(Source{})
	a.Get(n1).Multitalk = MultitalkPayload{MessageID: 1}
	a.Get(n2).Multitalk = MultitalkPayload{MessageID: 1}

	// Each node points back at itself: without the seen-pair guard this
	// recurses forever.
	a.Get(n1).Next[0] = n1
	a.Get(n2).Next[0] = n2

	if !Equivalent(a, n1, n2, true) {
		t.Error("expected self-looping equivalent nodes to terminate as equivalent")
	}
}

func TestEquivalentPromptToleratesUnobservedChoices(t *testing.T) {
	a := NewArena()
	n1 := a.NewPrompt(Source{})
	n2 := a.NewPrompt(Source{})
	a.Get(n1).Prompt = PromptPayload{
		MessageID: 1,
		Choices:   []PromptChoice{{MessageID: 10}, {MessageID: 0}},
	}
	a.Get(n2).Prompt = PromptPayload{
		MessageID: 1,
		Choices:   []PromptChoice{{MessageID: 10}, {MessageID: 20}},
	}

	if !Equivalent(a, n1, n2, false) {
		t.Error("expected an unobserved (zero) choice to be tolerated as a wildcard")
	}
}

func TestEquivalentActionsCompareByKindAndFields(t *testing.T) {
	a := NewArena()
	n1 := a.NewPerformActions()
	n2 := a.NewPerformActions()

	a.Get(n1).PerformActions = PerformActionsPayload{Actions: []Action{
		UpdateFlagAction{FlagType: FlagMap, ID: 5, Remove: false},
	}}
	a.Get(n2).PerformActions = PerformActionsPayload{Actions: []Action{
		UpdateFlagAction{FlagType: FlagMap, ID: 5, Remove: true},
	}}

	if Equivalent(a, n1, n2, false) {
		t.Error("expected differing Remove field to block action equivalence")
	}
}

func TestEquivalentStaleNodeNeverEqual(t *testing.T) {
	a := NewArena()
	n1 := a.NewMultitalk(Source{})
	n2 := a.NewMultitalk(Source{})
	a.Erase(n1)

	if Equivalent(a, n1, n2, false) {
		t.Error("expected an erased (stale) node to never be equivalent to a live one")
	}
}
