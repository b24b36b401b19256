package xmlout

import (
	"fmt"

	"github.com/l1jgo/zonerecon/internal/emit"
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/zone"
)

const unknownCondition = "unknown"

// ConvertZone builds the zone-<zoneId>.xml document from a reconstructed
// Zone. Entity.Name must already be resolved (internal/pipeline does this
// via the Zone Registry before calling here, since name resolution is an
// emit-time concern per zone.Entity.Name's comment).
func ConvertZone(z *zone.Zone) ZoneDocument {
	doc := ZoneDocument{ID: z.ID}
	for _, e := range z.NPCs {
		doc.NPCs = append(doc.NPCs, NPC{
			NameComment: xmlComment(e.Name),
			TemplateID:  e.ID,
			X:           e.X,
			Y:           e.Y,
			Rot:         e.Rot,
			Actions:     convertActions(e.Actions),
		})
	}
	for _, e := range z.Objects {
		doc.Objects = append(doc.Objects, Object{
			NameComment: xmlComment(e.Name),
			TemplateID:  e.ID,
			X:           e.X,
			Y:           e.Y,
			Rot:         e.Rot,
			State:       e.ObjectState,
			Actions:     convertActions(e.Actions),
		})
	}
	for _, e := range z.Bazaars {
		doc.Bazaars = append(doc.Bazaars, Bazaar{X: e.X, Y: e.Y, Rot: e.Rot, Markets: e.Markets})
	}
	for id, s := range z.Spots {
		doc.Spots = append(doc.Spots, Spot{ID: id, Actions: convertActions(s.Actions)})
	}
	for peerID, conn := range z.Connections {
		// Never bound by a trigger during the Event Builder pass: persist
		// as an unknown-id spot.
		doc.Spots = append(doc.Spots, Spot{
			ID:          peerID,
			ConditionID: unknownCondition,
			Actions:     []ActionXML{convertAction(conn)},
		})
	}
	return doc
}

func xmlComment(name string) []byte {
	if name == "" {
		return []byte(" name unknown ")
	}
	return []byte(fmt.Sprintf(" %s ", name))
}

// ConvertEvents builds the zone_events-<zoneId>.xml document from the
// Emitter's result.
func ConvertEvents(res *emit.Result) EventsDocument {
	doc := EventsDocument{ZoneID: res.ZoneID}
	for _, ev := range res.Events {
		doc.Events = append(doc.Events, convertEvent(ev))
	}
	for _, u := range res.Unmapped {
		doc.Unmapped = append(doc.Unmapped, UnmappedXML{
			ConditionID: u.ConditionID,
			Event:       convertEvent(u.Event),
		})
	}
	return doc
}

func convertEvent(ev *emit.Event) EventXML {
	n := ev.Node
	out := EventXML{
		ID:   ev.ID,
		Kind: n.Kind.Prefix(),
	}
	switch n.Kind {
	case evgraph.KindNPCMessage:
		out.Messages = n.NPCMessage.MessageIDs
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindExNPCMessage:
		out.Messages = []int32{n.ExNPCMessage.MessageID}
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindMultitalk:
		out.Messages = []int32{n.Multitalk.MessageID}
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindPlayScene:
		out.Messages = []int32{n.PlayScene.SceneID}
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindOpenMenu:
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindDirection:
		out.Messages = []int32{n.Direction.Direction}
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindPerformActions:
		out.Actions = convertActions(n.PerformActions.Actions)
		out.NextID = ev.NextID
		out.Branches = convertBranches(ev.Branches)
	case evgraph.KindPrompt:
		out.Messages = []int32{n.Prompt.MessageID}
		for i, c := range n.Prompt.Choices {
			choice := ChoiceXML{MessageID: c.MessageID}
			if i < len(ev.ChoiceNextIDs) {
				choice.NextID = ev.ChoiceNextIDs[i]
			}
			if i < len(ev.ChoiceBranches) {
				choice.Branches = convertBranches(ev.ChoiceBranches[i])
			}
			out.Choices = append(out.Choices, choice)
		}
	}
	return out
}

func convertBranches(branches []emit.BranchRecord) []BranchXML {
	if len(branches) == 0 {
		return nil
	}
	out := make([]BranchXML, 0, len(branches))
	for _, b := range branches {
		out = append(out, BranchXML{ConditionID: b.ConditionID, NextID: b.NextID})
	}
	return out
}

func convertActions(actions []evgraph.Action) []ActionXML {
	if len(actions) == 0 {
		return nil
	}
	out := make([]ActionXML, 0, len(actions))
	for _, a := range actions {
		out = append(out, convertAction(a))
	}
	return out
}

func convertAction(a evgraph.Action) ActionXML {
	switch v := a.(type) {
	case evgraph.DisplayMessageAction:
		return ActionXML{Kind: "displayMessage", Field1: intSliceString(v.MessageIDs)}
	case evgraph.AddRemoveItemsAction:
		return ActionXML{Kind: "addRemoveItems", Field1: fmt.Sprint(v.Items), Field2: fmt.Sprint(v.Notify)}
	case evgraph.SetHomepointAction:
		return ActionXML{Kind: "setHomepoint"}
	case evgraph.SetNPCStateAction:
		return ActionXML{Kind: "setNPCState", Field1: fmt.Sprint(v.State)}
	case evgraph.SpecialDirectionAction:
		return ActionXML{Kind: "specialDirection", Field1: fmt.Sprint(v.Special1), Field2: fmt.Sprint(v.Special2), Field3: fmt.Sprint(v.Direction)}
	case evgraph.StageEffectAction:
		return ActionXML{Kind: "stageEffect", Field1: fmt.Sprint(v.MessageID), Field2: fmt.Sprint(v.Effect1), Field3: fmt.Sprint(v.Effect2)}
	case evgraph.PlaySoundEffectAction:
		return ActionXML{Kind: "playSound", Field1: fmt.Sprint(v.SoundID), Field2: fmt.Sprint(v.Delay)}
	case evgraph.PlayBGMAction:
		return ActionXML{Kind: "playBGM", Field1: fmt.Sprint(v.IsStop), Field2: fmt.Sprint(v.MusicID), Field3: fmt.Sprint(v.FadeInDelay)}
	case evgraph.ZoneChangeAction:
		return ActionXML{Kind: "zoneChange", Field1: fmt.Sprint(v.ZoneID), Field2: fmt.Sprint(v.DestX), Field3: fmt.Sprint(v.DestY), Field4: fmt.Sprint(v.DestRot), Field5: fmt.Sprint(v.MapID)}
	case evgraph.UpdateFlagAction:
		return ActionXML{Kind: "updateFlag", Field1: fmt.Sprint(v.FlagType), Field2: fmt.Sprint(v.ID), Field3: fmt.Sprint(v.Remove)}
	case evgraph.UpdateLNCAction:
		return ActionXML{Kind: "updateLNC", Field1: fmt.Sprint(v.Value)}
	case evgraph.UpdateQuestAction:
		return ActionXML{Kind: "updateQuest", Field1: fmt.Sprint(v.QuestID), Field2: fmt.Sprint(v.Phase)}
	case evgraph.StartEventAction:
		return ActionXML{Kind: "startEvent", Field1: v.EventID}
	default:
		return ActionXML{Kind: "unknown"}
	}
}

func intSliceString(ids []int32) string {
	return fmt.Sprint(ids)
}
