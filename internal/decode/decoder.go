package decode

import "fmt"

// Decode dispatches on opcode and returns the matching Record, or an
// *ErrBadLength if body violates the §6 size constraint for that opcode.
// Decode itself never panics on a short body: every field read below is
// preceded by an explicit length check.
func Decode(op Opcode, body []byte) (Record, error) {
	switch op {
	case OpZoneChange:
		return decodeZoneChange(body)
	case OpCharacterData:
		return decodeCharacterData(body)
	case OpNPCSpawn:
		return decodeNPCSpawn(body)
	case OpObjectSpawn:
		return decodeObjectSpawn(body)
	case OpBazaarSpawn:
		return decodeBazaarSpawn(body)
	case OpInteraction:
		return decodeInteraction(body)
	case OpSpotTriggered:
		return decodeSpotTriggered(body)
	case OpEventMessage:
		return decodeEventMessage(body)
	case OpNPCMessage:
		return decodeNPCMessage(body)
	case OpExNPCMessage:
		return decodeExNPCMessage(body)
	case OpMultitalk:
		return decodeMultitalk(body)
	case OpPrompt:
		return decodePrompt(body)
	case OpPlayScene:
		return decodePlayScene(body)
	case OpOpenMenu:
		return decodeOpenMenu(body)
	case OpGetItems:
		return decodeGetItems(body)
	case OpHomepoint:
		return HomepointRecord{}, nil
	case OpStageEffect:
		return decodeStageEffect(body)
	case OpDirection:
		return decodeDirection(body)
	case OpSpecialDirection:
		return decodeSpecialDirection(body)
	case OpPlaySound:
		return decodePlaySound(body)
	case OpPlayBGM:
		return decodePlayBGM(body)
	case OpStopBGM:
		return StopBGMRecord{}, nil
	case OpEventResponse:
		return decodeEventResponse(body)
	case OpEventEnd:
		return EventEndRecord{}, nil
	case OpMapFlag:
		return decodeFlag(byte(op), FlagKindMap, body)
	case OpUnionFlag:
		return decodeFlag(byte(op), FlagKindUnion, body)
	case OpValuableList:
		return decodeFlag(byte(op), FlagKindValuable, body)
	case OpLNCPoints:
		return decodeLNCPoints(body)
	case OpQuestPhase:
		return decodeQuestPhase(body)
	case OpSkillCompleted:
		return SkillCompletedRecord{}, nil
	case OpRemoveEntity:
		return decodeRemoveEntity(body)
	case OpNPCStateChange:
		return decodeNPCStateChange(body)
	default:
		return nil, fmt.Errorf("decode: unknown opcode 0x%02x", byte(op))
	}
}

func requireExact(op Opcode, name string, body []byte, n int) error {
	if len(body) != n {
		return badLength(byte(op), name, fmt.Sprintf("== %d", n), len(body))
	}
	return nil
}

func requireMin(op Opcode, name string, body []byte, n int) error {
	if len(body) < n {
		return badLength(byte(op), name, fmt.Sprintf(">= %d", n), len(body))
	}
	return nil
}

func decodeZoneChange(body []byte) (Record, error) {
	if err := requireExact(OpZoneChange, "ZoneChange", body, 24); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return ZoneChangeRecord{
		ZoneID:       r.U32(),
		Instance:     r.U32(),
		X:            r.F32(),
		Y:            r.F32(),
		Rot:          r.F32(),
		DynamicMapID: r.U32(),
	}, nil
}

func decodeCharacterData(body []byte) (Record, error) {
	if err := requireMin(OpCharacterData, "CharacterData", body, 4); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := CharacterDataRecord{EntityID: r.S32()}
	if r.Remaining() < 2 {
		return rec, nil
	}
	{
		// u16-prefixed name, then 95 skipped bytes, then s16 lnc, only if
		// the trailing data is actually present (real captures carry more
		// fields after lnc that this decoder does not model).
		savedOff := r.off
		n := int(r.U16())
		if r.Remaining() >= n {
			rec.Name = cp932ToUTF8(r.Bytes(n))
			if r.Remaining() >= 95+2 {
				r.Skip(95)
				rec.LNC = r.S16()
			}
		} else {
			r.off = savedOff
		}
	}
	return rec, nil
}

func decodeNPCSpawn(body []byte) (Record, error) {
	if err := requireExact(OpNPCSpawn, "NPCSpawn", body, 30); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := NPCSpawnRecord{
		EntityID: r.S32(),
		ObjectID: r.U32(),
		Instance: r.U32(),
		ZoneID:   r.U32(),
		X:        r.F32(),
		Y:        r.F32(),
		Rot:      r.F32(),
	}
	// Two trailing bytes carried by this opcode have no semantic use here.
	r.Skip(r.Remaining())
	return rec, nil
}

func decodeObjectSpawn(body []byte) (Record, error) {
	if err := requireExact(OpObjectSpawn, "ObjectSpawn", body, 29); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return ObjectSpawnRecord{
		EntityID: r.S32(),
		ObjectID: r.U32(),
		State:    r.U8(),
		Instance: r.U32(),
		ZoneID:   r.U32(),
		X:        r.F32(),
		Y:        r.F32(),
		Rot:      r.F32(),
	}, nil
}

func decodeBazaarSpawn(body []byte) (Record, error) {
	if err := requireMin(OpBazaarSpawn, "BazaarSpawn", body, 12); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := BazaarSpawnRecord{
		EntityID: r.S32(),
		Instance: r.U32(),
		ZoneID:   r.U32(),
	}
	if r.Remaining() < 16 {
		return rec, nil
	}
	rec.X = r.F32()
	rec.Y = r.F32()
	rec.Rot = r.F32()
	count := r.S32()
	for i := int32(0); i < count; i++ {
		if r.Remaining() < 4+8+2 {
			return nil, badLength(byte(OpBazaarSpawn), "BazaarSpawn market entry", ">= 14", r.Remaining())
		}
		id := r.U32()
		r.Skip(8)
		nameLen := int(r.U16())
		if r.Remaining() < nameLen {
			return nil, badLength(byte(OpBazaarSpawn), "BazaarSpawn market name", fmt.Sprintf(">= %d", nameLen), r.Remaining())
		}
		rec.Markets = append(rec.Markets, BazaarMarketEntry{ID: id, Name: cp932ToUTF8(r.Bytes(nameLen))})
	}
	return rec, nil
}

func decodeInteraction(body []byte) (Record, error) {
	if err := requireMin(OpInteraction, "Interaction", body, 4); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return InteractionRecord{EntityID: r.S32()}, nil
}

func decodeSpotTriggered(body []byte) (Record, error) {
	if err := requireMin(OpSpotTriggered, "SpotTriggered", body, 8); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return SpotTriggeredRecord{EntityID: r.S32(), SpotID: r.U32()}, nil
}

func decodeEventMessage(body []byte) (Record, error) {
	if err := requireExact(OpEventMessage, "EventMessage", body, 4); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return EventMessageRecord{MessageID: r.S32()}, nil
}

func decodeNPCMessage(body []byte) (Record, error) {
	if err := requireMin(OpNPCMessage, "NPCMessage", body, 10); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := NPCMessageRecord{Source: r.S32(), MessageID: r.S32()}
	switch {
	case len(body) == 10:
		rec.Unknown = int32(r.S16())
		rec.Legacy = true
	case len(body) >= 12:
		rec.Unknown = r.S32()
	default:
		return nil, badLength(byte(OpNPCMessage), "NPCMessage", "== 10 or >= 12", len(body))
	}
	return rec, nil
}

func decodeExNPCMessage(body []byte) (Record, error) {
	if err := requireMin(OpExNPCMessage, "ExNPCMessage", body, 11); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := ExNPCMessageRecord{
		Source:    r.S32(),
		MessageID: r.S32(),
		Ex1:       r.S16(),
	}
	ex2Set := r.U8()
	rec.Ex2Set = ex2Set == 1
	if rec.Ex2Set {
		if len(body) < 15 {
			return nil, badLength(byte(OpExNPCMessage), "ExNPCMessage", ">= 15 (ex2Set)", len(body))
		}
		rec.Ex2 = r.S32()
	}
	return rec, nil
}

func decodeMultitalk(body []byte) (Record, error) {
	if err := requireExact(OpMultitalk, "Multitalk", body, 8); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return MultitalkRecord{Source: r.S32(), MessageID: r.S32()}, nil
}

func decodePrompt(body []byte) (Record, error) {
	if err := requireMin(OpPrompt, "Prompt", body, 12); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := PromptRecord{Source: r.S32(), MessageID: r.S32()}
	count := r.S32()
	want := 12 + 8*int(count)
	if err := requireExact(OpPrompt, "Prompt", body, want); err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		rec.Choices = append(rec.Choices, PromptChoiceRecord{Index: r.S32(), MessageID: r.S32()})
	}
	return rec, nil
}

func decodePlayScene(body []byte) (Record, error) {
	if err := requireExact(OpPlayScene, "PlayScene", body, 5); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return PlaySceneRecord{SceneID: r.S32(), Unknown: r.S8()}, nil
}

func decodeOpenMenu(body []byte) (Record, error) {
	if err := requireMin(OpOpenMenu, "OpenMenu", body, 8); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := OpenMenuRecord{Source: r.S32(), MenuType: r.S32()}
	if r.Remaining() >= 4 {
		rec.ShopID = r.S32()
	}
	return rec, nil
}

func decodeGetItems(body []byte) (Record, error) {
	if err := requireMin(OpGetItems, "GetItems", body, 1); err != nil {
		return nil, err
	}
	r := NewReader(body)
	count := int(r.U8())
	want := 1 + count*6
	if err := requireExact(OpGetItems, "GetItems", body, want); err != nil {
		return nil, err
	}
	rec := GetItemsRecord{}
	for i := 0; i < count; i++ {
		rec.Items = append(rec.Items, GetItemsItem{ItemID: r.U32(), Quantity: r.U16()})
	}
	return rec, nil
}

func decodeStageEffect(body []byte) (Record, error) {
	if err := requireMin(OpStageEffect, "StageEffect", body, 5); err != nil {
		return nil, err
	}
	r := NewReader(body)
	rec := StageEffectRecord{MessageID: r.S32(), Effect1: r.S8()}
	if r.Remaining() >= 1 {
		set := r.U8()
		if set == 1 {
			if r.Remaining() < 4 {
				return nil, badLength(byte(OpStageEffect), "StageEffect", ">= 10 (effect2Set)", len(body))
			}
			rec.Effect2Set = true
			rec.Effect2 = r.S32()
		}
	}
	return rec, nil
}

func decodeDirection(body []byte) (Record, error) {
	if err := requireExact(OpDirection, "Direction", body, 4); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return DirectionRecord{Direction: r.S32()}, nil
}

func decodeSpecialDirection(body []byte) (Record, error) {
	if err := requireExact(OpSpecialDirection, "SpecialDirection", body, 6); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return SpecialDirectionRecord{Special1: r.U8(), Special2: r.U8(), Direction: r.S32()}, nil
}

func decodePlaySound(body []byte) (Record, error) {
	if err := requireExact(OpPlaySound, "PlaySound", body, 8); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return PlaySoundRecord{SoundID: r.S32(), Delay: r.S32()}, nil
}

func decodePlayBGM(body []byte) (Record, error) {
	if err := requireExact(OpPlayBGM, "PlayBGM", body, 12); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return PlayBGMRecord{MusicID: r.S32(), FadeInDelay: r.S32(), Unknown: r.S32()}, nil
}

func decodeEventResponse(body []byte) (Record, error) {
	if err := requireExact(OpEventResponse, "EventResponse", body, 4); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return EventResponseRecord{Response: r.S32()}, nil
}

func decodeFlag(opcode byte, kind FlagKind, body []byte) (Record, error) {
	var skip int
	var name string
	switch kind {
	case FlagKindMap:
		skip, name = 2, "MapFlag"
	case FlagKindUnion:
		skip, name = 6, "UnionFlag"
	default:
		skip, name = 2, "ValuableList"
	}
	if len(body) < skip {
		return nil, badLength(opcode, name, fmt.Sprintf(">= %d", skip), len(body))
	}
	bitmap := make([]byte, len(body)-skip)
	copy(bitmap, body[skip:])
	return FlagRecord{Kind: kind, Bitmap: bitmap}, nil
}

func decodeLNCPoints(body []byte) (Record, error) {
	if err := requireExact(OpLNCPoints, "LNCPoints", body, 2); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return LNCPointsRecord{Delta: r.S16()}, nil
}

func decodeQuestPhase(body []byte) (Record, error) {
	if err := requireExact(OpQuestPhase, "QuestPhase", body, 3); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return QuestPhaseRecord{QuestID: r.S16(), Phase: r.S8()}, nil
}

func decodeRemoveEntity(body []byte) (Record, error) {
	if err := requireExact(OpRemoveEntity, "RemoveEntity", body, 4); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return RemoveEntityRecord{EntityID: r.S32()}, nil
}

func decodeNPCStateChange(body []byte) (Record, error) {
	if err := requireExact(OpNPCStateChange, "NPCStateChange", body, 5); err != nil {
		return nil, err
	}
	r := NewReader(body)
	return NPCStateChangeRecord{EntityID: r.S32(), State: r.U8()}, nil
}
