package proto

import (
	"encoding/json"
	"errors"
	"testing"

	"horde-hunt/server/internal/entity"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Run("input", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"input","up":true,"shoot":true,"aimX":120.5,"aimY":-4,"timestamp":1700000000123}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		in := msg.Input()
		if !in.Up || !in.Shoot || in.Down {
			t.Fatalf("unexpected flags: %+v", in)
		}
		if in.AimX != 120.5 || in.AimY != -4 {
			t.Fatalf("unexpected aim: %+v", in)
		}
		if in.Timestamp != 1700000000123 {
			t.Fatalf("unexpected timestamp %d", in.Timestamp)
		}
	})

	t.Run("toggle chat keeps explicit false", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"toggle_chat","disabled":false}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Disabled == nil || *msg.Disabled {
			t.Fatalf("expected disabled=false pointer, got %v", msg.Disabled)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodeClientMessage([]byte(`{"type":"teleport"}`))
		if !errors.Is(err, ErrUnknownType) {
			t.Fatalf("expected ErrUnknownType, got %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{`not json`, `[]`, `{"type":"input","aimX":"left"}`} {
			if _, err := DecodeClientMessage([]byte(raw)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed for %s, got %v", raw, err)
			}
		}
	})
}

func TestCodecFor(t *testing.T) {
	codec, err := CodecFor("")
	if err != nil || codec.Name() != CodecJSON || codec.Binary() {
		t.Fatalf("expected json default, got %v %v", codec, err)
	}
	codec, err = CodecFor("MsgPack")
	if err != nil || codec.Name() != CodecMsgpack || !codec.Binary() {
		t.Fatalf("expected msgpack codec, got %v %v", codec, err)
	}
	if _, err := CodecFor("xml"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}

func TestMsgpackUsesJSONFieldNames(t *testing.T) {
	msg := Joined{Type: TypeJoined, PlayerID: "p1", Name: "Ada", Role: string(entity.RoleHunter), Arena: Arena{Width: 800, Height: 600, TileSize: 40}}
	data, err := MsgpackCodec{}.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := (MsgpackCodec{}).Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["playerId"] != "p1" || decoded["type"] != TypeJoined {
		t.Fatalf("unexpected keys: %v", decoded)
	}
}

func TestMsgpackClientMessage(t *testing.T) {
	data, err := MsgpackCodec{}.Marshal(map[string]any{"type": TypeEmote, "symbol": "🔥"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := Decode(MsgpackCodec{}, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeEmote || msg.Symbol != "🔥" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestStateEncodesEmptyCollections(t *testing.T) {
	state := State{Type: TypeState, Players: []PlayerView{}, Bullets: []BulletView{}}
	raw, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["players"].([]any); !ok {
		t.Fatalf("expected players array, got %v", decoded["players"])
	}
	if _, ok := decoded["remainingTime"]; !ok {
		t.Fatalf("expected remainingTime key")
	}
}
