package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMarshalEventShapes(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{"init", InitEvent{Version: "1.4.0"}, `{"type":"INIT","version":"1.4.0"}`},
		{"score", ScoreEvent{GamePlayUUID: "abc", Score: 0, ChallengeNumber: 1},
			`{"challengeNumber":1,"gamePlayUuid":"abc","score":0,"type":"SCORE"}`},
		{"game over", GameOverEvent{GamePlayUUID: "abc", Score: 12, ChallengeNumber: 3},
			`{"challengeNumber":3,"gamePlayUuid":"abc","score":12,"type":"GAME_OVER"}`},
		{"err", ErrEvent{GamePlayUUID: "UNSET", ErrMsg: "boom"},
			`{"errMsg":"boom","gamePlayUuid":"UNSET","type":"ERR"}`},
		{"warning", WarningEvent{GamePlayUUID: "x", Msg: "hm"},
			`{"gamePlayUuid":"x","msg":"hm","type":"WARNING"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalEvent(tt.event)
			if err != nil {
				t.Fatalf("MarshalEvent() failed: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("MarshalEvent() = %s, want %s", data, tt.expected)
			}
		})
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	in := GameOverEvent{GamePlayUUID: "u-1", Score: 99, ChallengeNumber: 7}
	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent() failed: %v", err)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if _, ok := env[EventEnvelopeKey]; !ok {
		t.Fatalf("envelope %s is missing key %q", data, EventEnvelopeKey)
	}

	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() failed: %v", err)
	}
	if out != in {
		t.Errorf("DecodeEvent() = %#v, want %#v", out, in)
	}
	if SessionToken(out) != "u-1" {
		t.Errorf("SessionToken() = %q", SessionToken(out))
	}
}

func TestDecodeEventRejectsForeignMessages(t *testing.T) {
	for _, msg := range []string{"hello", `{"other":1}`, `[1,2]`} {
		if _, err := DecodeEvent([]byte(msg)); !errors.Is(err, ErrNotEnvelope) {
			t.Errorf("DecodeEvent(%s) error = %v, want ErrNotEnvelope", msg, err)
		}
	}
	if _, err := DecodeEvent([]byte(`{"runeGameEvent":{"type":"NOPE"}}`)); err == nil {
		t.Error("DecodeEvent() should fail for unknown event types")
	}
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected Command
	}{
		{"play", `{"runeGameCommand":{"type":"playGame","gamePlayUuid":"p1"}}`,
			Command{Type: CommandPlayGame, GamePlayUUID: "p1"}},
		{"pause", `{"runeGameCommand":{"type":"pauseGame"}}`, Command{Type: CommandPauseGame}},
		{"restart", `{"runeGameCommand":{"type":"restartGame","gamePlayUuid":"p2"}}`,
			Command{Type: CommandRestartGame, GamePlayUUID: "p2"}},
		{"request score", `{"runeGameCommand":{"type":"requestScore"}}`, Command{Type: CommandRequestScore}},
		{"legacy start", `{"runeGameCommand":{"type":"_startGame"}}`, Command{Type: CommandLegacyStartGame}},
		{"legacy resume", `{"runeGameCommand":{"type":"_resumeGame"}}`, Command{Type: CommandLegacyResumeGame}},
		{"non string token", `{"runeGameCommand":{"type":"playGame","gamePlayUuid":5}}`,
			Command{Type: CommandPlayGame}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tt.message))
			if err != nil {
				t.Fatalf("DecodeCommand() failed: %v", err)
			}
			if cmd != tt.expected {
				t.Errorf("DecodeCommand() = %#v, want %#v", cmd, tt.expected)
			}
		})
	}
}

func TestDecodeCommandIgnoresForeignMessages(t *testing.T) {
	for _, msg := range []string{
		"Some random command",
		"",
		`42`,
		`{"type":"playGame"}`,
		`{"somethingElse":{"type":"playGame"}}`,
	} {
		if _, err := DecodeCommand([]byte(msg)); !errors.Is(err, ErrNotEnvelope) {
			t.Errorf("DecodeCommand(%q) error = %v, want ErrNotEnvelope", msg, err)
		}
	}
}

func TestDecodeCommandUnknownTag(t *testing.T) {
	tests := []struct {
		message string
		tag     CommandType
	}{
		{`{"runeGameCommand":{"type":"danceGame"}}`, "danceGame"},
		{`{"runeGameCommand":"bad command"}`, "bad command"},
		{`{"runeGameCommand":{}}`, ""},
		{`{"runeGameCommand":null}`, ""},
	}

	for _, tt := range tests {
		cmd, err := DecodeCommand([]byte(tt.message))
		var unknown *UnknownCommandError
		if !errors.As(err, &unknown) {
			t.Fatalf("DecodeCommand(%s) error = %v, want *UnknownCommandError", tt.message, err)
		}
		if unknown.Type != tt.tag || cmd.Type != tt.tag {
			t.Errorf("DecodeCommand(%s) tag = %q/%q, want %q", tt.message, unknown.Type, cmd.Type, tt.tag)
		}
	}

	err := &UnknownCommandError{Type: "bad command"}
	if err.Error() != "Received incorrect message: bad command" {
		t.Errorf("Error() = %q", err.Error())
	}
	err = &UnknownCommandError{}
	if err.Error() != "Received incorrect message: <missing>" {
		t.Errorf("Error() = %q for an empty tag", err.Error())
	}
}

func TestEncodeCommandRoundTrip(t *testing.T) {
	data, err := EncodeCommand(Command{Type: CommandRestartGame, GamePlayUUID: "g"})
	if err != nil {
		t.Fatalf("EncodeCommand() failed: %v", err)
	}
	if string(data) != `{"runeGameCommand":{"type":"restartGame","gamePlayUuid":"g"}}` {
		t.Errorf("EncodeCommand() = %s", data)
	}
}

func TestCommandTypeClassification(t *testing.T) {
	if !CommandLegacyPauseGame.Legacy() || CommandPauseGame.Legacy() {
		t.Error("Legacy() misclassified pause tags")
	}
	if CommandType("nope").Known() {
		t.Error("Known() accepted an unknown tag")
	}
}
