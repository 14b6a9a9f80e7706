// Package protocol defines the messages exchanged between a game and its host:
// inbound commands and outbound events, together with their JSON envelopes.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventEnvelopeKey tags outbound messages so hosts can tell SDK events apart
// from unrelated traffic on the same channel.
const EventEnvelopeKey = "runeGameEvent"

// EventType names an outbound event.
type EventType string

const (
	EventInit     EventType = "INIT"
	EventScore    EventType = "SCORE"
	EventGameOver EventType = "GAME_OVER"
	EventErr      EventType = "ERR"
	EventWarning  EventType = "WARNING"
)

// Event is an outbound message from the game to the host.
type Event interface {
	Type() EventType
	hostEvent()
}

// InitEvent announces that the game finished initialization.
type InitEvent struct {
	Version string `json:"version"`
}

func (InitEvent) Type() EventType { return EventInit }
func (InitEvent) hostEvent()      {}

// ScoreEvent reports the current score of a play session.
type ScoreEvent struct {
	GamePlayUUID    string `json:"gamePlayUuid"`
	Score           int    `json:"score"`
	ChallengeNumber int    `json:"challengeNumber"`
}

func (ScoreEvent) Type() EventType { return EventScore }
func (ScoreEvent) hostEvent()      {}

// GameOverEvent reports the final score of a play session.
type GameOverEvent struct {
	GamePlayUUID    string `json:"gamePlayUuid"`
	Score           int    `json:"score"`
	ChallengeNumber int    `json:"challengeNumber"`
}

func (GameOverEvent) Type() EventType { return EventGameOver }
func (GameOverEvent) hostEvent()      {}

// ErrEvent reports a fatal protocol violation. The session is inert afterwards.
type ErrEvent struct {
	GamePlayUUID string `json:"gamePlayUuid"`
	ErrMsg       string `json:"errMsg"`
}

func (ErrEvent) Type() EventType { return EventErr }
func (ErrEvent) hostEvent()      {}

// WarningEvent reports a command the current state ignored.
type WarningEvent struct {
	GamePlayUUID string `json:"gamePlayUuid"`
	Msg          string `json:"msg"`
}

func (WarningEvent) Type() EventType { return EventWarning }
func (WarningEvent) hostEvent()      {}

// MarshalEvent encodes an event as a flat JSON object carrying a "type" field.
func MarshalEvent(e Event) ([]byte, error) {
	if e == nil {
		return nil, errors.New("protocol: nil event")
	}
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s event: %w", e.Type(), err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s event: %w", e.Type(), err)
	}
	typ, _ := json.Marshal(e.Type())
	fields["type"] = typ

	return json.Marshal(fields)
}

// EncodeEvent wraps an event in the outbound envelope.
func EncodeEvent(e Event) ([]byte, error) {
	body, err := MarshalEvent(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{EventEnvelopeKey: body})
}

// DecodeEvent parses an enveloped event. Messages that are not event envelopes
// return ErrNotEnvelope.
func DecodeEvent(data []byte) (Event, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrNotEnvelope
	}
	body, ok := env[EventEnvelopeKey]
	if !ok {
		return nil, ErrNotEnvelope
	}
	return UnmarshalEvent(body)
}

// UnmarshalEvent parses a flat event object produced by MarshalEvent.
func UnmarshalEvent(body []byte) (Event, error) {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("protocol: malformed event: %w", err)
	}

	var (
		evt Event
		err error
	)
	switch head.Type {
	case EventInit:
		var e InitEvent
		err = json.Unmarshal(body, &e)
		evt = e
	case EventScore:
		var e ScoreEvent
		err = json.Unmarshal(body, &e)
		evt = e
	case EventGameOver:
		var e GameOverEvent
		err = json.Unmarshal(body, &e)
		evt = e
	case EventErr:
		var e ErrEvent
		err = json.Unmarshal(body, &e)
		evt = e
	case EventWarning:
		var e WarningEvent
		err = json.Unmarshal(body, &e)
		evt = e
	default:
		return nil, fmt.Errorf("protocol: unknown event type %q", head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("protocol: malformed %s event: %w", head.Type, err)
	}
	return evt, nil
}

// SessionToken returns the play session identifier carried by an event, if any.
func SessionToken(e Event) string {
	switch v := e.(type) {
	case ScoreEvent:
		return v.GamePlayUUID
	case GameOverEvent:
		return v.GamePlayUUID
	case ErrEvent:
		return v.GamePlayUUID
	case WarningEvent:
		return v.GamePlayUUID
	default:
		return ""
	}
}
