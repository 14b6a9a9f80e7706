package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandEnvelopeKey tags inbound host commands.
const CommandEnvelopeKey = "runeGameCommand"

// ErrNotEnvelope is returned for messages that do not match the envelope shape.
// Such messages belong to someone else on the channel and must be ignored.
var ErrNotEnvelope = errors.New("protocol: not an envelope")

// CommandType is the tag of an inbound host command.
type CommandType string

const (
	CommandPlayGame     CommandType = "playGame"
	CommandPauseGame    CommandType = "pauseGame"
	CommandRestartGame  CommandType = "restartGame"
	CommandRequestScore CommandType = "requestScore"

	// Tags sent by hosts built against the older protocol.
	CommandLegacyStartGame    CommandType = "_startGame"
	CommandLegacyPauseGame    CommandType = "_pauseGame"
	CommandLegacyResumeGame   CommandType = "_resumeGame"
	CommandLegacyRequestScore CommandType = "_requestScore"
)

// Known reports whether the tag is part of the protocol.
func (t CommandType) Known() bool {
	switch t {
	case CommandPlayGame, CommandPauseGame, CommandRestartGame, CommandRequestScore,
		CommandLegacyStartGame, CommandLegacyPauseGame, CommandLegacyResumeGame, CommandLegacyRequestScore:
		return true
	}
	return false
}

// Legacy reports whether the tag belongs to the older protocol.
func (t CommandType) Legacy() bool {
	switch t {
	case CommandLegacyStartGame, CommandLegacyPauseGame, CommandLegacyResumeGame, CommandLegacyRequestScore:
		return true
	}
	return false
}

// Command is an inbound host instruction.
type Command struct {
	Type         CommandType `json:"type"`
	GamePlayUUID string      `json:"gamePlayUuid,omitempty"`
}

// UnknownCommandError is returned for a well-formed envelope whose tag is not
// part of the protocol.
type UnknownCommandError struct {
	Type CommandType
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Received incorrect message: %s", e.Type.Label())
}

// MissingTag stands in for an empty command tag in diagnostics.
const MissingTag = "<missing>"

// Label returns the tag for use in messages, or MissingTag when it is empty.
func (t CommandType) Label() string {
	if t == "" {
		return MissingTag
	}
	return string(t)
}

// EncodeCommand wraps a command in the inbound envelope.
func EncodeCommand(c Command) ([]byte, error) {
	data, err := json.Marshal(map[string]Command{CommandEnvelopeKey: c})
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode command %s: %w", c.Type, err)
	}
	return data, nil
}

// DecodeCommand parses an enveloped command.
//
// It returns ErrNotEnvelope when data is not a JSON object carrying the
// command key, and *UnknownCommandError when the envelope is well formed but
// the payload is not a recognized command. In the latter case
// the returned Command still carries the offending tag.
func DecodeCommand(data []byte) (Command, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return Command{}, ErrNotEnvelope
	}
	body, ok := env[CommandEnvelopeKey]
	if !ok {
		return Command{}, ErrNotEnvelope
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		// The envelope matched but the payload is not a command object.
		var tag string
		if json.Unmarshal(body, &tag) != nil {
			tag = string(body)
		}
		cmd := Command{Type: CommandType(tag)}
		return cmd, &UnknownCommandError{Type: cmd.Type}
	}

	var cmd Command
	if typ, ok := raw["type"]; ok {
		if err := json.Unmarshal(typ, &cmd.Type); err != nil {
			// A non-string tag is still an unrecognized command.
			cmd.Type = CommandType(string(typ))
		}
	}
	if uuid, ok := raw["gamePlayUuid"]; ok {
		// Token is opaque; anything but a string is dropped.
		_ = json.Unmarshal(uuid, &cmd.GamePlayUUID) //nolint:errcheck
	}

	if !cmd.Type.Known() {
		return cmd, &UnknownCommandError{Type: cmd.Type}
	}
	return cmd, nil
}
