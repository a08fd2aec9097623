package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownMessage is returned by DecodeRequest for unrecognised types.
var ErrUnknownMessage = errors.New("unknown message type")

// DecodeRequest parses one inbound text frame into a Request.
func DecodeRequest(raw []byte) (Request, error) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.T {
	case MsgJoin:
		return decodePayload[JoinRequest](env, true)
	case MsgMove:
		return decodePayload[MoveRequest](env, false)
	case MsgShoot:
		return decodePayload[ShootRequest](env, false)
	case MsgPause:
		return PauseRequest{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.T)
}

func decodePayload[T Request](env InEnvelope, optional bool) (Request, error) {
	var out T
	if len(env.D) == 0 || string(env.D) == "null" {
		if optional {
			return out, nil
		}
		return nil, fmt.Errorf("%w: empty payload for %q", ErrMalformed, env.T)
	}
	if err := json.Unmarshal(env.D, &out); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, env.T, err)
	}
	return out, nil
}

// EncodeInit encodes the full-state snapshot for a binary frame.
func EncodeInit(msg InitMsg) ([]byte, error) {
	return msgpack.Marshal(&msg)
}

// DecodeInit is the inverse of EncodeInit.
func DecodeInit(data []byte) (InitMsg, error) {
	var msg InitMsg
	err := msgpack.Unmarshal(data, &msg)
	return msg, err
}
