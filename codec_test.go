package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"t":"move","d":{"x":1.5,"y":0,"z":-2,"rotation":0.3,"forwardSpeed":1,"rotationSpeed":-0.5,"verticalVelocity":0,"deltaTime":0.016,"slideDirection":1.2}}`))
	require.NoError(t, err)
	move, ok := req.(MoveRequest)
	require.True(t, ok, "got %T", req)
	assert.Equal(t, 1.5, move.X)
	assert.Equal(t, -0.5, move.RotationSpeed)
	require.NotNil(t, move.SlideDirection)
	assert.Equal(t, 1.2, *move.SlideDirection)

	req, err = DecodeRequest([]byte(`{"t":"shoot","d":{"x":1,"y":1,"z":2,"dx":0,"dz":-1}}`))
	require.NoError(t, err)
	assert.Equal(t, ShootRequest{X: 1, Y: 1, Z: 2, DirZ: -1}, req)

	req, err = DecodeRequest([]byte(`{"t":"join"}`))
	require.NoError(t, err)
	assert.Equal(t, JoinRequest{}, req)

	req, err = DecodeRequest([]byte(`{"t":"join","d":{"name":"Ace"}}`))
	require.NoError(t, err)
	assert.Equal(t, JoinRequest{Name: "Ace"}, req)

	req, err = DecodeRequest([]byte(`{"t":"pause"}`))
	require.NoError(t, err)
	assert.Equal(t, PauseRequest{}, req)
}

func TestDecodeRequestErrors(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{"t":`,
		"move no body":  `{"t":"move"}`,
		"move bad type": `{"t":"move","d":{"x":"far"}}`,
		"shoot null":    `{"t":"shoot","d":null}`,
	} {
		_, err := DecodeRequest([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformed, name)
	}

	_, err := DecodeRequest([]byte(`{"t":"teleport","d":{}}`))
	assert.True(t, errors.Is(err, ErrUnknownMessage))
	assert.True(t, IsProtocolError(err))
}

func TestInitRoundTrip(t *testing.T) {
	slide := 0.25
	msg := InitMsg{
		SelfID:  3,
		MapSize: 100,
		Tick:    42,
		Players: []PlayerState{{ID: 3, Name: "Ace", Color: "#fff", X: 1, Z: -2, Health: 100, SlideDirection: &slide}},
		Projectiles: []ProjectileState{
			{ID: "7", Owner: 3, X: 1, Y: 1, Z: 1, DirZ: -1},
		},
		Obstacles: []Obstacle{{Name: "ramp", W: 4, D: 6, H: 2, Rotation: 0.5, Type: ObstaclePyramid, Inverted: true}},
	}

	data, err := EncodeInit(msg)
	require.NoError(t, err)
	got, err := DecodeInit(data)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}
