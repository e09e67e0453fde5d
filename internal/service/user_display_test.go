package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDisplay_Name(t *testing.T) {
	d, err := NewUserDisplay("name || preferred_username || email", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		user json.RawMessage
		want string
	}{
		{name: "absent", user: nil, want: ""},
		{name: "name", user: json.RawMessage(`{"name":" Ada Lovelace "}`), want: "Ada Lovelace"},
		{name: "falls back", user: json.RawMessage(`{"email":"ada@example.test"}`), want: "ada@example.test"},
		{name: "nothing matches", user: json.RawMessage(`{"sub":"123"}`), want: ""},
		{name: "not json", user: json.RawMessage(`{`), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Name(tt.user))
		})
	}
}

func TestUserDisplay_NonStringResult(t *testing.T) {
	d, err := NewUserDisplay("id", nil)
	require.NoError(t, err)
	assert.Equal(t, "42", d.Name(json.RawMessage(`{"id":42}`)))
}

func TestNewUserDisplay_InvalidExpression(t *testing.T) {
	_, err := NewUserDisplay("name ||", nil)
	require.Error(t, err)

	_, err = NewUserDisplay("   ", nil)
	require.Error(t, err)
}

func TestUserDisplay_NilIsEmpty(t *testing.T) {
	var d *UserDisplay
	assert.Equal(t, "", d.Name(json.RawMessage(`{"name":"Ada"}`)))
}
