package headwater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsPreservesInsertionOrder(t *testing.T) {
	s := NewSettings()
	s.Set("B", "1")
	s.Set("A", "2")
	s.Set("C", "3")

	assert.Equal(t, []string{"B", "A", "C"}, s.Keys())
	assert.Equal(t, 3, s.Len())
}

func TestSettingsOverrideKeepsPosition(t *testing.T) {
	s := NewSettings()
	s.Set("HOST", "localhost")
	s.Set("PORT", "5432")
	s.Set("HOST", "remotehost")

	assert.Equal(t, []string{"HOST", "PORT"}, s.Keys())
	assert.Equal(t, "remotehost", s.Get("HOST"))
}

func TestSettingsKindDefaultsToMySQL(t *testing.T) {
	s := NewSettings()
	assert.Equal(t, KindMySQL, s.Kind())
}

func TestSettingsKindNormalizesCase(t *testing.T) {
	s := NewSettings()
	s.Set(KeyBackendKind, "postgresql")
	assert.Equal(t, KindPostgreSQL, s.Kind())
}

func TestSettingsLookup(t *testing.T) {
	s := NewSettings()
	s.Set(KeyHost, "db.example.com")

	v, ok := s.Lookup(KeyHost)
	require.True(t, ok)
	assert.Equal(t, "db.example.com", v)

	_, ok = s.Lookup(KeyPort)
	assert.False(t, ok)
}

func TestSettingsStringMasksPassword(t *testing.T) {
	s := NewSettings()
	s.Set(KeyUsername, "alice")
	s.Set(KeyPassword, "hunter2")

	str := s.String()
	assert.Contains(t, str, "alice")
	assert.NotContains(t, str, "hunter2")
	assert.Contains(t, str, "****")
}
