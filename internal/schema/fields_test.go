package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID int64 `json:"id"`
}

type hotelRow struct {
	base
	Name     string `json:"name"`
	Visible  bool   `json:"visible,omitempty"`
	internal string
	Ignored  string `json:"-"`
	RoomName string
}

func TestJSONFields(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "visible", "RoomName"}, JSONFields(reflect.TypeOf(hotelRow{})))
	assert.Equal(t, []string{"event", "id"}, JSONFields(reflect.TypeOf(&scopedDelete{})))
	assert.Nil(t, JSONFields(reflect.TypeOf(42)))
}

func TestFieldByJSONName(t *testing.T) {
	row := &hotelRow{base: base{ID: 9}, Name: "Ibis"}

	id, ok := FieldByJSONName(reflect.ValueOf(row), "id")
	require.True(t, ok)
	assert.Equal(t, int64(9), id.Int())

	name, ok := FieldByJSONName(reflect.ValueOf(row), "name")
	require.True(t, ok)
	assert.Equal(t, "Ibis", name.String())

	_, ok = FieldByJSONName(reflect.ValueOf(row), "missing")
	assert.False(t, ok)

	var nilRow *hotelRow
	_, ok = FieldByJSONName(reflect.ValueOf(nilRow), "id")
	assert.False(t, ok)
}

func TestFieldTypeByJSONName(t *testing.T) {
	typ, ok := FieldTypeByJSONName(reflect.TypeOf(hotelRow{}), "id")
	require.True(t, ok)
	assert.True(t, IsInteger(typ))

	typ, ok = FieldTypeByJSONName(reflect.TypeOf(hotelRow{}), "name")
	require.True(t, ok)
	assert.False(t, IsInteger(typ))
}
