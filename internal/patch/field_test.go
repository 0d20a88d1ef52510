package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectPatch struct {
	Name        Field[string] `json:"name"`
	Description Field[string] `json:"description"`
	StatusID    Field[uint]   `json:"statusId"`
}

func TestField_DistinguishesAbsentNullAndValue(t *testing.T) {
	var p projectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description": null, "statusId": 2}`), &p))

	assert.False(t, p.Name.Set)
	assert.False(t, p.Name.Present())

	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)
	assert.False(t, p.Description.Present())

	assert.True(t, p.StatusID.Present())
	assert.Equal(t, uint(2), p.StatusID.Value)
}

func TestField_EmptyStringIsPresent(t *testing.T) {
	var p projectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description": ""}`), &p))

	assert.True(t, p.Description.Present())
	assert.Equal(t, "", p.Description.Value)
}

func TestField_TypeMismatch(t *testing.T) {
	var p projectPatch
	err := json.Unmarshal([]byte(`{"statusId": "done"}`), &p)
	assert.Error(t, err)
}

func TestField_Helpers(t *testing.T) {
	assert.Equal(t, "x", Of("x").ValueOr("y"))
	assert.Equal(t, "y", Null[string]().ValueOr("y"))
	assert.Equal(t, "y", Field[string]{}.ValueOr("y"))

	out, err := json.Marshal(projectPatch{Name: Of("Alpha"), Description: Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alpha","description":null,"statusId":null}`, string(out))
}
