package mdp

import (
	"testing"

	"github.com/signalnine/weavetree-go/werrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMdpYAML = `
version: 1
start: s0
states:
  - id: s0
    terminal: false
    actions:
      - id: a0
        outcomes:
          - next: s1
            prob: 0.7
            reward: 1.0
          - next: s0
            prob: 0.3
            reward: 0.0
      - id: a1
        outcomes:
          - next: s2
            prob: 1.0
            reward: -0.2
  - id: s1
    terminal: true
  - id: s2
    terminal: false
    actions: []
`

func TestYAMLParseAndCompileSuccess(t *testing.T) {
	compiled, err := CompileYAMLString(validMdpYAML)
	require.NoError(t, err)

	start := compiled.StartStateKey()
	assert.Equal(t, 3, compiled.StateCount())
	assert.Equal(t, 0, start)

	id, err := compiled.StateID(start)
	require.NoError(t, err)
	assert.Equal(t, "s0", id)
}

func TestValidationFailsForProbabilitySum(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    actions:
      - id: a0
        outcomes:
          - next: s0
            prob: 0.9
            reward: 1.0
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
	var verr *werrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidationFailsForUnknownStateReference(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    actions:
      - id: a0
        outcomes:
          - next: missing
            prob: 1.0
            reward: 1.0
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
	var verr *werrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidationFailsForUnknownStartReference(t *testing.T) {
	yamlDoc := `
start: nope
states:
  - id: s0
    terminal: true
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
}

func TestValidationFailsForDuplicateStateID(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    terminal: true
  - id: s0
    terminal: true
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
}

func TestValidationFailsForTerminalWithActions(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    terminal: true
    actions:
      - id: a0
        outcomes:
          - next: s0
            prob: 1.0
            reward: 0.0
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
}

func TestValidationFailsForEmptyOutcomes(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    actions:
      - id: a0
        outcomes: []
  - id: s1
    terminal: true
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
}

func TestValidationFailsForUnknownNestedField(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    terminal: true
    unexpected_field: 42
`
	_, err := CompileYAMLString(yamlDoc)
	require.Error(t, err)
	var verr *werrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUnknownTopLevelFieldIsIgnored(t *testing.T) {
	yamlDoc := `
author: someone
start: s0
states:
  - id: s0
    terminal: true
`
	_, err := CompileYAMLString(yamlDoc)
	require.NoError(t, err)
}

func TestEmptyActionsOnNonTerminalStateIsAllowed(t *testing.T) {
	yamlDoc := `
start: s0
states:
  - id: s0
    terminal: false
    actions: []
`
	compiled, err := CompileYAMLString(yamlDoc)
	require.NoError(t, err)

	n, err := compiled.NumActions(compiled.StartStateKey())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	terminal, err := compiled.IsTerminal(compiled.StartStateKey())
	require.NoError(t, err)
	assert.False(t, terminal, "compiled state itself is not flagged terminal; search treats it as terminal")
}

func TestStateIDOutOfRangeReturnsDomainError(t *testing.T) {
	compiled, err := CompileYAMLString(validMdpYAML)
	require.NoError(t, err)

	_, err = compiled.StateID(999)
	require.Error(t, err)
	var derr *werrors.DomainError
	require.ErrorAs(t, err, &derr)
}
