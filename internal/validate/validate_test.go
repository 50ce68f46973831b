package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAllRequiredAndRules(t *testing.T) {
	values := map[string]string{}
	scope := NewScope(
		Field{Name: "receiver", Required: true, Value: func() string { return values["receiver"] }},
		Field{Name: "amount", Required: true, Rules: []RuleFunc{PositiveAmount}, Value: func() string { return values["amount"] }},
		Field{Name: "note", Required: false, Value: func() string { return values["note"] }},
	)
	engine := New()

	tests := []struct {
		name    string
		values  map[string]string
		ok      bool
		errored []string
	}{
		{"all empty", map[string]string{}, false, []string{"receiver", "amount"}},
		{"whitespace is empty", map[string]string{"receiver": "   ", "amount": "\t"}, false, []string{"receiver", "amount"}},
		{"rule failure", map[string]string{"receiver": "AC-1", "amount": "abc"}, false, []string{"amount"}},
		{"zero amount", map[string]string{"receiver": "AC-1", "amount": "0"}, false, []string{"amount"}},
		{"negative amount", map[string]string{"receiver": "AC-1", "amount": "-5"}, false, []string{"amount"}},
		{"valid", map[string]string{"receiver": "AC-1", "amount": "10.50"}, true, nil},
		{"optional stays empty", map[string]string{"receiver": "AC-1", "amount": "1"}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k := range values {
				delete(values, k)
			}
			for k, v := range tt.values {
				values[k] = v
			}
			ok := engine.ValidateAll(scope)
			require.Equal(t, tt.ok, ok)
			errs := engine.Errors()
			require.Len(t, errs, len(tt.errored))
			for _, name := range tt.errored {
				require.Contains(t, errs, name)
				require.True(t, engine.FieldProps(name).Invalid)
			}
		})
	}
}

func TestValidateAllReplacesErrorSetWholesale(t *testing.T) {
	value := ""
	scope := NewScope(Field{Name: "pin", Required: true, Value: func() string { return value }})
	engine := New()

	require.False(t, engine.ValidateAll(scope))
	require.Equal(t, RequiredMessage, engine.FieldProps("pin").Message)

	value = "1234"
	require.True(t, engine.ValidateAll(scope))
	require.False(t, engine.FieldProps("pin").Invalid, "stale error must not survive a clean pass")
}

func TestValidateAllIsIdempotent(t *testing.T) {
	value := ""
	scope := NewScope(Field{Name: "name", Required: true, Value: func() string { return value }})
	engine := New()

	first := engine.ValidateAll(scope)
	firstErrs := engine.Errors()
	second := engine.ValidateAll(scope)
	require.Equal(t, first, second)
	require.Equal(t, firstErrs, engine.Errors())
}

func TestValidateAllNilScope(t *testing.T) {
	engine := New()
	engine.SetErrors(map[string]string{"left": "over"})
	require.True(t, engine.ValidateAll(nil), "nothing to validate yields no errors")
	require.Empty(t, engine.Errors())
}

func TestValidateAllSkipsNamelessFields(t *testing.T) {
	scope := NewScope(
		Field{Name: "", Required: true, Value: func() string { return "" }},
		Field{Name: "real", Required: true, Value: func() string { return "x" }},
	)
	engine := New()
	require.True(t, engine.ValidateAll(scope))
	require.Empty(t, engine.Errors())
}

func TestRulesRunOnlyOnNonEmptyValues(t *testing.T) {
	called := false
	rule := func(string) string { called = true; return "boom" }
	scope := NewScope(Field{Name: "opt", Required: false, Rules: []RuleFunc{rule}, Value: func() string { return "  " }})
	engine := New()
	require.True(t, engine.ValidateAll(scope))
	require.False(t, called, "rules must not run on empty values")
}

func TestSetErrorsOverlay(t *testing.T) {
	engine := New()
	engine.SetErrors(map[string]string{
		"account_number": "Already taken",
		"":               "dropped",
		"empty":          "",
	})
	require.Equal(t, FieldProps{Invalid: true, Message: "Already taken"}, engine.FieldProps("account_number"))
	require.Len(t, engine.Errors(), 1)

	engine.Clear()
	require.Empty(t, engine.Errors())
}

func TestOneOf(t *testing.T) {
	rule := OneOf("ET", "OOD")
	require.Empty(t, rule("ET"))
	require.NotEmpty(t, rule("ltd"))
}

func TestDecimalRule(t *testing.T) {
	require.Empty(t, Decimal("10.25"))
	require.Empty(t, Decimal("-3"))
	require.NotEmpty(t, Decimal("ten"))
}
