package policy_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexvault/lexvault/internal/policy"
	"github.com/lexvault/lexvault/internal/shared"
)

func testInput() policy.Input {
	return policy.Input{
		User: map[string]any{
			"id":         "u1",
			"role":       "ASSOCIATE",
			"department": "tax",
			"seniority":  3,
		},
		Resource: map[string]any{
			"type":       "document",
			"risk":       "HIGH",
			"team":       []any{"u1", "u7"},
			"department": "tax",
		},
		Environment: map[string]any{
			"channel": "web",
			"hour":    14,
		},
	}
}

func TestParseRejectsUnknownBindings(t *testing.T) {
	_, err := policy.Parse("session.id == 'x'")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = policy.Parse("user.id == 'x' && os.exit")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, cond := range []string{
		"",
		"user.id = 'x'",
		"user.id == 'x' trailing",
		"(user.id == 'x'",
		"user.id == 'unterminated",
		"user..id",
	} {
		_, err := policy.Parse(cond)
		require.ErrorIs(t, err, shared.ErrValidation, "condition %q", cond)
	}
}

func TestExprEval(t *testing.T) {
	in := testInput()

	cases := []struct {
		cond string
		want bool
	}{
		{"user.id == 'u1'", true},
		{"user.id != 'u1'", false},
		{"user.seniority >= 3", true},
		{"user.seniority > 3", false},
		{"environment.hour < 18 && environment.hour >= 9", true},
		{"user.role == 'PARTNER' || user.department == 'tax'", true},
		{"!(resource.risk == 'HIGH')", false},
		{"user.id in resource.team", true},
		{"'u9' in resource.team", false},
		{"environment.channel in ['web', 'mobile']", true},
		{"environment.channel in ['api']", false},
		{"resource.missing == null", true},
		{"resource.missing != null", false},
	}

	for _, tc := range cases {
		expr, err := policy.Parse(tc.cond)
		require.NoError(t, err, "condition %q", tc.cond)
		got, err := expr.Eval(in)
		require.NoError(t, err, "condition %q", tc.cond)
		require.Equal(t, tc.want, got, "condition %q", tc.cond)
	}
}

func TestExprEvalErrors(t *testing.T) {
	in := testInput()

	for _, cond := range []string{
		"resource.nonexistent.deep == 'x'", // traversal through a missing field
		"user.id.length == 2",              // traversal through a scalar
		"user.seniority < 'three'",         // type mismatch
		"user.id && true",                  // non-bool operand
		"user.id in user.seniority",        // membership in a number
	} {
		expr, err := policy.Parse(cond)
		require.NoError(t, err, "condition %q", cond)
		_, evalErr := expr.Eval(in)
		require.Error(t, evalErr, "condition %q", cond)
	}
}

func TestMembershipRequiresList(t *testing.T) {
	// 'in' against a string field must not degrade to substring containment:
	// 'tax' would match a department named 'taxation'. A non-list right-hand
	// side is an eval error, which the evaluator turns into a non-match.
	expr, err := policy.Parse("'tax' in user.department")
	require.NoError(t, err)
	_, evalErr := expr.Eval(testInput())
	require.Error(t, evalErr)

	var buf bytes.Buffer
	eval := policy.NewEvaluator(slog.New(slog.NewTextHandler(&buf, nil)))
	matched := eval.Evaluate(policy.Policy{
		ID:        "substring-in",
		Effect:    policy.EffectAllow,
		Condition: "'tax' in user.department",
	}, testInput())
	require.False(t, matched)
	require.Contains(t, buf.String(), "substring-in")
}

func TestEvaluateFailsClosedToNonMatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	eval := policy.NewEvaluator(logger)

	matched := eval.Evaluate(policy.Policy{
		ID:        "pol-1",
		Effect:    policy.EffectDeny,
		Condition: "resource.nonexistent.deep == 'x'",
	}, testInput())

	require.False(t, matched)
	require.Contains(t, buf.String(), "pol-1")
	require.Contains(t, buf.String(), "failed to evaluate")
}

func TestEvaluateParseFailureLogsAndNonMatches(t *testing.T) {
	var buf bytes.Buffer
	eval := policy.NewEvaluator(slog.New(slog.NewTextHandler(&buf, nil)))

	matched := eval.Evaluate(policy.Policy{ID: "pol-2", Effect: policy.EffectAllow, Condition: "((("}, testInput())
	require.False(t, matched)
	require.Contains(t, buf.String(), "failed to parse")
}

func TestDecideDenyOverrides(t *testing.T) {
	eval := policy.NewEvaluator(nil)
	in := testInput()

	policies := []policy.Policy{
		{ID: "allow-tax", Effect: policy.EffectAllow, Condition: "user.department == 'tax'"},
		{ID: "deny-high-risk", Effect: policy.EffectDeny, Condition: "resource.risk == 'HIGH'"},
	}

	effect, err := eval.Decide(policies, in, policy.EffectAllow)
	require.NoError(t, err)
	require.Equal(t, policy.EffectDeny, effect)

	// Same outcome with the DENY listed first: order is irrelevant.
	effect, err = eval.Decide([]policy.Policy{policies[1], policies[0]}, in, policy.EffectAllow)
	require.NoError(t, err)
	require.Equal(t, policy.EffectDeny, effect)
}

func TestDecideAllowWhenOnlyAllowMatches(t *testing.T) {
	eval := policy.NewEvaluator(nil)

	effect, err := eval.Decide([]policy.Policy{
		{ID: "allow-tax", Effect: policy.EffectAllow, Condition: "user.department == 'tax'"},
		{ID: "deny-api", Effect: policy.EffectDeny, Condition: "environment.channel == 'api'"},
	}, testInput(), policy.EffectDeny)
	require.NoError(t, err)
	require.Equal(t, policy.EffectAllow, effect)
}

func TestDecideDefaultEffect(t *testing.T) {
	eval := policy.NewEvaluator(nil)

	effect, err := eval.Decide(nil, testInput(), policy.EffectDeny)
	require.NoError(t, err)
	require.Equal(t, policy.EffectDeny, effect)

	effect, err = eval.Decide(nil, testInput(), policy.EffectAllow)
	require.NoError(t, err)
	require.Equal(t, policy.EffectAllow, effect)

	_, err = eval.Decide(nil, testInput(), "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDecideRejectsInvalidPolicyEffect(t *testing.T) {
	eval := policy.NewEvaluator(nil)

	_, err := eval.Decide([]policy.Policy{
		{ID: "bad", Effect: "MAYBE", Condition: "user.id == 'u1'"},
	}, testInput(), policy.EffectAllow)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestErroringPolicyDoesNotDenyEverything(t *testing.T) {
	// A broken DENY rule must not block the request: it is a non-match, not a
	// blanket deny.
	var buf bytes.Buffer
	eval := policy.NewEvaluator(slog.New(slog.NewTextHandler(&buf, nil)))

	effect, err := eval.Decide([]policy.Policy{
		{ID: "broken-deny", Effect: policy.EffectDeny, Condition: "resource.meta.flags.sensitive == true"},
		{ID: "allow-tax", Effect: policy.EffectAllow, Condition: "user.department == 'tax'"},
	}, testInput(), policy.EffectDeny)
	require.NoError(t, err)
	require.Equal(t, policy.EffectAllow, effect)
	require.Contains(t, buf.String(), "broken-deny")
}
