package utils

import (
	"fmt"
	"strings"

	goeval "github.com/edisonguo/govaluate"
)

// BandExpressions holds derived attribute expressions over the sampled
// band fields, e.g. ndvi=(b4-b3)/(b4+b3). Variables must be output
// field names of the run.
type BandExpressions struct {
	ExprText    []string
	ExprNames   []string
	Expressions []*goeval.EvaluableExpression
	VarList     []string
	ExprVarRef  [][]string
}

// ParseBandExpressions compiles name=expression pairs and validates
// every variable token against the run's output field names.
func ParseBandExpressions(exprs []string, fieldNames []string) (*BandExpressions, error) {
	if len(exprs) == 0 {
		return &BandExpressions{}, nil
	}

	validVars := make(map[string]struct{})
	for _, name := range fieldNames {
		validVars[name] = struct{}{}
	}

	bandExpr := &BandExpressions{}
	varLookup := make(map[string]struct{})
	for _, exprStr := range exprs {
		eq := strings.Index(exprStr, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: expression %q must have the form name=expression", ErrInvalidOption, exprStr)
		}
		name := strings.TrimSpace(exprStr[:eq])
		if err := ValidateFieldName(name); err != nil {
			return nil, err
		}

		expr, err := goeval.NewEvaluableExpression(strings.TrimSpace(exprStr[eq+1:]))
		if err != nil {
			return nil, fmt.Errorf("%w: expression %q: %v", ErrInvalidOption, exprStr, err)
		}

		var exprVars []string
		for _, token := range expr.Tokens() {
			if token.Kind != goeval.VARIABLE {
				continue
			}
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: variable token '%v' failed to cast string", ErrInvalidOption, token.Value)
			}
			if _, found := validVars[varName]; !found {
				return nil, fmt.Errorf("%w: expression variable %q is not a sampled field, valid fields are %v", ErrInvalidOption, varName, fieldNames)
			}
			exprVars = append(exprVars, varName)
			if _, found := varLookup[varName]; !found {
				varLookup[varName] = struct{}{}
				bandExpr.VarList = append(bandExpr.VarList, varName)
			}
		}

		bandExpr.ExprText = append(bandExpr.ExprText, exprStr)
		bandExpr.ExprNames = append(bandExpr.ExprNames, name)
		bandExpr.Expressions = append(bandExpr.Expressions, expr)
		bandExpr.ExprVarRef = append(bandExpr.ExprVarRef, exprVars)
	}

	return bandExpr, nil
}

// Evaluate computes one expression against a point's sampled values.
// The second return is false when any referenced field is nodata for
// the point or the expression result is not numeric.
func (be *BandExpressions) Evaluate(idx int, values map[string]float64, noData map[string]float64) (float64, bool, error) {
	params := make(map[string]interface{})
	for _, varName := range be.ExprVarRef[idx] {
		value, found := values[varName]
		if !found {
			return 0, false, fmt.Errorf("expression %q: field %s has no value", be.ExprText[idx], varName)
		}
		if nd, hasND := noData[varName]; hasND && value == nd {
			return 0, false, nil
		}
		params[varName] = value
	}

	result, err := be.Expressions[idx].Evaluate(params)
	if err != nil {
		return 0, false, fmt.Errorf("expression %q: %v", be.ExprText[idx], err)
	}

	value, ok := result.(float64)
	if !ok {
		return 0, false, nil
	}
	return value, true, nil
}
