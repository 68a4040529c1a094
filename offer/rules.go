package offer

import (
	"strings"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// MatchesRule reports whether every configured condition of a rule holds
// for a context. Absent conditions are always satisfied.
func MatchesRule(rule types.Rule, context types.OfferContext) bool {
	store := context.GetString("store")
	title := strings.ToLower(context.GetString("title"))

	if len(rule.Conditions.StoreIn) > 0 {
		found := false
		for _, candidate := range rule.Conditions.StoreIn {
			if candidate == store {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(rule.Conditions.TitleContains) > 0 {
		found := false
		for _, keyword := range rule.Conditions.TitleContains {
			if strings.Contains(title, strings.ToLower(keyword)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if rule.Conditions.RequiresCoupon && context.GetString("coupon") == "" {
		return false
	}

	return true
}

// ApplyRule executes a rule's actions against the context and the extra
// line list, returning the updated lines. set_fields overwrites context
// fields unconditionally; prepend_lines keeps the listed order at the
// front; append_benefits skips benefits already present.
func ApplyRule(rule types.Rule, context types.OfferContext, lines []string) []string {
	for key, value := range rule.Actions.SetFields {
		context[key] = value
	}

	if len(rule.Actions.PrependLines) > 0 {
		lines = append(append([]string{}, rule.Actions.PrependLines...), lines...)
	}
	lines = append(lines, rule.Actions.AppendLines...)

	if len(rule.Actions.AppendBenefits) > 0 {
		benefits := context.GetStrings("benefits")
		for _, benefit := range rule.Actions.AppendBenefits {
			if !containsString(benefits, benefit) {
				benefits = append(benefits, benefit)
			}
		}
		context["benefits"] = benefits
	}

	return lines
}

// ApplyRules evaluates rules in order against the context. One rule's
// mutations are visible to the condition checks of the rules after it.
func ApplyRules(rules []types.Rule, context types.OfferContext, lines []string) []string {
	for _, rule := range rules {
		if MatchesRule(rule, context) {
			lines = ApplyRule(rule, context, lines)
		}
	}
	return lines
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
