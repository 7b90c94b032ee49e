package pipeline

import (
	"regexp"
	"strings"
)

// Intent selects which parts of the scene analysis the spoken answer covers.
type Intent string

const (
	IntentFull      Intent = "full"
	IntentObjects   Intent = "objects"
	IntentVehicles  Intent = "vehicles"
	IntentDepth     Intent = "depth"
	IntentTranslate Intent = "translate"
)

type intentRule struct {
	intent  Intent
	pattern *regexp.Regexp
}

// 顺序即优先级，第一个匹配的规则生效
var intentRules = []intentRule{
	{IntentFull, regexp.MustCompile(`(what|describe|tell me|scene|around|front|see)`)},
	{IntentObjects, regexp.MustCompile(`(object|thing|item|what.*(there|here))`)},
	{IntentVehicles, regexp.MustCompile(`(car|truck|bus|vehicle|traffic|road|street)`)},
	{IntentDepth, regexp.MustCompile(`(safe|walk|forward|close|near|far|step|distance|obstacle|move)`)},
	{IntentTranslate, regexp.MustCompile(`(translat|hindi|french|spanish|german|chinese)`)},
}

// Classify maps a free-text query to an intent. Empty or unmatched queries are IntentFull.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return IntentFull
	}
	for _, rule := range intentRules {
		if rule.pattern.MatchString(q) {
			return rule.intent
		}
	}
	return IntentFull
}

func (i Intent) describesScene() bool {
	return i == IntentFull || i == IntentObjects || i == IntentVehicles
}

func (i Intent) describesDepth() bool {
	return i == IntentFull || i == IntentDepth
}
