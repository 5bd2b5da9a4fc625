// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// relevantKeyword is the marker the keyword policy looks for.
const relevantKeyword = "relevant"

// IsRelevant applies the relevance policy to an oracle response. An empty
// (or whitespace-only) response is never relevant.
//
// Note that the keyword policy is a substring match, so a response such as
// "irrelevant" also passes it.
func IsRelevant(policy types.RelevancePolicy, response string) bool {
	if strings.TrimSpace(response) == "" {
		return false
	}
	switch policy {
	case types.RelevanceKeyword:
		return strings.Contains(strings.ToLower(response), relevantKeyword)
	default:
		return true
	}
}
