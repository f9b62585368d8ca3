package agent

import "strings"

// Identifiers of the fixed worker pool.
const (
	DispatcherID            = "dispatcher"
	SpecialistCodingID      = "specialist_coding"
	SpecialistDesignID      = "specialist_design"
	SpecialistResearchID    = "specialist_research"
	SpecialistWritingID     = "specialist_writing"
	UtilityDataProcessingID = "utility_data_processing"
	UtilityFormattingID     = "utility_formatting"
	UtilityCommunicationID  = "utility_communication"
)

// routingRule binds a keyword set to the worker that handles it.
type routingRule struct {
	workerID string
	keywords []string
}

// routingRules is evaluated top to bottom; the first keyword hit wins.
//
// The ordering is a deliberate design choice and part of the routing
// contract: coding, design, research, writing, data processing,
// communication. Some keywords overlap across sets ("process" also
// appears in free text about research); the priority order resolves the
// ambiguity and must not be reordered without treating it as a behavior
// change.
var routingRules = []routingRule{
	{SpecialistCodingID, []string{"code", "program", "develop", "build"}},
	{SpecialistDesignID, []string{"design", "ui", "visual", "interface"}},
	{SpecialistResearchID, []string{"research", "analyze", "study", "investigate"}},
	{SpecialistWritingID, []string{"write", "document", "text", "content"}},
	{UtilityDataProcessingID, []string{"format", "process", "convert"}},
	{UtilityCommunicationID, []string{"communicate", "send", "notify"}},
}

// Route maps a directive to the identifier of the worker that should
// process it. Matching is a case-insensitive substring check against the
// rule table above. Directives matching no keyword set fall back to the
// data-processing utility, so in practice ok is always true; the boolean
// stays in the contract for future rule sets without a fallback.
func Route(directive string) (workerID string, ok bool) {
	normalized := strings.ToLower(directive)

	for _, rule := range routingRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.workerID, true
			}
		}
	}

	return UtilityDataProcessingID, true
}
