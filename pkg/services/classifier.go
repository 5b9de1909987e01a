package services

import (
	"regexp"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

// Pattern groups shared by several rules. They match normalized questions
// (lowercase, no ?!. punctuation, single spaces).
var (
	sensitiveTerms = regexp.MustCompile(`\b(password|passwd|pwd|credential|secret|key|token|auth|login)\b`)
	locationTerms  = regexp.MustCompile(`\b(where|location|path|stored|hosted)\b`)
	countTerms     = regexp.MustCompile(`\b(how many|count|number of|total|how much)\b`)
	tableTerms     = regexp.MustCompile(`\b(tables?)\b`)
	databaseTerms  = regexp.MustCompile(`\b(database|db|data)\b`)
	fromIdentifier = regexp.MustCompile(`\bfrom\s+[\w.]+`)

	listTablesPhrasings = []*regexp.Regexp{
		regexp.MustCompile(`\b(what are|list|show|display|tell me|give me|which are).*(the )?(tables?|table names)\b`),
		regexp.MustCompile(`\b(tables?).*(included|available|present|exist|are there|in|my|current|this)\b`),
		regexp.MustCompile(`\b(all |available |existing )?(tables?)\s+(in|on|for|present)\b`),
	}

	databaseStatsPhrasing = regexp.MustCompile(`\b(database|db).*(size|statistics|stats|info|details)\b`)

	serverInfoPhrasings = []*regexp.Regexp{
		regexp.MustCompile(`\b(server|sql server).*(name|version|info|details)\b`),
		regexp.MustCompile(`\bwhat.*(server)\b`),
	}

	connectionInfoPhrasing = regexp.MustCompile(`\b(connection|connected to).*(details|info|information)\b`)

	databaseNamePhrasings = []*regexp.Regexp{
		regexp.MustCompile(`\b(what|which|tell me|show me|give me).*(database|db).*(name|called)\b`),
		regexp.MustCompile(`\b(name).*(database|db)\b`),
		regexp.MustCompile(`\b(current|present|connected|my|this).*(database|db)\b`),
		regexp.MustCompile(`\bwhat.*(database|db)\b`),
		regexp.MustCompile(`\bwhich.*(database|db)\b`),
	}
	databaseNameExclusions = regexp.MustCompile(`\b(table|tables|count|how many|list|show tables|statistics|stats|where|location)\b`)
)

// ClassificationRule maps a predicate over the normalized question to an intent.
type ClassificationRule struct {
	Name   string
	Intent models.Intent
	Match  func(q string) bool
}

// DefaultRules is the priority-ordered rule list. The first matching rule
// wins, so a question claimed by an earlier rule never reaches a later one.
// Sensitive terms come first and override everything else.
var DefaultRules = []ClassificationRule{
	{
		Name:   "sensitive_terms",
		Intent: models.IntentSecurityBlock,
		Match:  sensitiveTerms.MatchString,
	},
	{
		Name:   "table_location",
		Intent: models.IntentTableLocation,
		Match: func(q string) bool {
			return locationTerms.MatchString(q) && tableTerms.MatchString(q)
		},
	},
	{
		Name:   "database_location",
		Intent: models.IntentDatabaseLocation,
		Match: func(q string) bool {
			return locationTerms.MatchString(q) && databaseTerms.MatchString(q)
		},
	},
	{
		Name:   "list_tables",
		Intent: models.IntentListTables,
		Match: func(q string) bool {
			return anyMatch(listTablesPhrasings, q) &&
				!countTerms.MatchString(q) &&
				!locationTerms.MatchString(q) &&
				!fromIdentifier.MatchString(q)
		},
	},
	{
		Name:   "count_tables",
		Intent: models.IntentCountTables,
		Match: func(q string) bool {
			return countTerms.MatchString(q) && tableTerms.MatchString(q)
		},
	},
	{
		Name:   "database_stats",
		Intent: models.IntentDatabaseStats,
		Match:  databaseStatsPhrasing.MatchString,
	},
	{
		Name:   "server_info",
		Intent: models.IntentServerInfo,
		Match: func(q string) bool {
			return anyMatch(serverInfoPhrasings, q)
		},
	},
	{
		Name:   "connection_info",
		Intent: models.IntentConnectionInfo,
		Match:  connectionInfoPhrasing.MatchString,
	},
	{
		Name:   "database_name",
		Intent: models.IntentDatabaseName,
		Match: func(q string) bool {
			return anyMatch(databaseNamePhrasings, q) && !databaseNameExclusions.MatchString(q)
		},
	},
}

func anyMatch(patterns []*regexp.Regexp, q string) bool {
	for _, p := range patterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

// Classifier resolves a question to at most one meta intent.
type Classifier struct {
	rules []ClassificationRule
}

// NewClassifier returns a classifier over rules, or DefaultRules when none are given.
func NewClassifier(rules ...ClassificationRule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the intent of the first rule matching the normalized
// question, or IntentNone when the question needs generated SQL.
func (c *Classifier) Classify(q models.Question) models.Intent {
	intent, _ := c.ClassifyWithRule(q)
	return intent
}

// ClassifyWithRule is Classify that also reports the name of the matching rule.
func (c *Classifier) ClassifyWithRule(q models.Question) (models.Intent, string) {
	for _, rule := range c.rules {
		if rule.Match(q.Normalized) {
			return rule.Intent, rule.Name
		}
	}
	return models.IntentNone, ""
}
