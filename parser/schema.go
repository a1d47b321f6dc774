package parser

import (
	"regexp"
	"strings"
)

var reCreateTable = regexp.MustCompile(
	"(?is)^(?:\\s*(?:--[^\\n]*\\n|/\\*.*?\\*/))*\\s*CREATE\\s+(?:TEMP(?:ORARY)?\\s+)?TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?" +
		"(?:[\"`\\[]?\\w+[\"`\\]]?\\.)?[\"`\\[]?(\\w+)[\"`\\]]?",
)

// DeclaredTables returns the names of the tables a script creates, in script order, without duplicates.
func DeclaredTables(script string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, st := range SplitStatements(script) {
		m := reCreateTable.FindStringSubmatch(st.SQL)
		if m == nil {
			continue
		}
		key := strings.ToLower(m[1])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
