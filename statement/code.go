package statement

import (
	"fmt"
	"strings"
)

// ScriptMarker flags submitted text as a raw session script. Marked text
// is submitted verbatim (marker removed, common indentation stripped)
// instead of being wrapped as SQL.
const ScriptMarker = "--pyspark"

// StripCommentHeader removes a comment block sitting at the very start
// of the SQL text. Host tools prepend such headers to every statement
// and the remote wrapper chokes on them.
func StripCommentHeader(sql string) string {
	if !strings.HasPrefix(sql, "/*") {
		return sql
	}
	end := strings.Index(sql, "*/")
	if end < 0 {
		return sql
	}
	rest := sql[end+2:]
	return strings.TrimPrefix(rest, "\n")
}

// BuildCode turns SQL text into the code submitted to the remote
// session. Plain SQL is handed to the session's SQL wrapper helper;
// script-marked text bypasses the wrapper entirely.
func BuildCode(sql string) string {
	if strings.Contains(sql, ScriptMarker) {
		return dedent(strings.ReplaceAll(sql, ScriptMarker, ""))
	}
	return fmt.Sprintf("SqlWrapper2.execute('''%s''')", sql)
}

// dedent strips the whitespace prefix shared by all non-blank lines.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := ""
	first := true
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
	}
	if margin == "" {
		return s
	}

	for i, line := range lines {
		if strings.TrimLeft(line, " \t") == "" {
			continue
		}
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
