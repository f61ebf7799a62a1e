package kube

import (
	"strings"

	pferrs "github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
)

// ShellQuote wraps s in single quotes, escaping any embedded single quote as
// '\'' (close quote, escaped quote, reopen quote) — the standard POSIX
// technique for passing an arbitrary string as one shell word.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// SedExpr builds the `s/pattern/replace/g` expression for patchFile's
// in-place text substitution. pattern and replace must not contain a
// literal "/", the sed delimiter: such input is rejected with errs.BadStep
// rather than escaped.
func SedExpr(pattern, replace string) (string, error) {
	if strings.Contains(pattern, "/") {
		return "", pferrs.NewBadStep("patchFile", "pattern")
	}
	if strings.Contains(replace, "/") {
		return "", pferrs.NewBadStep("patchFile", "replace")
	}
	return "s/" + pattern + "/" + replace + "/g", nil
}
