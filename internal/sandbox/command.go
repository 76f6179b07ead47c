package sandbox

import (
	"fmt"
	"strings"

	jayErrors "github.com/jaycli/jay/internal/errors"

	"github.com/google/shlex"
)

// Privilege-escalation programs blocked anywhere on a command line.
var escalationVerbs = map[string]struct{}{
	"sudo": {},
	"doas": {},
	"su":   {},
}

// Package managers whose mutation verbs are blocked.
var packageManagers = map[string]struct{}{
	"apt":     {},
	"apt-get": {},
	"dnf":     {},
	"yum":     {},
	"pacman":  {},
	"apk":     {},
	"zypper":  {},
	"brew":    {},
}

var packageMutationVerbs = map[string]struct{}{
	"install":      {},
	"remove":       {},
	"purge":        {},
	"upgrade":      {},
	"uninstall":    {},
	"autoremove":   {},
	"dist-upgrade": {},
}

// ClassifyCommand inspects a shell command line and returns a sandbox
// violation when it contains a privilege-escalation invocation or a
// system-package mutation. The check scans every token, so chaining the
// blocked verb behind "&&", ";" or a pipe does not evade it. All other
// commands are allowed; they remain timeout-bounded by RunProcess.
func (s *Sandbox) ClassifyCommand(cmdLine string) error {
	split, err := shlex.Split(cmdLine)
	if err != nil {
		// Unbalanced quotes. Fall back to whitespace fields so a malformed
		// line cannot smuggle a blocked verb past the classifier.
		split = strings.Fields(cmdLine)
	}

	// Quoted arguments can themselves be command lines (sh -c "...").
	// Flatten them so the scan sees every word.
	var tokens []string
	for _, tok := range split {
		if strings.ContainsAny(tok, " \t") {
			tokens = append(tokens, strings.Fields(tok)...)
			continue
		}
		tokens = append(tokens, tok)
	}

	for i, raw := range tokens {
		token := normalizeToken(raw)
		if token == "" {
			continue
		}

		if _, ok := escalationVerbs[token]; ok {
			return jayErrors.SandboxViolation(
				fmt.Sprintf("command contains privilege escalation %q", token))
		}

		if _, ok := packageManagers[token]; ok {
			for _, rest := range tokens[i+1:] {
				verb := normalizeToken(rest)
				if _, blocked := packageMutationVerbs[verb]; blocked {
					return jayErrors.SandboxViolation(
						fmt.Sprintf("command mutates system packages: %s %s", token, verb))
				}
			}
		}
	}

	return nil
}

// normalizeToken strips a leading path so "/usr/bin/sudo" matches "sudo".
func normalizeToken(token string) string {
	token = strings.TrimSpace(strings.ToLower(token))
	if idx := strings.LastIndex(token, "/"); idx >= 0 {
		token = token[idx+1:]
	}
	return token
}
