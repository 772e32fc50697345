// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance bounds how far a typo may be from a known name
// before "did you mean" stays quiet.
const maxSuggestionDistance = 3

// closestMatch returns the candidate with the smallest edit distance to
// typed, or "" when none is within maxSuggestionDistance. Ties go to the
// earliest candidate.
func closestMatch(typed string, candidates []string) string {
	match := ""
	matchDistance := maxSuggestionDistance + 1
	for _, candidate := range candidates {
		if distance := levenshtein(typed, candidate); distance < matchDistance {
			match, matchDistance = candidate, distance
		}
	}
	return match
}

func subcommandNames(commands []*Command) []string {
	names := make([]string, len(commands))
	for i, command := range commands {
		names[i] = command.Name
	}
	return names
}

// unknownFlag returns the name of the first flag in args that flagSet
// does not define, without its dashes or any "=value" suffix.
func unknownFlag(args []string, flagSet *pflag.FlagSet) (string, bool) {
	for _, arg := range args {
		if arg == "--" {
			return "", false
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if flagSet.Lookup(name) == nil {
			return name, true
		}
	}
	return "", false
}

// suggestFlag returns "--<name>" for the defined flag closest to the
// first unknown flag in args, or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	typed, found := unknownFlag(args, flagSet)
	if !found {
		return ""
	}
	var defined []string
	flagSet.VisitAll(func(flag *pflag.Flag) {
		defined = append(defined, flag.Name)
	})
	if match := closestMatch(typed, defined); match != "" {
		return "--" + match
	}
	return ""
}

// levenshtein is the edit distance between a and b counted in runes.
func levenshtein(a, b string) int {
	source, target := []rune(a), []rune(b)
	if len(source) > len(target) {
		source, target = target, source
	}

	row := make([]int, len(source)+1)
	for i := range row {
		row[i] = i
	}
	for j, targetRune := range target {
		diagonal := row[0]
		row[0] = j + 1
		for i, sourceRune := range source {
			substitution := diagonal
			if sourceRune != targetRune {
				substitution++
			}
			diagonal = row[i+1]
			row[i+1] = min(row[i+1]+1, row[i]+1, substitution)
		}
	}
	return row[len(source)]
}
