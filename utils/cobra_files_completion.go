package utils

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// CompleteFilesByExtension suggests directories and files ending in one of
// extensions
func CompleteFilesByExtension(extensions []string) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		suggestions, err := completePath(toComplete, extensions)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return suggestions, cobra.ShellCompDirectiveNoFileComp
	}
}

// CompleteClasspath completes the last entry of a path-list value such as
// lib/a.jar:lib/b.jar:classes/
func CompleteClasspath(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	head := ""
	last := toComplete
	if i := strings.LastIndexByte(toComplete, os.PathListSeparator); i >= 0 {
		head, last = toComplete[:i+1], toComplete[i+1:]
	}

	suggestions, err := completePath(last, []string{".jar", ".zip"})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	for i, s := range suggestions {
		suggestions[i] = head + s
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completePath(toComplete string, extensions []string) ([]string, error) {
	dir := filepath.Dir(toComplete)
	prefix := filepath.Base(toComplete)

	// No separator means we're completing in the current directory
	if !strings.ContainsRune(toComplete, filepath.Separator) {
		dir = "."
		prefix = toComplete
	}
	if strings.HasSuffix(toComplete, string(filepath.Separator)) {
		dir = toComplete
		prefix = ""
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	for _, file := range files {
		name := file.Name()
		if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}

		suggestion := name
		if dir != "." {
			suggestion = filepath.Join(dir, name)
		}

		if file.IsDir() {
			suggestions = append(suggestions, suggestion+string(filepath.Separator))
		} else if hasExtension(name, extensions) {
			suggestions = append(suggestions, suggestion)
		}
	}

	slices.Sort(suggestions)
	return suggestions, nil
}

func hasExtension(filename string, extensions []string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
