// Package ui provides the interactive prompts.
// Items are piped to fzf via stdin as plain text; no shell-interpreted
// preview strings or commands with remote data. Without fzf the prompts
// fall back to survey.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("selection cancelled")

// Navigable is implemented by list entries that move between pages
// instead of naming a real item.
type Navigable interface {
	IsNavigation() bool
}

var (
	// selector backs Choose; tests replace it.
	selector = Select
	out      io.Writer = os.Stderr
)

// Choose offers items and returns the index of the chosen one. When
// exactly one item is not a navigation entry it is picked without asking.
func Choose[T fmt.Stringer](prompt string, items []T, fuzzyMode bool) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	real := lo.Filter(lo.Range(len(items)), func(i, _ int) bool {
		nav, ok := any(items[i]).(Navigable)
		return !ok || !nav.IsNavigation()
	})
	if len(real) == 1 {
		idx := real[0]
		fmt.Fprintln(out, Info(prompt+": "+items[idx].String()))
		return idx, nil
	}

	labels := lo.Map(items, func(it T, _ int) string { return it.String() })
	return selector(prompt, labels, fuzzyMode)
}

// Select presents items and returns the selected item's index. fzf is
// used when it is on PATH. fuzzyMode switches between fuzzy and exact
// matching of the typed filter.
func Select(prompt string, items []string, fuzzyMode bool) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return surveySelect(prompt, items, fuzzyMode)
	}
	return fzfSelect(fzfPath, prompt, items, fuzzyMode)
}

// fzfArgs builds the fzf command line. Only safe arguments, no preview.
func fzfArgs(prompt string, fuzzyMode bool) []string {
	args := []string{
		"--prompt", prompt + " > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..", // Display from second field onward (hide index)
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	}
	if !fuzzyMode {
		args = append(args, "--exact")
	}
	return args
}

func fzfSelect(fzfPath, prompt string, items []string, fuzzyMode bool) (int, error) {
	// Prepare numbered items for reliable index extraction
	var input strings.Builder
	for i, item := range items {
		fmt.Fprintf(&input, "%d\t%s\n", i, oneLine(item))
	}

	cmd := exec.Command(fzfPath, fzfArgs(prompt, fuzzyMode)...)
	cmd.Stdin = strings.NewReader(input.String())
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return -1, ErrCancelled
		}
		return -1, fmt.Errorf("fzf failed: %w", err)
	}

	return parseSelection(stdout.String(), len(items))
}

// parseSelection extracts the index from fzf's "<index>\t<label>" output.
func parseSelection(output string, n int) (int, error) {
	selected := strings.TrimSpace(output)
	if selected == "" {
		return -1, fmt.Errorf("no selection made")
	}

	field, _, _ := strings.Cut(selected, "\t")
	var idx int
	if _, err := fmt.Sscanf(field, "%d", &idx); err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}
	if idx < 0 || idx >= n {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}
	return idx, nil
}

func surveySelect(prompt string, items []string, fuzzyMode bool) (int, error) {
	var idx int
	q := &survey.Select{
		Message:  prompt,
		Options:  lo.Map(items, func(s string, _ int) string { return oneLine(s) }),
		PageSize: 15,
	}
	err := survey.AskOne(q, &idx, survey.WithFilter(filterFunc(fuzzyMode)), stdio())
	if err != nil {
		return -1, surveyErr(err)
	}
	return idx, nil
}

// filterFunc matches typed text against an option, fuzzily or as a
// case-insensitive substring.
// stdio draws prompts on stderr so stdout stays free for --json output.
func stdio() survey.AskOpt {
	return survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)
}

func filterFunc(fuzzyMode bool) func(filter, value string, index int) bool {
	return func(filter, value string, _ int) bool {
		if filter == "" {
			return true
		}
		if fuzzyMode {
			return fuzzy.MatchFold(filter, value)
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
	}
}

// Confirm asks the user a yes/no question.
func Confirm(prompt string) (bool, error) {
	if _, err := exec.LookPath("fzf"); err == nil {
		idx, err := Select(prompt, []string{"Yes", "No"}, false)
		if err != nil {
			return false, err
		}
		return idx == 0, nil
	}

	var yes bool
	if err := survey.AskOne(&survey.Confirm{Message: prompt, Default: true}, &yes, stdio()); err != nil {
		return false, surveyErr(err)
	}
	return yes, nil
}

// Input prompts the user for free-text input.
func Input(prompt string) (string, error) {
	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		var answer string
		if err := survey.AskOne(&survey.Input{Message: prompt}, &answer, stdio()); err != nil {
			return "", surveyErr(err)
		}
		return requireInput(answer)
	}

	cmd := exec.Command(fzfPath,
		"--prompt", prompt+" > ",
		"--height", "10%",
		"--reverse",
		"--print-query",
		"--no-info",
	)

	cmd.Stdin = strings.NewReader("")
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// fzf exits 1 when using --print-query with no match, which is expected
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return "", ErrCancelled
		}
	}

	query, _, _ := strings.Cut(stdout.String(), "\n")
	return requireInput(query)
}

func requireInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("no input provided")
	}
	return s, nil
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCancelled
	}
	return err
}

// oneLine keeps fzf's line-based protocol intact.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
