// Package prompt implements the operator-facing console prompts. All input
// and output go through injected reader/writer pairs so the prompts are
// testable without a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// RunMode is the operator's choice of privilege context for the selected
// upgrades.
type RunMode int

const (
	RunCurrentSession RunMode = iota
	RunElevated
)

func (m RunMode) String() string {
	if m == RunElevated {
		return "elevated"
	}
	return "current session"
}

// Prompter reads operator answers line by line. Reads block indefinitely;
// the tool is interactive by design.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (p *Prompter) readLine() string {
	if !p.in.Scan() {
		return ""
	}
	return p.in.Text()
}

// Selection asks which of the listed candidates to run and returns 1-based
// indices. Empty input means skip. Malformed tokens degrade to a smaller
// selection with a warning, never to an error.
func (p *Prompter) Selection(count int) []int {
	fmt.Fprintf(p.out, "\nSelect upgrades to run (e.g. 1,3 or 2-5 or all; empty to skip): ")
	return ParseSelection(p.readLine(), count, p.warn)
}

// RunMode asks whether the selection runs in the current session or
// elevated. Current session is the default.
func (p *Prompter) RunMode() RunMode {
	fmt.Fprintf(p.out, "Run in the [c]urrent session or [e]levated? [C/e]: ")
	answer := strings.ToLower(strings.TrimSpace(p.readLine()))
	switch answer {
	case "e", "elevated":
		return RunElevated
	default:
		return RunCurrentSession
	}
}

// Confirm asks a yes/no question with the given default.
func (p *Prompter) Confirm(question string, def bool) bool {
	hint := "[Y/n]"
	if !def {
		hint = "[y/N]"
	}
	fmt.Fprintf(p.out, "%s %s: ", question, hint)

	answer := strings.ToLower(strings.TrimSpace(p.readLine()))
	switch answer {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Pause blocks until the operator presses enter, so the window contents
// survive long enough to be read.
func (p *Prompter) Pause() {
	fmt.Fprintf(p.out, "\nPress Enter to exit...")
	p.readLine()
}

func (p *Prompter) warn(format string, args ...any) {
	fmt.Fprintf(p.out, "  warning: "+format+"\n", args...)
}

var rangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ParseSelection parses free-form selection input into a deduplicated,
// first-seen-ordered list of 1-based indices in [1, count].
//
//	""        -> nothing selected
//	"all"     -> every index
//	"1,3 5"   -> {1,3,5}
//	"2-4,9"   -> {2,3,4} plus 9 when in range
//
// Invalid or out-of-range tokens are dropped with a warning; a reversed
// range is dropped entirely.
func ParseSelection(input string, count int, warn func(format string, args ...any)) []int {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	tokens := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(tokens) == 0 {
		return nil
	}

	if len(tokens) == 1 && strings.EqualFold(tokens[0], "all") {
		all := make([]int, count)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}

	var selected []int
	seen := make(map[int]bool)
	add := func(idx int) {
		if idx < 1 || idx > count {
			warn("index %d is out of range (1-%d)", idx, count)
			return
		}
		if !seen[idx] {
			seen[idx] = true
			selected = append(selected, idx)
		}
	}

	for _, token := range tokens {
		if m := rangePattern.FindStringSubmatch(token); m != nil {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			if end < start {
				warn("ignoring reversed range %q", token)
				continue
			}
			for i := start; i <= end; i++ {
				add(i)
			}
			continue
		}

		idx, err := strconv.Atoi(token)
		if err != nil {
			warn("ignoring %q: not a number or range", token)
			continue
		}
		add(idx)
	}

	return selected
}
