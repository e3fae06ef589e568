// Package classify assigns a semantic category to a settled clipboard
// payload. Categories are decided once, at acceptance time, by ordered
// heuristics: image and file payloads win outright, text is then probed as
// url, log, prompt and code before falling back to plain text. The order is
// load-bearing (a short question that happens to contain braces must land
// in prompts, not code), so new heuristics go at the end, not the front.
package classify

import (
	"regexp"
	"strings"
)

// Category is the semantic class of a clipboard entry. Immutable once
// assigned.
type Category string

const (
	CategoryText   Category = "text"
	CategoryURL    Category = "url"
	CategoryCode   Category = "code"
	CategoryLog    Category = "log"
	CategoryPrompt Category = "prompt"
	CategoryImage  Category = "image"
	CategoryFile   Category = "file"
)

// Valid reports whether c is one of the seven known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryURL, CategoryCode, CategoryLog,
		CategoryPrompt, CategoryImage, CategoryFile:
		return true
	}
	return false
}

// Payload is a settled clipboard state as read back after the settle delay.
// At most one of Image, Files and Text is expected to be meaningful; when
// several are present the precedence below decides.
type Payload struct {
	Text  string
	Image []byte
	Files []string
}

// Classify assigns exactly one category to a payload. Precedence, first
// match wins: image, file, url, log, prompt, code, text.
func Classify(p Payload) Category {
	if IsImage(p.Image) {
		return CategoryImage
	}
	if len(p.Files) > 0 {
		return CategoryFile
	}
	return classifyText(p.Text)
}

func classifyText(s string) Category {
	switch {
	case isURL(s):
		return CategoryURL
	case looksLikeLog(s):
		return CategoryLog
	case looksLikePrompt(s):
		return CategoryPrompt
	case looksLikeCode(s):
		return CategoryCode
	default:
		return CategoryText
	}
}

// uriSchemes are the prefixes recognized as URLs. Prefix match only; the
// rest of the string is not validated.
var uriSchemes = []string{
	"http://", "https://", "ftp://", "ftps://", "file://",
	"ssh://", "git://", "mailto:", "ws://", "wss://",
}

func isURL(s string) bool {
	t := strings.TrimSpace(s)
	lower := strings.ToLower(t)
	for _, scheme := range uriSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// Log detection: examine the first logSampleLines lines and accept when at
// least logLineRatio of them match one of the line patterns. Requires two
// lines minimum so a lone timestamp-looking string stays text.
const (
	logSampleLines = 5
	logLineRatio   = 0.4
)

var logLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`),             // ISO timestamp
	regexp.MustCompile(`^\d{2}:\d{2}:\d{2}`),                                 // bare time prefix
	regexp.MustCompile(`\[(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL)\]`),    // bracketed level
	regexp.MustCompile(`\b(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL|PANIC)\b`),
	regexp.MustCompile(`^\s+at\s+\S+`),                                       // java/js stack frame
	regexp.MustCompile(`^\s*(goroutine \d+|Traceback \(most recent)`),        // go/python traces
	regexp.MustCompile(`^(kernel|systemd|sshd|cron)(\[\d+\])?:`),             // syslog prefixes
}

func looksLikeLog(s string) bool {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) < 2 {
		return false
	}
	sample := lines
	if len(sample) > logSampleLines {
		sample = sample[:logSampleLines]
	}
	matched := 0
	for _, line := range sample {
		for _, pat := range logLinePatterns {
			if pat.MatchString(line) {
				matched++
				break
			}
		}
	}
	return float64(matched) >= logLineRatio*float64(len(sample))
}

// Prompt detection: count independent signals and accept at promptMinSignals.
const promptMinSignals = 3

var interrogatives = []string{
	"how", "what", "why", "when", "where", "who", "which",
	"can", "could", "would", "should", "is", "are", "do", "does",
	"please", "write", "create", "make", "help",
}

var instructiveVerbs = []string{
	"explain", "implement", "fix", "write", "create", "generate",
	"refactor", "describe", "summarize", "translate", "convert",
}

var promptPhrases = []string{
	"step by step", "step-by-step", "for example", "in detail",
}

func looksLikePrompt(s string) bool {
	t := strings.TrimSpace(s)
	lower := strings.ToLower(t)
	words := strings.Fields(t)

	signals := 0
	if strings.Contains(t, "?") {
		signals++
	}
	if len(words) > 0 {
		first := strings.Trim(strings.ToLower(words[0]), ",.:;!?")
		for _, w := range interrogatives {
			if first == w {
				signals++
				break
			}
		}
	}
	for _, v := range instructiveVerbs {
		if strings.Contains(lower, v) {
			signals++
			break
		}
	}
	for _, ph := range promptPhrases {
		if strings.Contains(lower, ph) {
			signals++
			break
		}
	}
	if n := len(words); n >= 10 && n <= 200 {
		signals++
	}
	if n := len(t); n >= 50 && n <= 1000 {
		signals++
	}
	return signals >= promptMinSignals
}

func looksLikeCode(s string) bool {
	if !strings.Contains(s, "\n") {
		return false
	}
	if strings.Contains(s, "{") && strings.Contains(s, "}") {
		return true
	}
	return strings.Contains(s, "[") && strings.Contains(s, "]")
}
