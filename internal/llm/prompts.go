package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// FileKind names one generated artifact. The value is the repository path the
// artifact is published under.
type FileKind string

const (
	KindHTML   FileKind = "index.html"
	KindCSS    FileKind = "styles.css"
	KindJS     FileKind = "script.js"
	KindReadme FileKind = "README.md"
)

// SiteKinds lists the artifacts that make up the generated front-end, in
// publish order.
var SiteKinds = []FileKind{KindHTML, KindCSS, KindJS}

const siteSystemPrompt = "You are a senior front-end engineer. Given a short brief, produce one file of a " +
	"minimal but complete front-end project. Output only the raw file content. " +
	"Do NOT output JSON and do NOT wrap the content in markdown fences. Keep the file small and self-contained."

var kindInstructions = map[FileKind]string{
	KindHTML: "Produce index.html. It must link styles.css with a <link> tag and load script.js with a <script> tag.",
	KindCSS:  "Produce styles.css with the page styling. Assume the markup from a minimal index.html for the same brief.",
	KindJS:   "Produce script.js with the page behavior. Assume the markup from a minimal index.html for the same brief.",
}

// FilePrompt builds the deterministic per-file prompt for a task brief.
func FilePrompt(kind FileKind, taskName, brief string) (system, user string) {
	return siteSystemPrompt, fmt.Sprintf("Task: %s\nBrief: %s\n%s", taskName, brief, kindInstructions[kind])
}

const readmeSystemPrompt = "You are an assistant that writes concise README files for small demo repos."

// ReadmePrompt builds the prompt for the repository README.
func ReadmePrompt(brief string) (system, user string) {
	user = fmt.Sprintf("Write a short professional README describing: %s\nInclude usage instructions and the files created (index.html, styles.css, script.js).", brief)
	return readmeSystemPrompt, user
}

const captchaSystemPrompt = "You are an assistant that extracts short textual captchas from base64 images. " +
	"Reply only with the text or ERROR:UNREADABLE."

// CaptchaPrompt builds the prompt for the image-to-text solver endpoint.
func CaptchaPrompt(imageB64 string) (system, user string) {
	user = "Below is a base64-encoded image. Try to read any textual characters. " +
		"If unreadable, reply EXACTLY: ERROR:UNREADABLE.\n\n" +
		"IMAGE_BASE64_START\n" + imageB64 + "\nIMAGE_BASE64_END\n\n" +
		"Reply ONLY with the extracted text."
	return captchaSystemPrompt, user
}

var (
	fenceOpen  = regexp.MustCompile("^```[a-zA-Z0-9_-]*\\s*\n?")
	fenceClose = regexp.MustCompile("\n?```\\s*$")
)

// CleanArtifact strips a single wrapping markdown fence and surrounding
// whitespace. Models occasionally fence output despite instructions.
func CleanArtifact(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = fenceOpen.ReplaceAllString(s, "")
		s = fenceClose.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
