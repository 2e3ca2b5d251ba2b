// Package sanitize strips link, image and URL syntax from crawled markdown
// so that only readable text reaches the language model.
package sanitize

import (
	"regexp"
	"strings"
)

// Placeholder is the token Firecrawl leaves where it dropped an inline image.
const Placeholder = "<Base64-Image-Removed>"

// PageSeparator joins the markdown of consecutive pages.
const PageSeparator = "\n\n-------------------------\n\n"

// NoContentMessage replaces cleaned text that came out empty.
const NoContentMessage = "Crawling completed, but no meaningful text was found."

// maxPasses bounds the cleaning loop. Ordinary pages settle in one or two
// passes; text that still changes after that is scrubbed of brackets.
const maxPasses = 8

var (
	bareURLRe = regexp.MustCompile(`(?i)https?://[^\s)]*`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
)

// Sanitize removes images, unwraps links to their text, drops bare URLs and
// the image placeholder, then collapses blank runs and trims. Removing one
// construct can splice another together, so the pass repeats until the text
// stops changing. The result is a fixed point: Sanitize(Sanitize(s)) ==
// Sanitize(s). Every pass is linear in the input.
func Sanitize(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := pass(s)
		if next == s {
			return next
		}
		s = next
	}
	return scrub(s)
}

func pass(s string) string {
	s = unwrapLinks(s)
	s = bareURLRe.ReplaceAllString(s, "")
	s = removeAll(s, Placeholder)
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// scrub finishes text that did not settle within maxPasses. With no
// brackets left no link or image can form again, so one more pass would
// leave it unchanged.
func scrub(s string) string {
	s = strings.NewReplacer("[", "", "]", "").Replace(s)
	s = removeAll(s, Placeholder)
	s = bareURLRe.ReplaceAllString(s, "")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

type openBracket struct {
	at    int // index of '[' in out
	image bool
}

// unwrapLinks replaces [text](target) with text and drops ![alt](target)
// entirely, resolving nested brackets in a single left-to-right scan. A ']'
// that is not followed by "(...)" closes its bracket as plain text.
func unwrapLinks(s string) string {
	if strings.IndexByte(s, '[') < 0 {
		return s
	}

	// closeAt[i] is the index of the first ')' at or after i, or -1.
	closeAt := make([]int, len(s)+1)
	closeAt[len(s)] = -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ')' {
			closeAt[i] = i
		} else {
			closeAt[i] = closeAt[i+1]
		}
	}

	out := make([]byte, 0, len(s))
	dropped := make([]bool, 0, len(s))
	var stack []openBracket

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '[':
			image := len(out) > 0 && out[len(out)-1] == '!'
			stack = append(stack, openBracket{at: len(out), image: image})
		case ']':
			if len(stack) == 0 {
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if i+1 >= len(s) || s[i+1] != '(' || closeAt[i+1] < 0 {
				break
			}
			if top.image {
				out = out[:top.at-1]
				dropped = dropped[:top.at-1]
			} else {
				dropped[top.at] = true
			}
			i = closeAt[i+1]
			continue
		}
		out = append(out, c)
		dropped = append(dropped, false)
	}

	var b strings.Builder
	b.Grow(len(out))
	for i, c := range out {
		if !dropped[i] {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// removeAll deletes every occurrence of tok, including ones formed by an
// earlier deletion, in one scan.
func removeAll(s, tok string) string {
	if !strings.Contains(s, tok) {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if n := len(out) - len(tok); n >= 0 && string(out[n:]) == tok {
			out = out[:n]
		}
	}
	return string(out)
}

// JoinPages concatenates the non-blank page bodies in crawl order.
func JoinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, PageSeparator)
}

// Clean joins and sanitizes crawled pages. An empty result becomes
// NoContentMessage.
func Clean(pages []string) string {
	text := Sanitize(JoinPages(pages))
	if text == "" {
		return NoContentMessage
	}
	return text
}
