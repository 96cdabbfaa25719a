package template

import "strings"

type segment struct {
	text        string // literal text, or the full token for placeholders
	name        string // trimmed property name for placeholders
	placeholder bool
}

func (r *Resolver) parse(s string) []segment {
	if segs, ok := r.cache.Get(s); ok {
		return segs
	}
	segs := parse(s)
	r.cache.Add(s, segs)
	return segs
}

// parse splits s into literal and placeholder segments. An unterminated
// "{{" and an empty "{{ }}" are literal text.
func parse(s string) []segment {
	var segs []segment
	rest := s
	for {
		open := strings.Index(rest, openDelim)
		if open < 0 {
			break
		}
		end := strings.Index(rest[open+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		tokenEnd := open + len(openDelim) + end + len(closeDelim)
		token := rest[open:tokenEnd]
		name := strings.TrimSpace(token[len(openDelim) : len(token)-len(closeDelim)])
		if name == "" || strings.Contains(name, openDelim) {
			segs = appendLiteral(segs, rest[:tokenEnd])
			rest = rest[tokenEnd:]
			continue
		}
		if open > 0 {
			segs = appendLiteral(segs, rest[:open])
		}
		segs = append(segs, segment{text: token, name: name, placeholder: true})
		rest = rest[tokenEnd:]
	}
	if rest != "" {
		segs = appendLiteral(segs, rest)
	}
	return segs
}

func appendLiteral(segs []segment, text string) []segment {
	if n := len(segs); n > 0 && !segs[n-1].placeholder {
		segs[n-1].text += text
		return segs
	}
	return append(segs, segment{text: text})
}
