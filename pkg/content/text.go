package content

import "strings"

// Text flattens resolved content into plain text. Block nodes are separated
// by blank lines; hidden content is dropped. Used for transcripts, card
// titles and anywhere markup is not wanted.
func Text(items []any) string {
	var b strings.Builder
	writeText(&b, items, true)
	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, items []any, block bool) {
	for _, item := range items {
		switch v := item.(type) {
		case string:
			b.WriteString(v)
		case *Node:
			writeNode(b, v, block)
		case map[string]any:
			// Content that round-tripped through JSON loses its node type.
			writeDecodedNode(b, v, block)
		case []any:
			writeText(b, v, block)
		default:
			// Numbers and other scalars from inserts.
			b.WriteString(formatValue(v))
		}
	}
}

func writeNode(b *strings.Builder, n *Node, block bool) {
	switch n.Type {
	case TypeHidden:
		return
	case TypeLineBreak:
		b.WriteString("\n")
		return
	}
	writeText(b, n.Content, false)
	if block {
		b.WriteString("\n\n")
	} else {
		b.WriteString(" ")
	}
}

func writeDecodedNode(b *strings.Builder, m map[string]any, block bool) {
	typ, _ := m["type"].(string)
	switch typ {
	case TypeHidden:
		return
	case TypeLineBreak:
		b.WriteString("\n")
		return
	}
	if child, ok := m["content"].([]any); ok {
		writeText(b, child, false)
	} else if s, ok := m["content"].(string); ok {
		b.WriteString(s)
	}
	if block {
		b.WriteString("\n\n")
	} else {
		b.WriteString(" ")
	}
}
