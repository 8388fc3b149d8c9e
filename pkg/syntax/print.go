package syntax

// Print renders the tree with every recorded edit applied.
func (t *Tree) Print() string {
	pr := &printer{src: t.Source}
	pr.node(t.Root)

	for _, stmt := range t.appended {
		if len(pr.out) > 0 && pr.out[len(pr.out)-1] != '\n' {
			pr.out = append(pr.out, '\n')
		}

		pr.out = append(pr.out, stmt...)
		pr.out = append(pr.out, '\n')
	}

	return string(pr.out)
}

// PrintNode renders a single subtree with its edits applied.
func (t *Tree) PrintNode(n *Node) string {
	pr := &printer{src: t.Source}
	pr.node(n)

	return string(pr.out)
}

type printer struct {
	src []byte
	out []byte
}

func (p *printer) node(n *Node) {
	if n.replaced {
		p.out = append(p.out, n.replacement...)
		p.out = append(p.out, n.suffix...)

		return
	}

	cursor := n.Start

	for i, c := range n.Children {
		if c.Start < cursor {
			continue
		}

		p.out = append(p.out, p.src[cursor:c.Start]...)

		if c.removed {
			cursor = p.skipRemoved(n, i)

			continue
		}

		p.node(c)
		cursor = c.End
	}

	p.out = append(p.out, p.src[cursor:n.End]...)
	p.out = append(p.out, n.suffix...)
}

// skipRemoved drops the i-th child of n from the output and tidies the
// whitespace around the hole. A semicolon left dangling by the removal goes
// with it, and a removed line never leaves two blank lines behind. It returns
// the new source cursor.
func (p *printer) skipRemoved(n *Node, i int) int {
	c := n.Children[i]
	cursor := c.End

	if i+1 < len(n.Children) {
		if next := n.Children[i+1]; next.Type == ";" && !next.Named && allBlank(p.src[c.End:next.Start]) {
			cursor = next.End
		}
	}

	if p.lineStartsAt(c.Start) {
		end := cursor
		for end < n.End && isBlank(p.src[end]) {
			end++
		}

		if end == len(p.src) || (end < n.End && p.src[end] == '\n') {
			p.trimBlanks()

			if end < n.End {
				end++
			}

			if p.endsWithBlankLine() {
				end = p.skipBlankLines(end, n.End)
			}

			return end
		}
	}

	if len(p.out) == 0 || isSpace(p.out[len(p.out)-1]) {
		for cursor < n.End && isBlank(p.src[cursor]) {
			cursor++
		}
	}

	if cursor == n.End || (cursor < len(p.src) && isCloser(p.src[cursor])) {
		p.trimBlanks()
	}

	return cursor
}

// endsWithBlankLine reports whether the output is empty or already ends in
// an empty line.
func (p *printer) endsWithBlankLine() bool {
	l := len(p.out)

	return l == 0 || (l >= 2 && p.out[l-1] == '\n' && p.out[l-2] == '\n')
}

// skipBlankLines advances from, a line start, past whole blank lines.
func (p *printer) skipBlankLines(from, limit int) int {
	for from < limit {
		end := from
		for end < limit && isBlank(p.src[end]) {
			end++
		}

		if end >= limit || p.src[end] != '\n' {
			break
		}

		from = end + 1
	}

	return from
}

// lineStartsAt reports whether only blanks precede offset on its line.
func (p *printer) lineStartsAt(offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		switch {
		case p.src[i] == '\n':
			return true
		case !isBlank(p.src[i]):
			return false
		}
	}

	return true
}

func (p *printer) trimBlanks() {
	for len(p.out) > 0 && isBlank(p.out[len(p.out)-1]) {
		p.out = p.out[:len(p.out)-1]
	}
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func allBlank(b []byte) bool {
	for _, c := range b {
		if !isSpace(c) {
			return false
		}
	}

	return true
}

func isSpace(b byte) bool {
	return isBlank(b) || b == '\n' || b == '\r'
}

func isCloser(b byte) bool {
	switch b {
	case ')', ']', '}', ';', ',', ':', '>', '=':
		return true
	}

	return false
}
