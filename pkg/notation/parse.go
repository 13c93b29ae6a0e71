package notation

import (
	"strconv"
	"strings"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Parse parses a notation string. On failure it returns a NOTATION_SYNTAX
// error carrying the offending fragment and never a partial document.
func Parse(text string) (*Document, error) {
	if err := errors.ValidateNotationInput(text); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	sections, err := splitTop(text, '$')
	if err != nil {
		return nil, err
	}
	if len(sections) < 4 || len(sections) > 5 {
		return nil, errors.Syntax(clip(text), "expected 4 sections separated by '$', got %d", len(sections))
	}

	doc := &Document{}
	if len(sections) == 5 {
		switch v := strings.TrimSpace(sections[4]); v {
		case "":
		case Version2:
			doc.Version = Version2
		default:
			return nil, errors.Syntax(v, "unsupported version trailer")
		}
	}

	if err := parsePolymers(doc, sections[0]); err != nil {
		return nil, err
	}
	if err := parseConnections(doc, sections[1]); err != nil {
		return nil, err
	}
	if err := parsePairs(doc, sections[2]); err != nil {
		return nil, err
	}
	if err := parseAnnotations(doc, sections[3]); err != nil {
		return nil, err
	}
	return doc, nil
}

func parsePolymers(doc *Document, section string) error {
	if strings.TrimSpace(section) == "" {
		return errors.Syntax(section, "no polymers")
	}
	parts, err := splitTop(section, '|')
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		p, err := parsePolymer(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		if seen[p.ID] {
			return errors.Syntax(p.ID, "duplicate polymer id")
		}
		seen[p.ID] = true
		doc.Polymers = append(doc.Polymers, p)
	}
	return nil
}

func parsePolymer(s string) (Polymer, error) {
	open := strings.IndexByte(s, '{')
	if open <= 0 || !strings.HasSuffix(s, "}") {
		return Polymer{}, errors.Syntax(clip(s), "polymer must be written as ID{...}")
	}
	id := s[:open]
	typ, err := monomer.ParsePolymer(id)
	if err != nil {
		return Polymer{}, errors.Syntax(id, "invalid polymer id")
	}
	body := s[open+1 : len(s)-1]
	if body == "" {
		return Polymer{}, errors.Syntax(clip(s), "empty polymer")
	}

	p := Polymer{ID: id, Type: typ}
	if typ == monomer.Chem {
		sym := body
		if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
			sym = body[1 : len(body)-1]
		}
		if err := errors.ValidateSymbol(sym); err != nil {
			return Polymer{}, errors.Syntax(body, "chemical polymer must hold exactly one monomer")
		}
		p.Units = []Unit{{Symbol: sym}}
		return p, nil
	}

	elements, err := splitTop(body, '.')
	if err != nil {
		return Polymer{}, err
	}
	for _, el := range elements {
		units, err := parseElement(el, typ)
		if err != nil {
			return Polymer{}, err
		}
		p.Units = append(p.Units, units...)
	}
	return p, nil
}

// parseElement reads token ( "(" token ")" token? )?.
func parseElement(el string, typ monomer.Polymer) ([]Unit, error) {
	if el == "" {
		return nil, errors.Syntax(el, "empty element")
	}
	sym, rest, err := readToken(el)
	if err != nil {
		return nil, err
	}
	units := []Unit{{Symbol: sym}}
	if rest == "" {
		return units, nil
	}
	if rest[0] != '(' {
		return nil, errors.Syntax(el, "unexpected %q after monomer", rest[:1])
	}
	if typ != monomer.Nucleotide {
		return nil, errors.Syntax(el, "branch monomers are only allowed in nucleotide polymers")
	}
	branch, rest, err := readToken(rest[1:])
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(rest, ")") {
		return nil, errors.Syntax(el, "missing ')' after branch monomer")
	}
	units = append(units, Unit{Symbol: branch, Branch: true})
	rest = rest[1:]
	if rest == "" {
		return units, nil
	}
	linker, rest, err := readToken(rest)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, errors.Syntax(el, "trailing characters %q", rest)
	}
	return append(units, Unit{Symbol: linker}), nil
}

// readToken reads a single-letter symbol or a bracketed symbol.
func readToken(s string) (sym, rest string, err error) {
	if s == "" {
		return "", "", errors.Syntax(s, "missing monomer symbol")
	}
	if s[0] == '[' {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", "", errors.Syntax(clip(s), "unterminated '['")
		}
		sym = s[1:end]
		if err := errors.ValidateSymbol(sym); err != nil {
			return "", "", errors.Syntax(s[:end+1], "invalid monomer symbol")
		}
		return sym, s[end+1:], nil
	}
	c := s[0]
	if !isLetter(c) {
		return "", "", errors.Syntax(clip(s), "unexpected character %q", string(c))
	}
	return s[:1], s[1:], nil
}

func parseConnections(doc *Document, section string) error {
	if strings.TrimSpace(section) == "" {
		return nil
	}
	parts, err := splitTop(section, '|')
	if err != nil {
		return err
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		from, to, a, b, err := parseLinkHead(part)
		if err != nil {
			return err
		}
		fromPos, fromPort, err := parseAttachment(doc, from, a, part)
		if err != nil {
			return err
		}
		toPos, toPort, err := parseAttachment(doc, to, b, part)
		if err != nil {
			return err
		}
		if (fromPort == PairPort) != (toPort == PairPort) {
			return errors.Syntax(part, "pair must use ':pair' on both ends")
		}
		if fromPort == PairPort {
			doc.Pairs = append(doc.Pairs, Pair{From: from, FromPos: fromPos, To: to, ToPos: toPos})
			continue
		}
		doc.Connections = append(doc.Connections, Connection{
			From: from, FromPos: fromPos, FromPort: monomer.Port(fromPort),
			To: to, ToPos: toPos, ToPort: monomer.Port(toPort),
		})
	}
	return nil
}

func parsePairs(doc *Document, section string) error {
	if strings.TrimSpace(section) == "" {
		return nil
	}
	parts, err := splitTop(section, '|')
	if err != nil {
		return err
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		from, to, a, b, err := parseLinkHead(part)
		if err != nil {
			return err
		}
		fromPos, fromPort, err := parseAttachment(doc, from, a, part)
		if err != nil {
			return err
		}
		toPos, toPort, err := parseAttachment(doc, to, b, part)
		if err != nil {
			return err
		}
		if fromPort != PairPort || toPort != PairPort {
			return errors.Syntax(part, "pair section only accepts ':pair' attachments")
		}
		doc.Pairs = append(doc.Pairs, Pair{From: from, FromPos: fromPos, To: to, ToPos: toPos})
	}
	return nil
}

// parseLinkHead splits "A,B,x-y" into its polymer ids and attachment halves.
func parseLinkHead(part string) (from, to, a, b string, err error) {
	fields := strings.Split(part, ",")
	if len(fields) != 3 {
		return "", "", "", "", errors.Syntax(part, "link must be written as FROM,TO,pos:port-pos:port")
	}
	ends := strings.Split(fields[2], "-")
	if len(ends) != 2 {
		return "", "", "", "", errors.Syntax(part, "link attachments must be separated by '-'")
	}
	return strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]), ends[0], ends[1], nil
}

func parseAttachment(doc *Document, polymerID, s, part string) (int, string, error) {
	p, ok := doc.Polymer(polymerID)
	if !ok {
		return 0, "", errors.Syntax(part, "unknown polymer %q", polymerID)
	}
	posStr, port, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", errors.Syntax(part, "attachment %q must be pos:port", s)
	}
	pos, err := strconv.Atoi(posStr)
	if err != nil || pos < 1 || pos > len(p.Units) {
		return 0, "", errors.Syntax(part, "position %q out of range for %s", posStr, polymerID)
	}
	if port == PairPort {
		return pos, port, nil
	}
	if _, err := monomer.ParsePort(port); err != nil {
		return 0, "", errors.Syntax(part, "invalid attachment port %q", port)
	}
	return pos, port, nil
}

func parseAnnotations(doc *Document, section string) error {
	if strings.TrimSpace(section) == "" {
		return nil
	}
	parts, err := splitTop(section, '|')
	if err != nil {
		return err
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		open := strings.IndexByte(part, '{')
		if open <= 0 || !strings.HasSuffix(part, "}") {
			return errors.Syntax(part, "annotation must be written as ID{text} or ID:pos{text}")
		}
		head, text := part[:open], part[open+1:len(part)-1]
		id, posStr, hasPos := strings.Cut(head, ":")
		p, ok := doc.Polymer(id)
		if !ok {
			return errors.Syntax(part, "unknown polymer %q", id)
		}
		pos := 0
		if hasPos {
			pos, err = strconv.Atoi(posStr)
			if err != nil || pos < 1 || pos > len(p.Units) {
				return errors.Syntax(part, "annotation position %q out of range", posStr)
			}
		}
		doc.Annotations = append(doc.Annotations, Annotation{Polymer: id, Pos: pos, Text: text})
	}
	return nil
}

// splitTop splits s on sep, ignoring separators nested inside {} or [].
func splitTop(s string, sep byte) ([]string, error) {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				return nil, errors.Syntax(clip(s[start:]), "unbalanced %q", string(s[i]))
			}
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.Syntax(clip(s[start:]), "unbalanced brackets")
	}
	return append(out, s[start:]), nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// clip shortens long fragments for error messages.
func clip(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
