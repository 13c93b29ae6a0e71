package notation

import (
	"strconv"
	"strings"

	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Format writes doc back to notation text. The output only depends on the
// order of the slices in doc; callers that want a canonical string must
// order them canonically first.
func Format(doc *Document) string {
	var b strings.Builder

	for i, p := range doc.Polymers {
		if i > 0 {
			b.WriteByte('|')
		}
		writePolymer(&b, p)
	}
	b.WriteByte('$')

	for i, c := range doc.Connections {
		if i > 0 {
			b.WriteByte('|')
		}
		writeLink(&b, c.From, c.To, c.FromPos, string(c.FromPort), c.ToPos, string(c.ToPort))
	}
	b.WriteByte('$')

	for i, p := range doc.Pairs {
		if i > 0 {
			b.WriteByte('|')
		}
		writeLink(&b, p.From, p.To, p.FromPos, PairPort, p.ToPos, PairPort)
	}
	b.WriteByte('$')

	for i, a := range doc.Annotations {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a.Polymer)
		if a.Pos > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(a.Pos))
		}
		b.WriteByte('{')
		b.WriteString(a.Text)
		b.WriteByte('}')
	}
	b.WriteByte('$')
	b.WriteString(doc.Version)

	return b.String()
}

func writePolymer(b *strings.Builder, p Polymer) {
	b.WriteString(p.ID)
	b.WriteByte('{')
	units := p.Units
	for i := 0; i < len(units); {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(monomer.FormatSymbol(units[i].Symbol))
		i++
		if i < len(units) && units[i].Branch {
			b.WriteByte('(')
			b.WriteString(monomer.FormatSymbol(units[i].Symbol))
			b.WriteByte(')')
			i++
			if i < len(units) && !units[i].Branch && isLinker(units, i) {
				b.WriteString(monomer.FormatSymbol(units[i].Symbol))
				i++
			}
		}
	}
	b.WriteByte('}')
}

// isLinker reports whether the backbone unit at i closes a nucleotide unit
// rather than starting the next one. A unit that is itself followed by a
// branch starts a new element.
func isLinker(units []Unit, i int) bool {
	return i+1 >= len(units) || !units[i+1].Branch
}

func writeLink(b *strings.Builder, from, to string, fromPos int, fromPort string, toPos int, toPort string) {
	b.WriteString(from)
	b.WriteByte(',')
	b.WriteString(to)
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(fromPos))
	b.WriteByte(':')
	b.WriteString(fromPort)
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(toPos))
	b.WriteByte(':')
	b.WriteString(toPort)
}
