package naming

import "strings"

// Case selects how tokens of a canonical name are re-joined for a target.
type Case int

const (
	Pascal Case = iota
	Camel
	Snake
	ScreamingSnake
)

func (c Case) String() string {
	switch c {
	case Pascal:
		return "pascal"
	case Camel:
		return "camel"
	case Snake:
		return "snake"
	case ScreamingSnake:
		return "screaming_snake"
	default:
		return "unknown"
	}
}

// Casing is a target's rule for rendering one kind of identifier.
type Casing struct {
	Case Case
	// Initialisms upper-cases well-known acronyms ("Id" -> "ID") in Pascal and
	// Camel output.
	Initialisms bool
	// Reserved words get Suffix appended after casing.
	Reserved map[string]struct{}
	Suffix   string
}

var initialisms = map[string]string{
	"api":  "API",
	"cpu":  "CPU",
	"crc":  "CRC",
	"html": "HTML",
	"http": "HTTP",
	"id":   "ID",
	"ip":   "IP",
	"json": "JSON",
	"md5":  "MD5",
	"sql":  "SQL",
	"ssl":  "SSL",
	"tcp":  "TCP",
	"tls":  "TLS",
	"udp":  "UDP",
	"uri":  "URI",
	"url":  "URL",
	"uuid": "UUID",
	"xml":  "XML",
}

// Apply renders name in the casing. name may be raw or canonical.
func (c Casing) Apply(name string) string {
	short := ShortName(name)
	tokens := Tokens(short)
	if len(tokens) == 0 {
		return ""
	}
	if strings.ToUpper(short) == short {
		// SCREAMING_SNAKE input carries no casing information
		for i, tok := range tokens {
			tokens[i] = strings.ToLower(tok)
		}
	}
	var out string
	switch c.Case {
	case Snake:
		out = joinLower(tokens, "_")
	case ScreamingSnake:
		out = strings.ToUpper(joinLower(tokens, "_"))
	case Camel:
		var b strings.Builder
		b.WriteString(strings.ToLower(tokens[0]))
		for _, tok := range tokens[1:] {
			b.WriteString(c.word(tok))
		}
		out = b.String()
	default:
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(c.word(tok))
		}
		out = b.String()
	}
	if _, ok := c.Reserved[out]; ok {
		out += c.Suffix
	}
	return out
}

func (c Casing) word(tok string) string {
	if c.Initialisms {
		if up, ok := initialisms[strings.ToLower(tok)]; ok {
			return up
		}
	}
	return upperFirst(tok)
}

func joinLower(tokens []string, sep string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = strings.ToLower(tok)
	}
	return strings.Join(parts, sep)
}

// Words builds a reserved-word set.
func Words(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
