package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ShortName strips the namespace (everything up to the last '.') and any
// nested-class prefix (everything up to the last '$') from a contract
// identifier. "com.spectralogic.s3.Outer$Inner" becomes "Inner".
func ShortName(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.LastIndexByte(id, '$'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// Normalize returns the canonical form of a contract identifier: the short
// name re-joined in PascalCase. Normalizing a canonical name returns it
// unchanged.
func Normalize(id string) string {
	tokens := Tokens(ShortName(id))
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(upperFirst(tok))
	}
	return b.String()
}

const (
	handlerSuffix  = "RequestHandler"
	requestSuffix  = "Request"
	responseSuffix = "Response"
	spectraSuffix  = "SpectraS3Request"
)

// RequestName canonicalizes a request identifier. A trailing "RequestHandler"
// becomes "Request", or "SpectraS3Request" for the spectrads3 classification
// so the two families never share a name.
func RequestName(id, classification string) string {
	name := Normalize(id)
	if !strings.HasSuffix(name, handlerSuffix) {
		return name
	}
	base := strings.TrimSuffix(name, handlerSuffix)
	if strings.EqualFold(classification, "spectrads3") {
		return base + spectraSuffix
	}
	return base + requestSuffix
}

// ResponseName derives the response name paired with a canonical request name.
func ResponseName(request string) string {
	request = Normalize(request)
	if strings.HasSuffix(request, requestSuffix) {
		return strings.TrimSuffix(request, requestSuffix) + responseSuffix
	}
	return request + responseSuffix
}

// Tokens splits an identifier on separators and camel-case boundaries.
//   - "JobID"            -> ["Job", "ID"]
//   - "bucket_name"      -> ["bucket", "name"]
//   - "XMLParser"        -> ["XML", "Parser"]
//   - "SpectraS3Request" -> ["Spectra", "S3", "Request"]
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	var current strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && startsToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', ' ', '.', '$', '/':
		return true
	}
	return false
}

func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}
	if !unicode.IsUpper(prev) {
		return true
	}
	// end of an acronym: "XMLParser" splits before 'P'
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
