package reader

import (
	"strings"
	"unicode/utf8"

	"data_logger/internal/models"
)

// ParseLine applies the wire rule "<distance>,<command>": surrounding
// whitespace is trimmed, then the line is split on the first comma. Lines
// without a comma yield ok=false. Both parts are kept verbatim, so
// "1,2,3" becomes distance "1" and command "2,3".
func ParseLine(line string) (models.Reading, bool) {
	line = strings.TrimSpace(line)
	distance, command, found := strings.Cut(line, ",")
	if !found {
		return models.Reading{}, false
	}
	return models.Reading{Distance: distance, Command: command}, true
}

// decodeLine converts raw bytes to text. Invalid UTF-8 is reported as not
// decodable and the caller drops the line.
func decodeLine(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}
