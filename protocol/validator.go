package protocol

import "regexp"

// HeaderNameRegexp matches a well-formed STOMP header name. Earlier
// implementations in this lineage used the character class [a-zA-Z0-1-],
// almost certainly a typo for [0-9]; this one uses the corrected class.
var HeaderNameRegexp = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

var v10Commands = map[string]bool{
	"CONNECTED": true, "MESSAGE": true, "RECEIPT": true, "ERROR": true,
	"CONNECT": true, "SEND": true, "SUBSCRIBE": true, "UNSUBSCRIBE": true,
	"BEGIN": true, "COMMIT": true, "ABORT": true, "ACK": true, "DISCONNECT": true,
}

var v11ExtraCommands = map[string]bool{
	"STOMP": true, "NACK": true,
}

// ValidCommand reports whether cmd is a legal frame command under the
// given protocol version.
func ValidCommand(cmd string, v Version) bool {
	if v10Commands[cmd] {
		return true
	}
	if v >= V11 {
		return v11ExtraCommands[cmd]
	}
	return false
}

// AckHeader returns the header name that carries the id an ACK or NACK
// frame must echo back for version v: "ack" under STOMP 1.2, where
// MESSAGE frames carry a broker-assigned ack id distinct from
// message-id, and "message-id" under 1.0/1.1, where no such id exists.
func AckHeader(v Version) string {
	if v >= V12 {
		return "ack"
	}
	return "message-id"
}

// ValidHeaderName reports whether name is a well-formed header name.
func ValidHeaderName(name string) bool {
	return name != "" && HeaderNameRegexp.MatchString(name)
}
