// Package wire implements the request/response envelopes exchanged between
// reservation clients and the server.
//
// A request is a flat XML document: a root element holding an <action>
// element followed by one element per parameter, in caller order. A
// response holds <status> (SUCCESS or FAILURE), an optional <message>, and
// an optional <data> element whose children are typed records.
//
// Each envelope travels as one frame: a 4-byte big-endian payload length
// followed by the payload.
//
//   - frame.go: length-prefixed framing
//   - request.go: request envelope and ordered parameters
//   - response.go: response envelope and record schema
//   - field.go: tolerant text-to-value projections
package wire
