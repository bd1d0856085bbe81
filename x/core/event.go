package core

// Message types accepted from clients
const (
	MessageTypeGetCandyMachines    = "GET_CANDY_MACHINES"
	MessageTypeCandyMachineCreated = "CANDY_MACHINE_CREATED"
	MessageTypeCandyMachineMinted  = "CANDY_MACHINE_MINTED"

	// MessageTypeNewCandyMachine is the legacy creation request. It carries the
	// record inline instead of referring to one created over HTTP.
	MessageTypeNewCandyMachine = "newCandyMachine"
)

// Message types sent to clients
const (
	MessageTypeCandyMachinesList  = "CANDY_MACHINES_LIST"
	MessageTypeMintedCountUpdated = "MINTED_COUNT_UPDATED"
	MessageTypeConnectionSuccess  = "CONNECTION_SUCCESS"
	MessageTypeError              = "ERROR"
)

// Message is the wire envelope. Every frame in either direction is a single
// JSON object of this shape, UTF-8 text framed. Record mutations publish the
// same envelope to the redis broadcast channel; the socket layer forwards it
// verbatim to every connected client.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
