package fsm

// Link types written by the designer
const (
	LinkTypeLink  = "Link"
	LinkTypeSelf  = "SelfLink"
	LinkTypeStart = "StartLink"
)

// Document is the JSON export of the FSM designer
type Document struct {
	Nodes []NodeConfig `json:"nodes"`
	Links []LinkConfig `json:"links"`
}

// NodeConfig is one designer node; layout fields are ignored
type NodeConfig struct {
	Text          string  `json:"text"`
	IsAcceptState bool    `json:"isAcceptState"`
	X             float64 `json:"x,omitempty"`
	Y             float64 `json:"y,omitempty"`
}

// LinkConfig is one designer link
// Link uses NodeA/NodeB, SelfLink and StartLink use Node
type LinkConfig struct {
	Type  string `json:"type"`
	NodeA *int   `json:"nodeA,omitempty"`
	NodeB *int   `json:"nodeB,omitempty"`
	Node  *int   `json:"node,omitempty"`
	Text  string `json:"text"` // Transition weight, empty = 1
}
