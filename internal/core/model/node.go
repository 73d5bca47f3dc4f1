package model

// Node is one typed entity of the graph. Label is the type name; Properties holds
// string values keyed by property name.
type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Properties Properties `json:"properties,omitempty"`
}

func (n Node) EntityID() string             { return n.ID }
func (n Node) EntityLabel() string          { return n.Label }
func (n Node) EntityProperties() Properties { return n.Properties }

func (n Node) String() string {
	return "(" + n.Label + ":" + n.ID + "/" + n.Properties.Canonical() + ")"
}
