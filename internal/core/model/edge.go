package model

// Edge links two nodes by their ids. SourceID and TargetID are non-empty once the
// pipeline has materialized the edge.
type Edge struct {
	ID         string     `json:"id"`
	SourceID   string     `json:"source_id"`
	TargetID   string     `json:"target_id"`
	Label      string     `json:"label"`
	Properties Properties `json:"properties,omitempty"`
}

func (e Edge) EntityID() string             { return e.ID }
func (e Edge) EntityLabel() string          { return e.Label }
func (e Edge) EntityProperties() Properties { return e.Properties }

func (e Edge) String() string {
	return "<(" + e.SourceID + ")--[" + e.Label + ":" + e.ID + "/" + e.Properties.Canonical() + "]-->(" + e.TargetID + ")>"
}

// DefaultEdgeID is the synthetic id given to edges produced by extraction.
func DefaultEdgeID(sourceID, label, targetID string) string {
	return "(" + sourceID + ")--[" + label + "]->(" + targetID + ")"
}
