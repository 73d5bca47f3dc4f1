package driver

// Indices are created by BuildIndices.
var Indices = []string{
	"CREATE INDEX ON :Type(name);",
}

const (
	// LoadTypeHierarchyQuery returns one row per type and parent. Roots come
	// back with a null parent.
	LoadTypeHierarchyQuery = `
		MATCH (c:Type)
		OPTIONAL MATCH (c)-[:IS_A]->(p:Type)
		RETURN c.name AS child, p.name AS parent
		ORDER BY child, parent
	`

	SaveTypeQuery = `
		MERGE (t:Type {name: $name})
		RETURN t.name AS name
	`

	SaveIsAQuery = `
		MERGE (c:Type {name: $child})
		MERGE (p:Type {name: $parent})
		MERGE (c)-[:IS_A]->(p)
	`
)
