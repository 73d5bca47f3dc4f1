package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/graphweave/internal/core/fuse"
	"github.com/agenthands/graphweave/internal/core/merge"
	"github.com/agenthands/graphweave/internal/core/model"
	"github.com/agenthands/graphweave/internal/core/serialize"
	"github.com/agenthands/graphweave/internal/core/transform"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

type ExtractionConfig struct {
	Workers               int    `toml:"workers"`
	RaiseErrors           bool   `toml:"raise_errors"`
	TypeAffix             string `toml:"type_affix"`
	TypeAffixSep          string `toml:"type_affix_sep"`
	OnNoMatch             string `toml:"on_no_match"`
	SourceColumnsProperty string `toml:"source_columns_property"`
	ListSeparator         string `toml:"list_separator"`
	// Metadata maps a type name to static properties added to its elements.
	Metadata map[string]map[string]string `toml:"metadata"`
}

type ReconciliationConfig struct {
	Serializer string           `toml:"serializer"`
	Separator  string           `toml:"separator"`
	Nodes      fuse.NodeMergers `toml:"nodes"`
	Edges      fuse.EdgeMergers `toml:"edges"`
}

type OntologyConfig struct {
	// File is a YAML is-a hierarchy.
	File string `toml:"file"`
	// Source is "file" or "memgraph". Empty means file when File is set.
	Source string `toml:"source"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Extraction     ExtractionConfig     `toml:"extraction"`
	Reconciliation ReconciliationConfig `toml:"reconciliation"`
	Ontology       OntologyConfig       `toml:"ontology"`
	Memgraph       MemgraphConfig       `toml:"memgraph"`
	Server         ServerConfig         `toml:"server"`
}

// Default returns a sequential, accumulating setup that reconciles by id.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			TypeAffix:     string(model.AffixSuffix),
			TypeAffixSep:  ":",
			OnNoMatch:     string(transform.NoMatchSkip),
			ListSeparator: ";",
		},
		Reconciliation: ReconciliationConfig{
			Serializer: "id",
			Separator:  ";",
			Nodes:      fuse.DefaultNodeMergers(),
			Edges:      fuse.DefaultEdgeMergers(),
		},
		Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
		Server:   ServerConfig{Port: "8080"},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, gwerrors.NewConfigError("config", "failed to parse TOML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GRAPHWEAVE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Extraction.Workers = n
		}
	}
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if c.Extraction.Workers < 0 {
		return gwerrors.NewConfigError("extraction", "workers must not be negative", nil)
	}
	if _, err := c.IDFormatter(); err != nil {
		return err
	}
	if _, err := transform.ParseNoMatchPolicy(c.Extraction.OnNoMatch); err != nil {
		return err
	}
	if _, err := serialize.ByName(c.Reconciliation.Serializer); err != nil {
		return err
	}

	r := c.Reconciliation
	stringFields := map[string]string{
		"nodes.id":     r.Nodes.ID,
		"nodes.label":  r.Nodes.Label,
		"edges.id":     r.Edges.ID,
		"edges.label":  r.Edges.Label,
		"edges.source": r.Edges.Source,
		"edges.target": r.Edges.Target,
	}
	for field, name := range stringFields {
		if name != "" && !slices.Contains(merge.StringNames, name) {
			return gwerrors.NewConfigError("reconciliation", fmt.Sprintf("unknown merger `%s` for %s", name, field), nil)
		}
		if isTypeMerger(name) && !c.HasOntology() {
			return gwerrors.NewConfigError("reconciliation", fmt.Sprintf("merger `%s` for %s needs an [ontology] section", name, field), nil)
		}
	}
	// use_key copies the duplicate key into the id, which is only an id when
	// nodes are keyed by id alone. Edge keys never are.
	if r.Nodes.ID == "use_key" && !keysByID(r.Serializer) {
		return gwerrors.NewConfigError("reconciliation",
			fmt.Sprintf("merger `use_key` for nodes.id needs the `id` serializer, not `%s`; use `use_first`", r.Serializer), nil)
	}
	if r.Edges.ID == "use_key" {
		return gwerrors.NewConfigError("reconciliation", "merger `use_key` is not valid for edges.id", nil)
	}
	for field, name := range map[string]string{"nodes.properties": r.Nodes.Properties, "edges.properties": r.Edges.Properties} {
		if name != "" && !slices.Contains(merge.PropertiesNames, name) {
			return gwerrors.NewConfigError("reconciliation", fmt.Sprintf("unknown merger `%s` for %s", name, field), nil)
		}
	}

	switch c.Ontology.Source {
	case "", "file", "memgraph":
	default:
		return gwerrors.NewConfigError("ontology", fmt.Sprintf("`%s` is not one of file, memgraph", c.Ontology.Source), nil)
	}
	if c.Ontology.Source == "file" && c.Ontology.File == "" {
		return gwerrors.NewConfigError("ontology", "source `file` needs a file", nil)
	}
	return nil
}

// HasOntology reports whether a type hierarchy is configured.
func (c *Config) HasOntology() bool {
	return c.Ontology.File != "" || c.Ontology.Source == "memgraph"
}

// IDFormatter returns the node id rule of the extraction section.
func (c *Config) IDFormatter() (model.IDFormatter, error) {
	affix, err := model.ParseAffix(c.Extraction.TypeAffix)
	if err != nil {
		return model.IDFormatter{}, err
	}
	return model.IDFormatter{Affix: affix, Separator: c.Extraction.TypeAffixSep}, nil
}

// Metadata converts the metadata section.
func (c *Config) Metadata() map[string]model.Properties {
	if len(c.Extraction.Metadata) == 0 {
		return nil
	}
	out := make(map[string]model.Properties, len(c.Extraction.Metadata))
	for typeName, props := range c.Extraction.Metadata {
		out[typeName] = model.Properties(props).Clone()
	}
	return out
}

func keysByID(serializer string) bool {
	return serializer == "" || strings.EqualFold(serializer, "id")
}

func isTypeMerger(name string) bool {
	return name == "common_sub_type" || name == "common_super_type"
}
