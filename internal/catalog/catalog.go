// Package catalog loads tool, alias, and flow definitions from the
// configured on-disk catalog directories.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chainflow-dev/chainflow/internal/config"
	flowerrors "github.com/chainflow-dev/chainflow/internal/errors"
	"github.com/chainflow-dev/chainflow/internal/types"
)

const (
	toolConfigFile = "config.yaml"
	aliasFile      = "aliases.yaml"
	flowExt        = ".yaml"
)

// Catalog resolves tool and flow definitions by name. Directories are
// injected at construction so tests can point it at fixtures.
type Catalog struct {
	toolsDir string
	flowsDir string
	logger   *slog.Logger
}

// New creates a catalog rooted at the configured directories.
func New(cfg *config.Config, baseDir string, logger *slog.Logger) *Catalog {
	return &Catalog{
		toolsDir: cfg.ToolsDir(baseDir),
		flowsDir: cfg.FlowsDir(baseDir),
		logger:   logger,
	}
}

// NewWithDirs creates a catalog from explicit directories.
func NewWithDirs(toolsDir, flowsDir string, logger *slog.Logger) *Catalog {
	return &Catalog{toolsDir: toolsDir, flowsDir: flowsDir, logger: logger}
}

// LoadTool loads a tool's configuration and its alias map.
func (c *Catalog) LoadTool(name string) (*types.Tool, map[string]*types.Alias, error) {
	toolDir := filepath.Join(c.toolsDir, name)
	if info, err := os.Stat(toolDir); err != nil || !info.IsDir() {
		return nil, nil, flowerrors.ToolNotFound(name)
	}

	tool := &types.Tool{AcceptsStdin: true}
	configPath := filepath.Join(toolDir, toolConfigFile)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, tool); err != nil {
			return nil, nil, flowerrors.ConfigParseError(configPath, err)
		}
	}

	aliases := make(map[string]*types.Alias)
	aliasPath := filepath.Join(toolDir, aliasFile)
	if data, err := os.ReadFile(aliasPath); err == nil {
		var af types.AliasFile
		if err := yaml.Unmarshal(data, &af); err != nil {
			return nil, nil, flowerrors.ConfigParseError(aliasPath, err)
		}
		if af.Aliases != nil {
			aliases = af.Aliases
		}
	}

	c.logger.Debug("loaded tool", "tool", name, "aliases", len(aliases))
	return tool, aliases, nil
}

// LoadAlias resolves a "tool:alias" reference to its tool and alias.
func (c *Catalog) LoadAlias(ref string) (*types.Tool, *types.Alias, error) {
	toolName, aliasName, err := types.SplitAlias(ref)
	if err != nil {
		return nil, nil, err
	}
	tool, aliases, err := c.LoadTool(toolName)
	if err != nil {
		return nil, nil, err
	}
	alias, ok := aliases[aliasName]
	if !ok {
		return nil, nil, flowerrors.AliasNotFound(toolName, aliasName)
	}
	return tool, alias, nil
}

// LoadFlow loads a flow definition by name.
func (c *Catalog) LoadFlow(name string) (*types.Flow, error) {
	path := filepath.Join(c.flowsDir, name+flowExt)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, flowerrors.FlowNotFound(name)
	}

	var flow types.Flow
	if err := yaml.Unmarshal(data, &flow); err != nil {
		return nil, flowerrors.ConfigParseError(path, err)
	}

	c.logger.Debug("loaded flow", "flow", name, "stages", len(flow.Stages))
	return &flow, nil
}

// ToolEntry is one row in a tool listing.
type ToolEntry struct {
	Name        string
	Tags        []string
	Description string
}

// ListTools returns all registered tools, sorted by name. An optional tag
// substring filters the list (case-insensitive).
func (c *Catalog) ListTools(tag string) ([]ToolEntry, error) {
	entries, err := os.ReadDir(c.toolsDir)
	if err != nil {
		return nil, fmt.Errorf("reading tools directory: %w", err)
	}

	var tools []ToolEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		tool, _, err := c.LoadTool(entry.Name())
		if err != nil {
			c.logger.Warn("skipping unreadable tool", "tool", entry.Name(), "error", err)
			continue
		}
		if tag != "" && !matchesTag(tool.Tags, tag) {
			continue
		}
		tools = append(tools, ToolEntry{
			Name:        entry.Name(),
			Tags:        tool.Tags,
			Description: tool.Description,
		})
	}

	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

// AliasEntry is one row in an alias listing.
type AliasEntry struct {
	Ref         string // "tool:alias"
	Description string
}

// ListAliases returns every alias from every tool, sorted by reference.
func (c *Catalog) ListAliases() ([]AliasEntry, error) {
	entries, err := os.ReadDir(c.toolsDir)
	if err != nil {
		return nil, fmt.Errorf("reading tools directory: %w", err)
	}

	var out []AliasEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		_, aliases, err := c.LoadTool(entry.Name())
		if err != nil {
			continue
		}
		for name, alias := range aliases {
			out = append(out, AliasEntry{
				Ref:         entry.Name() + ":" + name,
				Description: alias.Description,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out, nil
}

// FlowEntry is one row in a flow listing.
type FlowEntry struct {
	Name        string
	Tags        []string
	Description string
}

// ListFlows returns all flows, sorted by name, optionally filtered by tag
// substring.
func (c *Catalog) ListFlows(tag string) ([]FlowEntry, error) {
	entries, err := os.ReadDir(c.flowsDir)
	if err != nil {
		return nil, fmt.Errorf("reading flows directory: %w", err)
	}

	var flows []FlowEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), flowExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), flowExt)
		flow, err := c.LoadFlow(name)
		if err != nil {
			c.logger.Warn("skipping unreadable flow", "flow", name, "error", err)
			continue
		}
		if tag != "" && !matchesTag(flow.Tags, tag) {
			continue
		}
		flows = append(flows, FlowEntry{
			Name:        name,
			Tags:        flow.Tags,
			Description: flow.Description,
		})
	}

	sort.Slice(flows, func(i, j int) bool { return flows[i].Name < flows[j].Name })
	return flows, nil
}

func matchesTag(tags []string, tag string) bool {
	needle := strings.ToLower(tag)
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
