package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	flowerrors "github.com/chainflow-dev/chainflow/internal/errors"
	"github.com/chainflow-dev/chainflow/internal/types"
)

// ScaffoldTool creates a new tool directory with empty config and alias
// files ready to be filled in. An existing tool is an error unless force is
// set, in which case its files are reset to the scaffold.
func (c *Catalog) ScaffoldTool(name string, force bool) error {
	toolDir := filepath.Join(c.toolsDir, name)
	if _, err := os.Stat(toolDir); err == nil && !force {
		return flowerrors.ToolExists(name)
	}

	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return fmt.Errorf("creating tool directory: %w", err)
	}

	tool := types.Tool{
		Description:  "",
		Tags:         []string{},
		RunCommand:   "",
		AcceptsStdin: true,
		HeaderFlag:   "",
	}
	if err := writeYAML(filepath.Join(toolDir, toolConfigFile), tool); err != nil {
		return err
	}

	aliases := types.AliasFile{
		Aliases: map[string]*types.Alias{
			"default": {
				Description: "",
				Command:     "",
				Variables:   []types.AliasVar{},
			},
		},
	}
	if err := writeYAML(filepath.Join(toolDir, aliasFile), aliases); err != nil {
		return err
	}

	c.logger.Info("scaffolded tool", "tool", name, "dir", toolDir)
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
