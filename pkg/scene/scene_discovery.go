package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "config"
	FilePath    string `json:"filePath"`    // Path to JSON config (config type only)
}

// ListBuiltinScenes returns metadata for every built-in scene, sorted by ID
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for _, name := range Names() {
		info := builtins[name].info
		info.Type = "builtin"
		scenes = append(scenes, info)
	}
	return scenes
}

// ListConfigScenes scans dir for *.json scene descriptions.
// A missing directory yields an empty list.
func ListConfigScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := parseConfigMetadata(filePath)
		if err != nil {
			// Log warning but continue processing other files
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ListAllScenes returns built-in scenes followed by config scenes found in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	configs, err := ListConfigScenes(dir)
	if err != nil {
		return nil, err
	}
	return append(ListBuiltinScenes(), configs...), nil
}

func parseConfigMetadata(filePath string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:       "config:" + base,
		Name:     base,
		Type:     "config",
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, err
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return info, err
	}
	if header.Name != "" {
		info.Name = header.Name
	}
	info.Description = header.Description
	return info, nil
}
