package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
)

// Material is the lighting setup read from a .kmt file:
//
//	name = default
//	light_colour = 1.0 0.95 0.9
//	light_direction = 0.3 -1.0 0.4
//	light_position = 0 10 0
type Material struct {
	Name           string
	LightColour    math.Vec3
	LightDirection math.Vec3
	LightPosition  math.Vec3
}

func LoadMaterial(path string) (*Material, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m := &Material{
		LightColour:    math.NewVec3One(),
		LightDirection: math.NewVec3Down(),
	}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			core.LogWarn("skipping invalid material line: %s", line)
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "name":
			m.Name = value
		case "light_colour":
			m.LightColour, err = parseVec3(value)
		case "light_direction":
			m.LightDirection, err = parseVec3(value)
		case "light_position":
			m.LightPosition, err = parseVec3(value)
		default:
			core.LogWarn("unknown key '%s' in %s, skipping", key, path)
		}
		if err != nil {
			return nil, fmt.Errorf("material %s: %s: %w", path, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := validateMaterial(m); err != nil {
		return nil, fmt.Errorf("material %s: %w", path, err)
	}
	m.LightDirection = m.LightDirection.AsNormalizedSafe()
	return m, nil
}

func parseVec3(value string) (math.Vec3, error) {
	v, err := parseFloats(strings.Fields(value), 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.NewVec3(v[0], v[1], v[2]), nil
}

func validateMaterial(m *Material) error {
	if m.Name == "" {
		return fmt.Errorf("material name is required")
	}
	c := m.LightColour
	if !inRange(c.X) || !inRange(c.Y) || !inRange(c.Z) {
		return fmt.Errorf("light_colour values must be between 0.0 and 1.0")
	}
	if m.LightDirection.LengthSquared() == 0 {
		return fmt.Errorf("light_direction must not be zero")
	}
	return nil
}

func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
