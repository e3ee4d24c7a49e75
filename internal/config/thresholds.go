// Package config loads the tunable rep-detection thresholds from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default threshold values. Angles are degrees, distances normalized image units.
const (
	DefaultBentArmAngle        = 60.0
	DefaultStraightArmAngle    = 130.0
	DefaultBentArmDistance     = 0.08
	DefaultStraightArmDistance = 0.05
	DefaultHipDistance         = 0.15
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Thresholds is the on-disk threshold configuration. Omitted fields fall back
// to the defaults through the Get* methods, so partial files are safe.
type Thresholds struct {
	BentArmAngle        *float64 `json:"bent_arm_angle,omitempty"`
	StraightArmAngle    *float64 `json:"straight_arm_angle,omitempty"`
	BentArmDistance     *float64 `json:"bent_arm_distance,omitempty"`
	StraightArmDistance *float64 `json:"straight_arm_distance,omitempty"`
	HipDistance         *float64 `json:"hip_distance,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }

// DefaultThresholds returns a Thresholds with every field set to its default.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		BentArmAngle:        ptrFloat64(DefaultBentArmAngle),
		StraightArmAngle:    ptrFloat64(DefaultStraightArmAngle),
		BentArmDistance:     ptrFloat64(DefaultBentArmDistance),
		StraightArmDistance: ptrFloat64(DefaultStraightArmDistance),
		HipDistance:         ptrFloat64(DefaultHipDistance),
	}
}

// LoadThresholds loads Thresholds from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadThresholds(path string) (*Thresholds, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Thresholds{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Thresholds) Validate() error {
	bent, straight := c.GetBentArmAngle(), c.GetStraightArmAngle()
	if bent <= 0 || bent > 180 {
		return fmt.Errorf("bent_arm_angle must be in (0, 180], got %f", bent)
	}
	if straight <= 0 || straight > 180 {
		return fmt.Errorf("straight_arm_angle must be in (0, 180], got %f", straight)
	}
	if bent >= straight {
		return fmt.Errorf("bent_arm_angle (%f) must be below straight_arm_angle (%f)", bent, straight)
	}

	if v := c.GetBentArmDistance(); v <= 0 {
		return fmt.Errorf("bent_arm_distance must be positive, got %f", v)
	}
	if v := c.GetStraightArmDistance(); v <= 0 {
		return fmt.Errorf("straight_arm_distance must be positive, got %f", v)
	}
	if v := c.GetHipDistance(); v <= 0 {
		return fmt.Errorf("hip_distance must be positive, got %f", v)
	}

	return nil
}

func getOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// GetBentArmAngle returns the bent_arm_angle value or the default.
func (c *Thresholds) GetBentArmAngle() float64 {
	return getOr(c.BentArmAngle, DefaultBentArmAngle)
}

// GetStraightArmAngle returns the straight_arm_angle value or the default.
func (c *Thresholds) GetStraightArmAngle() float64 {
	return getOr(c.StraightArmAngle, DefaultStraightArmAngle)
}

// GetBentArmDistance returns the bent_arm_distance value or the default.
func (c *Thresholds) GetBentArmDistance() float64 {
	return getOr(c.BentArmDistance, DefaultBentArmDistance)
}

// GetStraightArmDistance returns the straight_arm_distance value or the default.
func (c *Thresholds) GetStraightArmDistance() float64 {
	return getOr(c.StraightArmDistance, DefaultStraightArmDistance)
}

// GetHipDistance returns the hip_distance value or the default.
func (c *Thresholds) GetHipDistance() float64 {
	return getOr(c.HipDistance, DefaultHipDistance)
}
