// Package platform describes host platforms and the intents each one
// supports. Capability differences are declared here, never discovered by
// transport failure: a platform that manages its own sizing (mobile) names
// the suppression explicitly.
package platform

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Platform identifies a host variant embedding the dashboard.
type Platform string

const (
	Extension      Platform = "extension"
	MacOS          Platform = "macos"
	IOS            Platform = "ios"
	Android        Platform = "android"
	WindowsWebview Platform = "windows"
)

// Valid reports whether p names a known platform.
func (p Platform) Valid() bool {
	switch p {
	case Extension, MacOS, IOS, Android, WindowsWebview:
		return true
	}
	return false
}

// Capabilities lists the intent surface a platform supports. A false
// value means the intent is intentionally suppressed for that host, not
// that delivery should be attempted and allowed to fail.
type Capabilities struct {
	SetSize          bool `yaml:"setSize"`
	OpenSettings     bool `yaml:"openSettings"`
	BreakageReports  bool `yaml:"breakageReports"`
	ToggleReports    bool `yaml:"toggleReports"`
	PermissionWrites bool `yaml:"permissionWrites"`
}

// Matrix maps platforms to their capabilities.
type Matrix map[Platform]Capabilities

// DefaultMatrix returns the built-in capability matrix. Mobile hosts
// manage dashboard sizing natively, so SetSize is suppressed there.
func DefaultMatrix() Matrix {
	desktop := Capabilities{
		SetSize:          true,
		OpenSettings:     true,
		BreakageReports:  true,
		ToggleReports:    true,
		PermissionWrites: true,
	}
	mobile := desktop
	mobile.SetSize = false

	return Matrix{
		Extension:      desktop,
		MacOS:          desktop,
		WindowsWebview: desktop,
		IOS:            mobile,
		Android:        mobile,
	}
}

// LoadMatrix reads a capability matrix from a YAML file, overlaying the
// defaults. Platforms absent from the file keep their built-in entries.
func LoadMatrix(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capability matrix: %w", err)
	}

	overlay := make(map[Platform]Capabilities)
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse capability matrix: %w", err)
	}

	matrix := DefaultMatrix()
	for p, caps := range overlay {
		if !p.Valid() {
			return nil, fmt.Errorf("unknown platform in capability matrix: %q", p)
		}
		matrix[p] = caps
	}
	return matrix, nil
}

// For returns the capabilities for p, falling back to the extension
// entry when p is unknown.
func (m Matrix) For(p Platform) Capabilities {
	if caps, ok := m[p]; ok {
		return caps
	}
	return m[Extension]
}
