package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

// Dependency matrix validation errors.
var (
	ErrMatrixShape    = errors.New("dependency matrix must be square and match the member list")
	ErrMatrixNegative = errors.New("dependency matrix cells must be non-negative")
	ErrUnknownKind    = errors.New("unknown member kind")
)

// DependencyMatrix is the static-analysis input: an ordered member list with
// kind tags and a square non-negative weight matrix over it.
type DependencyMatrix struct {
	Members []string    `json:"members"`
	Kinds   []string    `json:"kinds"`
	Matrix  [][]float64 `json:"matrix"`
}

// KindTags converts the string kind column into member kind tags.
func (m *DependencyMatrix) KindTags() ([]members.Kind, error) {
	kinds := make([]members.Kind, len(m.Kinds))

	for i, raw := range m.Kinds {
		switch members.Kind(raw) {
		case members.KindMethod:
			kinds[i] = members.KindMethod
		case members.KindField:
			kinds[i] = members.KindField
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
		}
	}

	return kinds, nil
}

func (m *DependencyMatrix) validate() error {
	n := len(m.Members)
	if len(m.Kinds) != n || len(m.Matrix) != n {
		return ErrMatrixShape
	}

	for _, row := range m.Matrix {
		if len(row) != n {
			return ErrMatrixShape
		}

		for _, cell := range row {
			if cell < 0 {
				return ErrMatrixNegative
			}
		}
	}

	_, err := m.KindTags()

	return err
}

// LoadDependencyMatrix reads and validates a dependency matrix JSON file.
func LoadDependencyMatrix(path string) (*DependencyMatrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dependency matrix: %w", err)
	}

	var matrix DependencyMatrix

	err = json.Unmarshal(raw, &matrix)
	if err != nil {
		return nil, fmt.Errorf("parse dependency matrix: %w", err)
	}

	err = matrix.validate()
	if err != nil {
		return nil, fmt.Errorf("dependency matrix %s: %w", path, err)
	}

	return &matrix, nil
}

// hotspotEntry is one row of the hotspot input list.
type hotspotEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"hotspot_score"`
}

// LoadHotspots reads a hotspot score list into the member lookup shape used
// by adaptive fusion.
func LoadHotspots(path string) (map[string]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hotspots: %w", err)
	}

	var entries []hotspotEntry

	err = json.Unmarshal(raw, &entries)
	if err != nil {
		return nil, fmt.Errorf("parse hotspots: %w", err)
	}

	hotspots := make(map[string]float64, len(entries))
	for _, entry := range entries {
		hotspots[entry.Member] = entry.Score
	}

	return hotspots, nil
}
