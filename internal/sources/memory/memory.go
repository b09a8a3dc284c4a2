package memory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"rewards/internal/core"
	"rewards/internal/sources"
)

//go:embed seed.json
var seedJSON []byte

var (
	_ sources.TransactionProvider = (*Store)(nil)
	_ sources.TransactionWriter   = (*Store)(nil)
)

// Store keeps transactions in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	ids   map[string]struct{}
}

func New(txs []core.Transaction) *Store {
	s := &Store{ids: make(map[string]struct{}, len(txs))}
	for _, tx := range txs {
		s.items = append(s.items, tx)
		if tx.TransactionID != "" {
			s.ids[tx.TransactionID] = struct{}{}
		}
	}
	return s
}

// NewSeeded returns a store holding the bundled demo data set.
func NewSeeded() *Store {
	txs, err := Decode(seedJSON, ".json")
	if err != nil {
		panic(fmt.Sprintf("embedded seed: %v", err))
	}
	return New(txs)
}

// NewFromFile loads a JSON or YAML array of transactions. An empty path
// falls back to the bundled seed.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return NewSeeded(), nil
	}
	txs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(txs), nil
}

// LoadFile reads a transaction file; the format follows the extension.
func LoadFile(path string) ([]core.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	txs, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return txs, nil
}

// Decode parses a transaction array. ext selects YAML for ".yaml" and
// ".yml"; anything else is read as JSON.
func Decode(data []byte, ext string) ([]core.Transaction, error) {
	var txs []core.Transaction
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&txs); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &txs); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

// FetchTransactions returns a copy of the stored transactions.
func (s *Store) FetchTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.items)
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

// SaveTransaction appends tx unless its ID is already stored.
func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[tx.TransactionID]; ok {
		return false, nil
	}
	s.ids[tx.TransactionID] = struct{}{}
	s.items = append(s.items, tx)
	return true, nil
}
