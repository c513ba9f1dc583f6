// Package fixture serves the console collections from a YAML file, for demos
// and local development without a database.
package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/tips-console/internal/models"
)

// File is the document layout of a fixture file.
type File struct {
	Tips          []models.Tip          `yaml:"tips"`
	Packages      []models.Package      `yaml:"packages"`
	Accounts      []models.Account      `yaml:"accounts"`
	Transactions  []models.Transaction  `yaml:"transactions"`
	Tickets       []models.Ticket       `yaml:"tickets"`
	Notifications []models.Notification `yaml:"notifications"`
}

// Source is a store.Source backed by a parsed fixture file.
type Source struct {
	file File
}

func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return src, nil
}

// Parse decodes a fixture document. Unknown keys are an error.
func Parse(data []byte) (*Source, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &Source{file: f}, nil
}

func (s *Source) Tips(context.Context) ([]models.Tip, error) {
	return models.CloneTips(s.file.Tips), nil
}

func (s *Source) Packages(context.Context) ([]models.Package, error) {
	pkgs := models.ClonePackages(s.file.Packages)
	for i := range pkgs {
		if pkgs[i].Tips == nil {
			pkgs[i].Tips = []models.Tip{}
		}
	}
	return pkgs, nil
}

func (s *Source) Accounts(context.Context) ([]models.Account, error) {
	return append([]models.Account(nil), s.file.Accounts...), nil
}

func (s *Source) Transactions(context.Context) ([]models.Transaction, error) {
	return append([]models.Transaction(nil), s.file.Transactions...), nil
}

func (s *Source) Tickets(context.Context) ([]models.Ticket, error) {
	return append([]models.Ticket(nil), s.file.Tickets...), nil
}

func (s *Source) Notifications(context.Context) ([]models.Notification, error) {
	return append([]models.Notification(nil), s.file.Notifications...), nil
}

// Write encodes f as a fixture document.
func Write(w io.Writer, f File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return enc.Close()
}
