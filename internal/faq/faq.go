// Package faq answers shopper questions by keyword from a YAML FAQ.
package faq

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed faq.yaml
var builtin []byte

var ErrEmptyQuestion = errors.New("question is required")

type Entry struct {
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

type Responder struct {
	Default string  `yaml:"default"`
	Entries []Entry `yaml:"entries"`
}

// Load reads the FAQ from path, or the built-in one when path is empty.
func Load(path string) (*Responder, error) {
	if path == "" {
		return Parse(builtin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read faq file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Responder, error) {
	var r Responder
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse faq YAML: %w", err)
	}

	if r.Default == "" {
		return nil, errors.New("faq: default answer is required")
	}
	for i := range r.Entries {
		e := &r.Entries[i]
		if e.Answer == "" || len(e.Keywords) == 0 {
			return nil, fmt.Errorf("faq: entry %d needs keywords and an answer", i)
		}
		for j, k := range e.Keywords {
			e.Keywords[j] = strings.ToLower(strings.TrimSpace(k))
		}
	}

	return &r, nil
}

// Answer returns the first entry whose keyword occurs in question.
func (r *Responder) Answer(question string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return "", ErrEmptyQuestion
	}

	for _, e := range r.Entries {
		for _, k := range e.Keywords {
			if strings.Contains(q, k) {
				return e.Answer, nil
			}
		}
	}
	return r.Default, nil
}
