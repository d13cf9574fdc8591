// Package knowledge loads the temple's structured data from a YAML file.
package knowledge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

// Load reads and validates the knowledge file at path.
func Load(path string) (*domain.Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	k, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

// Parse decodes knowledge YAML. Unknown keys are rejected so a typo in the
// file fails at startup instead of silently dropping a section.
func Parse(data []byte) (*domain.Knowledge, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var k domain.Knowledge
	if err := dec.Decode(&k); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrKnowledgeInvalid.Message,
				errors.New("file is empty"))
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrKnowledgeInvalid.Message, err)
	}
	if err := domain.ValidateKnowledge(&k); err != nil {
		return nil, err
	}
	return &k, nil
}
