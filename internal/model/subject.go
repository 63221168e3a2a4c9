package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Subject identifies one study participant. Job files may give subjects as
// strings ("sub-01") or as integers (7, rendered as "sub-007").
type Subject string

// SubjectFromID renders an integer subject identifier as a zero-padded label.
func SubjectFromID(id int) Subject {
	return Subject(fmt.Sprintf("sub-%03d", id))
}

// Label returns the directory label for the subject, e.g. "sub-007".
func (s Subject) Label() string {
	return string(s)
}

func (s *Subject) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*s = SubjectFromID(id)
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("subject must be a string or an integer: %w", err)
	}
	*s = Subject(label)
	return nil
}

func (s *Subject) UnmarshalYAML(value *yaml.Node) error {
	var id int
	if err := value.Decode(&id); err == nil {
		*s = SubjectFromID(id)
		return nil
	}
	var label string
	if err := value.Decode(&label); err != nil {
		return fmt.Errorf("subject must be a string or an integer: %w", err)
	}
	*s = Subject(label)
	return nil
}
