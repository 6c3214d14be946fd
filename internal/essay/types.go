package essay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/giantswarm/essay-feedback/internal/apperror"
)

// JSON keys of a record. "cometarios" keeps the spelling used by the
// files this tool reads.
const (
	keyTheme        = "tema"
	keyText         = "texto"
	keyCompetencies = "competencias"
	keyCommentary   = "cometarios"
)

// Batch is the ordered list of records read from one input file.
type Batch []Record

// Record is one graded essay.
//
// Records decoded from JSON remember their original key order and the raw
// value of every key, so re-encoding changes nothing but the commentary.
// Problems with a record's shape are kept on the record and reported by
// Validate, leaving the rest of the batch usable.
type Record struct {
	Theme        string
	Text         string
	Competencies []Competency
	Commentary   string

	raw           json.RawMessage // set when the value is not an object
	fields        []field
	missing       []string
	invalid       []string
	hasCommentary bool
}

// Competency is a rubric dimension and the score it received (0-200).
// Score keeps the number literal from the input.
type Competency struct {
	Name  string      `json:"competencia"`
	Score json.Number `json:"nota"`

	incomplete bool
}

type field struct {
	key   string
	value json.RawMessage
}

// UnmarshalJSON decodes a competency, noting whether either key was absent.
func (c *Competency) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name  *string      `json:"competencia"`
		Score *json.Number `json:"nota"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Competency{incomplete: aux.Name == nil || aux.Score == nil}
	if aux.Name != nil {
		c.Name = *aux.Name
	}
	if aux.Score != nil {
		c.Score = *aux.Score
	}
	return nil
}

// UnmarshalJSON decodes a record object, keeping key order and unknown keys.
func (r *Record) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*r = Record{missing: []string{keyTheme, keyText, keyCompetencies}}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		*r = Record{raw: append(json.RawMessage(nil), data...)}
		return nil
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.setField(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	for _, key := range []string{keyTheme, keyText, keyCompetencies} {
		if !r.hasKey(key) {
			r.missing = append(r.missing, key)
		}
	}
	return nil
}

func (r *Record) setField(key string, raw json.RawMessage) {
	var err error
	switch key {
	case keyTheme:
		r.Theme = ""
		err = json.Unmarshal(raw, &r.Theme)
	case keyText:
		r.Text = ""
		err = json.Unmarshal(raw, &r.Text)
	case keyCompetencies:
		r.Competencies = nil
		err = json.Unmarshal(raw, &r.Competencies)
	case keyCommentary:
		var s *string
		err = json.Unmarshal(raw, &s)
		r.Commentary, r.hasCommentary = "", err == nil && s != nil
		if r.hasCommentary {
			r.Commentary = *s
		}
	}

	// A later duplicate replaces the verdict on an earlier one.
	r.invalid = slices.DeleteFunc(r.invalid, func(k string) bool { return k == key })
	if err != nil {
		r.invalid = append(r.invalid, key)
	}

	// Duplicate keys keep their first position; the last value wins.
	for i := range r.fields {
		if r.fields[i].key == key {
			r.fields[i].value = raw
			return
		}
	}
	r.fields = append(r.fields, field{key: key, value: raw})
}

func (r *Record) hasKey(key string) bool {
	for _, f := range r.fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the record in its original key order, writing every
// decoded value back as read except the commentary. Records built in code
// use tema, texto, competencias, cometarios.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}

	keys := make([]string, 0, len(r.fields)+1)
	raw := make(map[string]json.RawMessage, len(r.fields))
	if r.fields == nil {
		keys = append(keys, keyTheme, keyText, keyCompetencies)
	}
	for _, f := range r.fields {
		keys = append(keys, f.key)
		raw[f.key] = f.value
	}
	if _, ok := raw[keyCommentary]; !ok && (r.hasCommentary || r.Commentary != "") {
		keys = append(keys, keyCommentary)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalLiteral(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, decoded := raw[key]
		switch {
		case key == keyCommentary && (r.hasCommentary || r.Commentary != ""):
			v, err = marshalLiteral(r.Commentary)
		case decoded:
			// written back as read
		case key == keyTheme:
			v, err = marshalLiteral(r.Theme)
		case key == keyText:
			v, err = marshalLiteral(r.Text)
		case key == keyCompetencies:
			v, err = marshalLiteral(r.competencyList())
		}
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) competencyList() []Competency {
	if r.Competencies == nil {
		return []Competency{}
	}
	return r.Competencies
}

// Validate reports keys the record needs but did not carry, and keys whose
// value has the wrong JSON type.
func (r *Record) Validate() error {
	if r.raw != nil {
		return apperror.New(apperror.KindValidation, "A redação não é um objeto JSON")
	}

	var problems []string
	missing := append([]string(nil), r.missing...)
	for i, c := range r.Competencies {
		if c.incomplete {
			missing = append(missing, fmt.Sprintf("%s[%d]", keyCompetencies, i+1))
		}
	}
	if len(missing) > 0 {
		problems = append(problems, "não contém os campos obrigatórios: "+strings.Join(missing, ", "))
	}
	if len(r.invalid) > 0 {
		problems = append(problems, "tem campos com tipo inválido: "+strings.Join(r.invalid, ", "))
	}
	if len(problems) > 0 {
		return apperror.New(apperror.KindValidation, "A redação %s", strings.Join(problems, "; "))
	}
	return nil
}

// AppendCommentary adds an evaluator reply to the commentary. A blank
// commentary is replaced; otherwise the reply follows a blank line.
func (r *Record) AppendCommentary(reply string) {
	if strings.TrimSpace(r.Commentary) == "" {
		r.Commentary = reply
	} else {
		r.Commentary += "\n\n" + reply
	}
	r.hasCommentary = true
}
