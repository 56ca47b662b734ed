// Package system describes the experiment systems under comparison.
package system

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Descriptor identifies one compared system. It is carried alongside the
// comparison results for traceability and never interpreted by the tests.
type Descriptor struct {
	Path        []string          `json:"path" yaml:"path" validate:"dive,required"`
	Nick        string            `json:"nick" yaml:"nick" validate:"required"`
	Disp        string            `json:"disp,omitempty" yaml:"disp,omitempty"`
	Gold        string            `json:"gold,omitempty" yaml:"gold,omitempty"`
	TestCorpus  string            `json:"test_corpus,omitempty" yaml:"test_corpus,omitempty"`
	TrainCorpus string            `json:"train_corpus,omitempty" yaml:"train_corpus,omitempty"`
	Opts        map[string]string `json:"opts,omitempty" yaml:"opts,omitempty"`
}

// Validate checks the required descriptor fields.
func (d Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid system descriptor %q: %w", d.Nick, err)
	}
	return nil
}

// Label is the human readable name: Disp when set, Nick otherwise.
func (d Descriptor) Label() string {
	if d.Disp != "" {
		return d.Disp
	}
	return d.Nick
}

// Key renders a canonical identity string. Two descriptors with the same
// path, gold, corpora and options have the same key regardless of map order.
// Nick and Disp are presentation only and do not take part.
func (d Descriptor) Key() string {
	var b strings.Builder
	b.WriteString("path=")
	b.WriteString(strings.Join(d.Path, "/"))
	writeField(&b, "gold", d.Gold)
	writeField(&b, "test_corpus", d.TestCorpus)
	writeField(&b, "train_corpus", d.TrainCorpus)

	keys := make([]string, 0, len(d.Opts))
	for k := range d.Opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(&b, k, d.Opts[k])
	}
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(";")
	b.WriteString(name)
	b.WriteString("=")
	b.WriteString(value)
}

// WithoutCorpus drops the corpus-specific fields so that the same system
// evaluated on different corpora compares equal.
func (d Descriptor) WithoutCorpus() Descriptor {
	out := d
	out.Gold = ""
	out.TestCorpus = ""
	out.TrainCorpus = ""
	out.Path = append([]string(nil), d.Path...)
	if d.Opts != nil {
		out.Opts = make(map[string]string, len(d.Opts))
		for k, v := range d.Opts {
			out.Opts[k] = v
		}
	}
	return out
}

// ParseOpts turns "key=value" pairs into an options map.
func ParseOpts(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("option %q is not of the form key=value", pair)
		}
		opts[k] = v
	}
	return opts, nil
}

// ParsePath splits a dotted or slash separated path into segments.
func ParsePath(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '.' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}
