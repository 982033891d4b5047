package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes v in the selected format. text prints the human form.
// With --output the rendered bytes replace the file atomically.
func (a *app) render(v any, text func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf, a.format, v, text); err != nil {
		return fail("encoding output", err)
	}

	if a.output != "" {
		if err := atomic.WriteFile(a.output, &buf); err != nil {
			return fail("writing output", err)
		}
		return nil
	}
	if _, err := a.stdout.Write(buf.Bytes()); err != nil {
		return fail("writing output", err)
	}
	return nil
}

func encode(w io.Writer, format string, v any, text func(w io.Writer) error) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	case formatText, "":
		return text(w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
