package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samvad-hq/context-probe/pkg/contextapi"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func normalizeFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected json or yaml)", f)
	}
}

// printDocument pretty-prints doc to stdout. An empty document prints as null.
func (p *Prober) printDocument(doc json.RawMessage) error {
	if len(doc) == 0 {
		doc = json.RawMessage("null")
	}
	rendered, err := render(doc, p.format)
	if err != nil {
		return err
	}
	_, err = p.out.Write(rendered)
	return err
}

func render(doc json.RawMessage, format string) ([]byte, error) {
	if format == FormatYAML {
		dec := json.NewDecoder(bytes.NewReader(doc))
		dec.UseNumber()
		node, err := yamlNode(dec)
		if err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// yamlNode converts the next JSON value into a YAML node. Key order and
// number literals are kept as they appear in the document.
func yamlNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := yamlNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				val, err := yamlNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", v)
		}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case json.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// printFailure writes a human-readable description of err to stderr. JSON
// error bodies are pretty-printed below the message; other bodies are already
// summarized in it.
func (p *Prober) printFailure(probe Probe, err error) {
	fmt.Fprintf(p.errOut, "%s failed: %v\n", probe.Name, err)

	var apiErr *contextapi.APIResponseError
	if !errors.As(err, &apiErr) {
		return
	}
	if _, ok := apiErr.JSONBody(); !ok {
		return
	}
	if rendered, rerr := render(apiErr.Body, p.format); rerr == nil {
		fmt.Fprintf(p.errOut, "response body:\n%s", rendered)
	}
}
