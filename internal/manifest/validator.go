package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "template.schema.json"

//go:embed schema/template.schema.json
var schemaBytes []byte

// manifestSchema is compiled on first use and shared by every validation.
var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding embedded manifest schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("registering manifest schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling manifest schema: %w", err)
	}
	return s, nil
})

var issuePrinter = message.NewPrinter(language.English)

// ValidationIssue is one schema violation in a manifest.
type ValidationIssue struct {
	Path    string // JSON pointer into the manifest, e.g. "/files/0"; empty for the root
	Message string
	Keyword string // failing schema keyword, e.g. "required"
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationResult is the outcome of checking one manifest.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// Summary joins the issues into one line for error messages.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// Validate checks a _ptool.yaml document against the manifest schema. An
// empty document counts as an empty mapping. The error return is reserved
// for documents that are not YAML at all and for schema loading failures;
// schema violations are reported in the result.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := manifestSchema()
	if err != nil {
		return nil, err
	}

	inst, err := instanceOf(data)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	return &ValidationResult{Issues: issuesOf(ve)}, nil
}

// ValidateFile reads and validates the manifest at path.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// instanceOf decodes YAML and re-reads it through the validator's JSON
// decoder so numbers arrive as json.Number.
func instanceOf(data []byte) (interface{}, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	buf, err := json.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, fmt.Errorf("converting manifest to JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(buf))
}

// jsonCompatible rewrites YAML mappings with non-string keys so the schema
// can report them instead of encoding failing.
func jsonCompatible(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = jsonCompatible(item)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []interface{}:
		for i, item := range t {
			t[i] = jsonCompatible(item)
		}
		return t
	}
	return v
}

// issuesOf flattens the cause tree to its leaves, dropping combinator
// keywords that only say a branch failed. Issues come back sorted by path
// and deduplicated.
func issuesOf(root *jsonschema.ValidationError) []ValidationIssue {
	seen := map[ValidationIssue]bool{}
	var issues []ValidationIssue

	var walk func(ve *jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		for _, c := range ve.Causes {
			walk(c)
		}
		if len(ve.Causes) > 0 || ve.ErrorKind == nil {
			return
		}

		kw := ve.ErrorKind.KeywordPath()
		if len(kw) == 0 {
			return
		}
		switch keyword := kw[len(kw)-1]; keyword {
		case "oneOf", "anyOf", "allOf", "$ref":
			return
		default:
			issue := ValidationIssue{
				Path:    pointer(ve.InstanceLocation),
				Message: ve.ErrorKind.LocalizedString(issuePrinter),
				Keyword: keyword,
			}
			if !seen[issue] {
				seen[issue] = true
				issues = append(issues, issue)
			}
		}
	}
	walk(root)

	if len(issues) == 0 {
		return []ValidationIssue{{Message: root.Error()}}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues
}

func pointer(location []string) string {
	if len(location) == 0 {
		return ""
	}
	return "/" + strings.Join(location, "/")
}
