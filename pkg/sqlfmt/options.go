package sqlfmt

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// optionNameRe is checked after upper-casing. Option names come from
// configuration, never from end users.
var optionNameRe = regexp.MustCompile(`^[A-Z_]+$`)

// Option is a single KEY value pair of an ATTACH or CREATE SECRET clause.
type Option struct {
	Name  string
	Value any
}

// Opt builds an Option.
func Opt(name string, value any) Option {
	return Option{Name: name, Value: value}
}

// Options is an ordered option list. Order is preserved when rendering.
type Options []Option

// OptionName upper-cases name and validates it.
func OptionName(name string) (string, error) {
	upper := strings.ToUpper(name)
	if !optionNameRe.MatchString(upper) {
		return "", errors.New(ErrInvalidOption, "invalid option name", nil).AddContext("name", name)
	}
	return upper, nil
}

// Render returns "NAME1 value1, NAME2 value2" in list order.
func (o Options) Render() (string, error) {
	parts := make([]string, 0, len(o))
	for _, opt := range o {
		name, err := OptionName(opt.Name)
		if err != nil {
			return "", err
		}
		value, err := Quote(opt.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, name+" "+value)
	}
	return strings.Join(parts, ", "), nil
}

// Validate checks every name and value without rendering.
func (o Options) Validate() error {
	_, err := o.Render()
	return err
}

// Get returns the value of the first option matching name case-insensitively.
func (o Options) Get(name string) (any, bool) {
	for _, opt := range o {
		if strings.EqualFold(opt.Name, name) {
			return opt.Value, true
		}
	}
	return nil, false
}

// Merge returns o overlaid with other. A name already present in o keeps its
// position and takes other's value; new names are appended in other's order.
func (o Options) Merge(other Options) Options {
	merged := make(Options, len(o), len(o)+len(other))
	copy(merged, o)
	for _, opt := range other {
		replaced := false
		for i := range merged {
			if strings.EqualFold(merged[i].Name, opt.Name) {
				merged[i].Value = opt.Value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, opt)
		}
	}
	return merged
}

// UnmarshalYAML decodes a YAML mapping keeping document order.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*o = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.Newf(ErrInvalidOption, "line %d: options must be a mapping", node.Line)
	}

	opts := make(Options, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return errors.Newf(ErrInvalidOption, "line %d: option %q must be a scalar", val.Line, key.Value)
		}
		value, err := decodeScalar(val)
		if err != nil {
			return errors.New(ErrInvalidOption, fmt.Sprintf("line %d: option %q", val.Line, key.Value), err)
		}
		opts = append(opts, Opt(key.Value, value))
	}
	*o = opts
	return nil
}

func decodeScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		err := node.Decode(&b)
		return b, err
	case "!!int":
		var i int64
		err := node.Decode(&i)
		return i, err
	case "!!float":
		var f float64
		err := node.Decode(&f)
		return f, err
	case "!!timestamp":
		var ts time.Time
		err := node.Decode(&ts)
		return ts, err
	default:
		return node.Value, nil
	}
}

// MarshalYAML encodes the options as a mapping in list order.
func (o Options) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, opt := range o {
		var val yaml.Node
		if err := val.Encode(opt.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: opt.Name},
			&val,
		)
	}
	return node, nil
}

// ParseJSON decodes a flat JSON object into Options in document order.
// Integral numbers become int64, other numbers float64.
func ParseJSON(s string) (Options, error) {
	if !gjson.Valid(s) {
		return nil, errors.New(ErrInvalidOption, "options are not valid JSON", nil)
	}
	root := gjson.Parse(s)
	if !root.IsObject() {
		return nil, errors.New(ErrInvalidOption, "options must be a JSON object", nil)
	}

	var (
		opts Options
		err  error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
			opts = append(opts, Opt(key.String(), nil))
		case gjson.True, gjson.False:
			opts = append(opts, Opt(key.String(), value.Bool()))
		case gjson.Number:
			if f := value.Float(); f == float64(value.Int()) && !strings.ContainsAny(value.Raw, ".eE") {
				opts = append(opts, Opt(key.String(), value.Int()))
			} else {
				opts = append(opts, Opt(key.String(), f))
			}
		case gjson.String:
			opts = append(opts, Opt(key.String(), value.String()))
		default:
			err = errors.New(ErrInvalidOption, "option values must be scalars", nil).AddContext("name", key.String())
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return opts, nil
}
