package props

import (
	"fmt"
	"strings"
	"time"
)

// Property is a single named value read from a PropertySource.
type Property struct {
	Key   string
	Value interface{}
}

// PropertySource exposes the declared property key/value pairs of a typed
// model (node info, planned activity, payment platform, ...). A nil value
// marks the property as unset.
type PropertySource interface {
	MarketProperties() []Property
}

// PropertyValuer is implemented by enumerated property values; it returns the
// underlying scalar placed in the demand.
type PropertyValuer interface {
	PropertyValue() interface{}
}

// DemandDecorator can add properties and constraints through a DemandBuilder.
type DemandDecorator interface {
	DecorateDemand(demand *DemandBuilder) error
}

// DemandBuilder accumulates a demand's properties and constraints from
// high-level models. The finished properties mapping and the joined
// constraint expression are handed to the transport collaborator, which
// publishes the demand on the market; the builder itself never talks to the
// market.
type DemandBuilder struct {
	keys        []string
	properties  map[string]interface{}
	constraints []string
}

func NewDemandBuilder() *DemandBuilder {
	return &DemandBuilder{properties: map[string]interface{}{}}
}

// Add reads every declared property from src into the demand. Unset (nil)
// values are skipped, timestamps become integer milliseconds since epoch and
// enumerated values collapse to their underlying scalar. Any other value that
// is not a string, an integer or a list is a programmer error.
func (b *DemandBuilder) Add(src PropertySource) error {
	for _, p := range src.MarketProperties() {
		if p.Value == nil {
			continue
		}
		v, err := normalizeValue(p.Value)
		if err != nil {
			return fmt.Errorf("property %q: %w", p.Key, err)
		}
		b.set(p.Key, v)
	}
	return nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	if pv, ok := v.(PropertyValuer); ok {
		v = pv.PropertyValue()
	}
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), nil
	case string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	case []string, []int, []int64, []interface{}:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value %v of type %T (want string, integer or list)", v, v)
	}
}

// Ensure appends a boolean constraint expression to the demand.
func (b *DemandBuilder) Ensure(constraint string) {
	b.constraints = append(b.constraints, constraint)
}

// Decorate applies each decorator in sequence, letting it add properties and
// constraints.
func (b *DemandBuilder) Decorate(decorators ...DemandDecorator) error {
	for _, d := range decorators {
		if err := d.DecorateDemand(b); err != nil {
			return err
		}
	}
	return nil
}

// Property returns the value stored under key.
func (b *DemandBuilder) Property(key string) (interface{}, bool) {
	v, ok := b.properties[key]
	return v, ok
}

// SetProperty stores a raw value under key, preserving insertion order. Used
// by the negotiation step when composing a counter-demand.
func (b *DemandBuilder) SetProperty(key string, value interface{}) {
	b.set(key, value)
}

func (b *DemandBuilder) set(key string, value interface{}) {
	if _, seen := b.properties[key]; !seen {
		b.keys = append(b.keys, key)
	}
	b.properties[key] = value
}

// PropertyKeys returns the property names in insertion order.
func (b *DemandBuilder) PropertyKeys() []string {
	return append([]string(nil), b.keys...)
}

// Properties returns a copy of the accumulated property mapping.
func (b *DemandBuilder) Properties() map[string]interface{} {
	out := make(map[string]interface{}, len(b.properties))
	for k, v := range b.properties {
		out[k] = v
	}
	return out
}

// Constraints returns the accumulated constraints AND-joined into a single
// expression.
func (b *DemandBuilder) Constraints() string {
	return joinConstraints(b.constraints)
}

func joinConstraints(constraints []string) string {
	switch len(constraints) {
	case 0:
		return "()"
	case 1:
		return constraints[0]
	default:
		return "(&" + strings.Join(constraints, "\n\t") + ")"
	}
}

// Clone returns an independent copy of the builder. The response produced
// during negotiation must not mutate the caller's demand.
func (b *DemandBuilder) Clone() *DemandBuilder {
	c := &DemandBuilder{
		keys:        append([]string(nil), b.keys...),
		properties:  make(map[string]interface{}, len(b.properties)),
		constraints: append([]string(nil), b.constraints...),
	}
	for k, v := range b.properties {
		c.properties[k] = v
	}
	return c
}

func (b *DemandBuilder) String() string {
	return fmt.Sprintf("{properties: %v, constraints: %v}", b.properties, b.constraints)
}
