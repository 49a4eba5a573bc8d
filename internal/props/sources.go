package props

import "time"

// NodeInfo carries the requestor node's identity properties.
type NodeInfo struct {
	Name      string
	SubnetTag string
}

func (n NodeInfo) MarketProperties() []Property {
	ps := []Property{{Key: KeyNodeName, Value: n.Name}}
	if n.SubnetTag != "" {
		ps = append(ps, Property{Key: KeySubnetTag, Value: n.SubnetTag})
	}
	return ps
}

// ActivityInfo declares the planned activity, most importantly its
// expiration, which drives the mid-agreement payment negotiation.
type ActivityInfo struct {
	Expiration time.Time
}

func (a ActivityInfo) MarketProperties() []Property {
	var exp interface{}
	if !a.Expiration.IsZero() {
		exp = a.Expiration
	}
	return []Property{{Key: KeyActivityExpiration, Value: exp}}
}
