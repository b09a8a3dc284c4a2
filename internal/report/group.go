package report

import "rewards/internal/core"

// CustomerGroups is an insertion-ordered map of customer ID to group.
// Iteration follows the order in which each customer was first seen.
type CustomerGroups struct {
	order  []string
	groups map[string]*core.CustomerGroup
}

func NewCustomerGroups() *CustomerGroups {
	return &CustomerGroups{groups: make(map[string]*core.CustomerGroup)}
}

// GroupByCustomer partitions txs by customer in a single pass. The first
// name seen for a customer is kept; later differing names are ignored.
func GroupByCustomer(txs []core.Transaction) *CustomerGroups {
	g := NewCustomerGroups()
	for _, tx := range txs {
		g.Add(tx)
	}
	return g
}

// Add appends tx to its customer's group, creating the group on first sight.
func (g *CustomerGroups) Add(tx core.Transaction) {
	group, ok := g.groups[tx.CustomerID]
	if !ok {
		group = &core.CustomerGroup{
			CustomerID:   tx.CustomerID,
			CustomerName: tx.CustomerName,
		}
		g.groups[tx.CustomerID] = group
		g.order = append(g.order, tx.CustomerID)
	}
	group.Transactions = append(group.Transactions, tx)
}

// Get returns the group of a customer.
func (g *CustomerGroups) Get(customerID string) (core.CustomerGroup, bool) {
	if g == nil {
		return core.CustomerGroup{}, false
	}
	group, ok := g.groups[customerID]
	if !ok {
		return core.CustomerGroup{}, false
	}
	return *group, true
}

func (g *CustomerGroups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Keys returns customer IDs in first-seen order.
func (g *CustomerGroups) Keys() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.order...)
}

// Groups returns the groups in first-seen order.
func (g *CustomerGroups) Groups() []core.CustomerGroup {
	if g == nil {
		return nil
	}
	out := make([]core.CustomerGroup, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.groups[id])
	}
	return out
}
