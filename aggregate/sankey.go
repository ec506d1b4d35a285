package aggregate

import (
	"fmt"

	"github.com/warp/retail-dashboard/dataset"
)

// Flow graph node name prefixes.
const (
	StorePrefix    = "Store"
	CategoryPrefix = "Cat"
	SupplierPrefix = "Fab"
)

// FlowLink is a weighted edge between two named nodes.
type FlowLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// Flow is a store -> category -> supplier graph weighted by distinct
// products.
type Flow struct {
	Store dataset.ID
	Nodes []string // first-appearance order, unique
	Links []FlowLink
}

// FlowOptions bounds the graph fan-out.
type FlowOptions struct {
	Store         dataset.ID // empty selects the busiest store
	TopCategories int
	TopSuppliers  int
}

// DefaultFlowOptions matches the overview board.
var DefaultFlowOptions = FlowOptions{TopCategories: 10, TopSuppliers: 5}

// BusiestStore returns the store with the most rows. Ties go to the
// smallest store ID.
func BusiestStore(sales []dataset.Sale) (dataset.ID, bool) {
	counts := ValueCounts(sales, dataset.ColStore)
	if len(counts) == 0 {
		return "", false
	}
	return counts[0].Key, true
}

// SankeyFlow builds the flow for one store: its top categories by distinct
// products, and for each category its top suppliers.
func SankeyFlow(sales []dataset.Sale, opts FlowOptions) (*Flow, error) {
	store := opts.Store
	if store == "" {
		var ok bool
		if store, ok = BusiestStore(sales); !ok {
			return nil, ErrEmptySelection
		}
	}

	var storeRows []dataset.Sale
	for _, s := range sales {
		if s.Store == store {
			storeRows = append(storeRows, s)
		}
	}
	if len(storeRows) == 0 {
		return nil, ErrEmptySelection
	}

	f := &Flow{Store: store}
	seen := make(map[string]struct{})
	addNode := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		f.Nodes = append(f.Nodes, name)
	}

	storeNode := nodeName(StorePrefix, store)
	addNode(storeNode)

	categories := NLargest(NUniqueBy(storeRows, dataset.ColCategory, dataset.ColProduct), opts.TopCategories)
	for _, cat := range categories {
		catNode := nodeName(CategoryPrefix, cat.Key)
		addNode(catNode)
		f.Links = append(f.Links, FlowLink{Source: storeNode, Target: catNode, Value: cat.Value})

		catRows := filterCategory(storeRows, cat.Key)
		suppliers := NLargest(NUniqueBy(catRows, dataset.ColManufacturer, dataset.ColProduct), opts.TopSuppliers)
		for _, fab := range suppliers {
			fabNode := nodeName(SupplierPrefix, fab.Key)
			addNode(fabNode)
			f.Links = append(f.Links, FlowLink{Source: catNode, Target: fabNode, Value: fab.Value})
		}
	}
	return f, nil
}

func nodeName(prefix string, id dataset.ID) string {
	return fmt.Sprintf("%s %s", prefix, id)
}
