package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// AddressUnifier collects named address bindings and equivalence edges across a
// dependency graph and collapses them into concrete values in a single pass.
// It is not safe for concurrent use; edges are fed to it after every manifest
// of the graph has been loaded.
type AddressUnifier struct {
	index  map[AddressNode]int
	nodes  []unifierNode
	parent []int
	rank   []int
}

type unifierNode struct {
	id       AddressNode
	declared *AccountAddress
	assigned []assignment
}

type assignment struct {
	addr AccountAddress
	by   PackageName
}

// AddressClass is one equivalence class after collapse.
type AddressClass struct {
	// Members are in canonical order.
	Members []AddressNode
	// Value is nil when no member carries a concrete address.
	Value *AccountAddress
}

// AddressResolution is the collapsed state of an AddressUnifier.
type AddressResolution struct {
	Classes []AddressClass
	values  map[AddressNode]*AccountAddress
}

// NewAddressUnifier returns an empty unifier.
func NewAddressUnifier() *AddressUnifier {
	return &AddressUnifier{index: make(map[AddressNode]int)}
}

func (u *AddressUnifier) node(n AddressNode) int {
	if i, ok := u.index[n]; ok {
		return i
	}
	i := len(u.nodes)
	u.index[n] = i
	u.nodes = append(u.nodes, unifierNode{id: n})
	u.parent = append(u.parent, i)
	u.rank = append(u.rank, 0)
	return i
}

func (u *AddressUnifier) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// Declare registers a package's own declaration. A nil addr is a placeholder.
func (u *AddressUnifier) Declare(n AddressNode, addr *AccountAddress) {
	i := u.node(n)
	if addr == nil {
		u.nodes[i].declared = nil
		return
	}
	v := *addr
	u.nodes[i].declared = &v
}

// DeclareTable registers every entry of a package's address table.
func (u *AddressUnifier) DeclareTable(pkg PackageName, decls AddressDeclarations) {
	for _, name := range decls.Names() {
		u.Declare(AddressNode{Package: pkg, Name: name}, decls[name])
	}
}

// Assign records that consumer by bound n to addr across an edge.
// Assignments take precedence over n's own declaration.
func (u *AddressUnifier) Assign(n AddressNode, addr AccountAddress, by PackageName) {
	i := u.node(n)
	u.nodes[i].assigned = append(u.nodes[i].assigned, assignment{addr: addr, by: by})
}

// Union merges the classes of a and b. Repeated unions are no-ops.
func (u *AddressUnifier) Union(a, b AddressNode) {
	ra, rb := u.find(u.node(a)), u.find(u.node(b))
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// AddEdge feeds the assignments and renames of a resolved edge.
func (u *AddressUnifier) AddEdge(res EdgeResolution) {
	for _, a := range res.Assignments {
		u.Assign(AddressNode{Package: res.Edge.Dependency, Name: a.Name}, a.Address, res.Edge.Consumer)
	}
	for _, r := range res.Renames {
		u.Union(r.Consumer, r.Dependency)
	}
}

// Collapse resolves every equivalence class to at most one concrete value.
// Nodes are visited in canonical order so results and errors are reproducible.
// A class whose members carry two different effective values fails with ErrAddressConflict.
func (u *AddressUnifier) Collapse() (*AddressResolution, error) {
	order := make([]AddressNode, 0, len(u.nodes))
	for _, n := range u.nodes {
		order = append(order, n.id)
	}
	slices.SortFunc(order, AddressNode.Compare)

	byRoot := make(map[int]*AddressClass)
	var roots []int
	values := make(map[int][]AccountAddress)

	for _, id := range order {
		i := u.index[id]
		root := u.find(i)
		class, ok := byRoot[root]
		if !ok {
			class = &AddressClass{}
			byRoot[root] = class
			roots = append(roots, root)
		}
		class.Members = append(class.Members, id)

		for _, v := range u.nodes[i].effective() {
			if !slices.Contains(values[root], v) {
				values[root] = append(values[root], v)
			}
		}
	}

	res := &AddressResolution{values: make(map[AddressNode]*AccountAddress, len(order))}
	for _, root := range roots {
		class := byRoot[root]
		vals := values[root]
		if len(vals) > 1 {
			return nil, u.conflict(class, vals)
		}
		if len(vals) == 1 {
			v := vals[0]
			class.Value = &v
		}
		for _, m := range class.Members {
			res.values[m] = class.Value
		}
		res.Classes = append(res.Classes, *class)
	}
	return res, nil
}

func (n *unifierNode) effective() []AccountAddress {
	if len(n.assigned) == 0 {
		if n.declared == nil {
			return nil
		}
		return []AccountAddress{*n.declared}
	}
	var out []AccountAddress
	for _, a := range n.assigned {
		if !slices.Contains(out, a.addr) {
			out = append(out, a.addr)
		}
	}
	return out
}

func (u *AddressUnifier) conflict(class *AddressClass, vals []AccountAddress) error {
	members := make([]string, 0, len(class.Members))
	for _, m := range class.Members {
		members = append(members, m.String())
	}
	values := make([]string, 0, len(vals))
	for _, v := range vals {
		values = append(values, v.String())
	}
	slices.Sort(values)

	err := zerr.Wrap(ErrAddressConflict, "named addresses resolve to different values")
	err = zerr.With(err, "package", class.Members[0].Package.String())
	err = zerr.With(err, "address", class.Members[0].Name.String())
	err = zerr.With(err, "members", members)
	return zerr.With(err, "values", values)
}

// Lookup returns the collapsed value of n. The second result is false when n was never registered.
func (r *AddressResolution) Lookup(n AddressNode) (*AccountAddress, bool) {
	v, ok := r.values[n]
	return v, ok
}

// Table returns the effective address table of pkg.
func (r *AddressResolution) Table(pkg PackageName) AddressDeclarations {
	out := AddressDeclarations{}
	for n, v := range r.values {
		if n.Package != pkg {
			continue
		}
		if v == nil {
			out[n.Name] = nil
			continue
		}
		addr := *v
		out[n.Name] = &addr
	}
	return out
}

// Unresolved returns the classes without a concrete value.
func (r *AddressResolution) Unresolved() []AddressClass {
	var out []AddressClass
	for _, c := range r.Classes {
		if c.Value == nil {
			out = append(out, c)
		}
	}
	return out
}
