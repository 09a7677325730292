// Package matching computes maximum-weight matchings on general
// undirected graphs with the primal-dual blossom method (Galil 1986).
// The computation is fully deterministic: vertices are scanned in
// ascending index order and edges in input order.
package matching

// WeightedEdge connects vertices U and V with an integer weight.
// Parallel edges are allowed; self loops are not.
type WeightedEdge struct {
	U, V   int
	Weight int
}

type matcher struct {
	nvertex          int
	edges            []WeightedEdge
	maxweight        int
	endpoint         []int   // endpoint[p] = vertex of edge p/2 at side p%2
	neighbend        [][]int // remote endpoints incident to a vertex
	mate             []int   // remote endpoint of the matched edge, -1 if free
	label            []int   // 0 free, 1 S, 2 T (per vertex and blossom)
	labelend         []int
	inblossom        []int
	blossomparent    []int
	blossomchilds    [][]int
	blossombase      []int
	blossomendps     [][]int
	bestedge         []int
	blossombestedges [][]int
	unusedblossoms   []int
	dualvar          []int
	allowedge        []bool
	queue            []int
}

// MaxWeightMatching returns mate[v] for every vertex 0..n-1, where
// mate[v] is the matched partner vertex or -1. Only matchings of
// maximum total weight are returned; cardinality is not forced.
func MaxWeightMatching(n int, edges []WeightedEdge) []int {
	mate := make([]int, n)
	for i := range mate {
		mate[i] = -1
	}
	if len(edges) == 0 || n == 0 {
		return mate
	}

	m := &matcher{nvertex: n, edges: edges}
	for _, e := range edges {
		if e.Weight > m.maxweight {
			m.maxweight = e.Weight
		}
	}
	nedge := len(edges)
	m.endpoint = make([]int, 2*nedge)
	for p := 0; p < 2*nedge; p++ {
		if p%2 == 0 {
			m.endpoint[p] = edges[p/2].U
		} else {
			m.endpoint[p] = edges[p/2].V
		}
	}
	m.neighbend = make([][]int, n)
	for k, e := range edges {
		m.neighbend[e.U] = append(m.neighbend[e.U], 2*k+1)
		m.neighbend[e.V] = append(m.neighbend[e.V], 2*k)
	}
	m.mate = mate
	m.label = make([]int, 2*n)
	m.labelend = make([]int, 2*n)
	m.inblossom = make([]int, n)
	m.blossomparent = make([]int, 2*n)
	m.blossomchilds = make([][]int, 2*n)
	m.blossombase = make([]int, 2*n)
	m.blossomendps = make([][]int, 2*n)
	m.bestedge = make([]int, 2*n)
	m.blossombestedges = make([][]int, 2*n)
	m.dualvar = make([]int, 2*n)
	m.allowedge = make([]bool, nedge)
	for i := 0; i < 2*n; i++ {
		m.labelend[i] = -1
		m.blossomparent[i] = -1
		m.bestedge[i] = -1
		m.blossombase[i] = -1
	}
	for v := 0; v < n; v++ {
		m.inblossom[v] = v
		m.blossombase[v] = v
		m.dualvar[v] = m.maxweight
	}
	for b := 2*n - 1; b >= n; b-- {
		m.unusedblossoms = append(m.unusedblossoms, b)
	}

	m.run()

	for v := 0; v < n; v++ {
		if m.mate[v] >= 0 {
			m.mate[v] = m.endpoint[m.mate[v]]
		}
	}
	for v := 0; v < n; v++ {
		if m.mate[v] != -1 && m.mate[m.mate[v]] != v {
			panic("matching: inconsistent mate array")
		}
	}
	return m.mate
}

func (m *matcher) slack(k int) int {
	e := m.edges[k]
	return m.dualvar[e.U] + m.dualvar[e.V] - 2*e.Weight
}

func (m *matcher) blossomLeaves(b int, out []int) []int {
	if b < m.nvertex {
		return append(out, b)
	}
	for _, t := range m.blossomchilds[b] {
		out = m.blossomLeaves(t, out)
	}
	return out
}

// at indexes a blossom child list with python-style wrapping.
func at(list []int, j int) int {
	l := len(list)
	return list[((j%l)+l)%l]
}

func (m *matcher) assignLabel(w, t, p int) {
	b := m.inblossom[w]
	m.label[w], m.label[b] = t, t
	m.labelend[w], m.labelend[b] = p, p
	m.bestedge[w], m.bestedge[b] = -1, -1
	if t == 1 {
		m.queue = m.blossomLeaves(b, m.queue)
	} else if t == 2 {
		base := m.blossombase[b]
		m.assignLabel(m.endpoint[m.mate[base]], 1, m.mate[base]^1)
	}
}

// scanBlossom traces back from v and w to a common ancestor of the
// alternating trees, or returns -1 if the trees are rooted apart.
func (m *matcher) scanBlossom(v, w int) int {
	var path []int
	base := -1
	for v != -1 || w != -1 {
		b := m.inblossom[v]
		if m.label[b]&4 != 0 {
			base = m.blossombase[b]
			break
		}
		path = append(path, b)
		m.label[b] = 5
		if m.labelend[b] == -1 {
			v = -1
		} else {
			v = m.endpoint[m.labelend[b]]
			b = m.inblossom[v]
			v = m.endpoint[m.labelend[b]]
		}
		if w != -1 {
			v, w = w, v
		}
	}
	for _, b := range path {
		m.label[b] = 1
	}
	return base
}

// addBlossom shrinks the cycle closed by edge k through base into a
// fresh blossom.
func (m *matcher) addBlossom(base, k int) {
	v, w := m.edges[k].U, m.edges[k].V
	bb := m.inblossom[base]
	bv := m.inblossom[v]
	bw := m.inblossom[w]
	b := m.unusedblossoms[len(m.unusedblossoms)-1]
	m.unusedblossoms = m.unusedblossoms[:len(m.unusedblossoms)-1]
	m.blossombase[b] = base
	m.blossomparent[b] = -1
	m.blossomparent[bb] = b
	var path, endps []int
	for bv != bb {
		m.blossomparent[bv] = b
		path = append(path, bv)
		endps = append(endps, m.labelend[bv])
		v = m.endpoint[m.labelend[bv]]
		bv = m.inblossom[v]
	}
	path = append(path, bb)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	for i, j := 0, len(endps)-1; i < j; i, j = i+1, j-1 {
		endps[i], endps[j] = endps[j], endps[i]
	}
	endps = append(endps, 2*k)
	for bw != bb {
		m.blossomparent[bw] = b
		path = append(path, bw)
		endps = append(endps, m.labelend[bw]^1)
		w = m.endpoint[m.labelend[bw]]
		bw = m.inblossom[w]
	}
	m.blossomchilds[b] = path
	m.blossomendps[b] = endps
	m.label[b] = 1
	m.labelend[b] = m.labelend[bb]
	m.dualvar[b] = 0
	for _, lv := range m.blossomLeaves(b, nil) {
		if m.label[m.inblossom[lv]] == 2 {
			m.queue = append(m.queue, lv)
		}
		m.inblossom[lv] = b
	}
	bestedgeto := make([]int, 2*m.nvertex)
	for i := range bestedgeto {
		bestedgeto[i] = -1
	}
	for _, pbv := range path {
		var nblists [][]int
		if m.blossombestedges[pbv] == nil {
			for _, lv := range m.blossomLeaves(pbv, nil) {
				var nblist []int
				for _, p := range m.neighbend[lv] {
					nblist = append(nblist, p/2)
				}
				nblists = append(nblists, nblist)
			}
		} else {
			nblists = [][]int{m.blossombestedges[pbv]}
		}
		for _, nblist := range nblists {
			for _, nk := range nblist {
				i, j := m.edges[nk].U, m.edges[nk].V
				if m.inblossom[j] == b {
					i, j = j, i
				}
				bj := m.inblossom[j]
				if bj != b && m.label[bj] == 1 &&
					(bestedgeto[bj] == -1 || m.slack(nk) < m.slack(bestedgeto[bj])) {
					bestedgeto[bj] = nk
				}
			}
		}
		m.blossombestedges[pbv] = nil
		m.bestedge[pbv] = -1
	}
	var kept []int
	for _, nk := range bestedgeto {
		if nk != -1 {
			kept = append(kept, nk)
		}
	}
	m.blossombestedges[b] = kept
	m.bestedge[b] = -1
	for _, nk := range kept {
		if m.bestedge[b] == -1 || m.slack(nk) < m.slack(m.bestedge[b]) {
			m.bestedge[b] = nk
		}
	}
}

// expandBlossom dissolves a blossom whose dual variable dropped to
// zero, relabeling its children when it happens mid-stage.
func (m *matcher) expandBlossom(b int, endstage bool) {
	for _, s := range m.blossomchilds[b] {
		m.blossomparent[s] = -1
		if s < m.nvertex {
			m.inblossom[s] = s
		} else if endstage && m.dualvar[s] == 0 {
			m.expandBlossom(s, endstage)
		} else {
			for _, lv := range m.blossomLeaves(s, nil) {
				m.inblossom[lv] = s
			}
		}
	}
	if !endstage && m.label[b] == 2 {
		entrychild := m.inblossom[m.endpoint[m.labelend[b]^1]]
		j := 0
		for i, c := range m.blossomchilds[b] {
			if c == entrychild {
				j = i
				break
			}
		}
		var jstep, endptrick int
		if j&1 != 0 {
			j -= len(m.blossomchilds[b])
			jstep = 1
			endptrick = 0
		} else {
			jstep = -1
			endptrick = 1
		}
		p := m.labelend[b]
		for j != 0 {
			m.label[m.endpoint[p^1]] = 0
			m.label[m.endpoint[at(m.blossomendps[b], j-endptrick)^endptrick^1]] = 0
			m.assignLabel(m.endpoint[p^1], 2, p)
			m.allowedge[at(m.blossomendps[b], j-endptrick)/2] = true
			j += jstep
			p = at(m.blossomendps[b], j-endptrick) ^ endptrick
			m.allowedge[p/2] = true
			j += jstep
		}
		bv := at(m.blossomchilds[b], j)
		m.label[m.endpoint[p^1]], m.label[bv] = 2, 2
		m.labelend[m.endpoint[p^1]], m.labelend[bv] = p, p
		m.bestedge[bv] = -1
		j += jstep
		for at(m.blossomchilds[b], j) != entrychild {
			bv = at(m.blossomchilds[b], j)
			if m.label[bv] == 1 {
				j += jstep
				continue
			}
			var lv int
			for _, lv = range m.blossomLeaves(bv, nil) {
				if m.label[lv] != 0 {
					break
				}
			}
			if m.label[lv] != 0 {
				m.label[lv] = 0
				m.label[m.endpoint[m.mate[m.blossombase[bv]]]] = 0
				m.assignLabel(lv, 2, m.labelend[lv])
			}
			j += jstep
		}
	}
	m.label[b] = -1
	m.labelend[b] = -1
	m.blossomchilds[b] = nil
	m.blossomendps[b] = nil
	m.blossombase[b] = -1
	m.blossombestedges[b] = nil
	m.bestedge[b] = -1
	m.unusedblossoms = append(m.unusedblossoms, b)
}

// augmentBlossom swaps matched and unmatched edges around the blossom
// so that vertex v becomes its new base.
func (m *matcher) augmentBlossom(b, v int) {
	t := v
	for m.blossomparent[t] != b {
		t = m.blossomparent[t]
	}
	if t >= m.nvertex {
		m.augmentBlossom(t, v)
	}
	i := 0
	for idx, c := range m.blossomchilds[b] {
		if c == t {
			i = idx
			break
		}
	}
	j := i
	var jstep, endptrick int
	if i&1 != 0 {
		j -= len(m.blossomchilds[b])
		jstep = 1
		endptrick = 0
	} else {
		jstep = -1
		endptrick = 1
	}
	for j != 0 {
		j += jstep
		t = at(m.blossomchilds[b], j)
		p := at(m.blossomendps[b], j-endptrick) ^ endptrick
		if t >= m.nvertex {
			m.augmentBlossom(t, m.endpoint[p])
		}
		j += jstep
		t = at(m.blossomchilds[b], j)
		if t >= m.nvertex {
			m.augmentBlossom(t, m.endpoint[p^1])
		}
		m.mate[m.endpoint[p]] = p ^ 1
		m.mate[m.endpoint[p^1]] = p
	}
	m.blossomchilds[b] = append(m.blossomchilds[b][i:], m.blossomchilds[b][:i]...)
	m.blossomendps[b] = append(m.blossomendps[b][i:], m.blossomendps[b][:i]...)
	m.blossombase[b] = m.blossombase[m.blossomchilds[b][0]]
}

// augmentMatching flips the alternating paths that meet on edge k.
func (m *matcher) augmentMatching(k int) {
	starts := [2][2]int{{m.edges[k].U, 2*k + 1}, {m.edges[k].V, 2 * k}}
	for _, sp := range starts {
		s, p := sp[0], sp[1]
		for {
			bs := m.inblossom[s]
			if bs >= m.nvertex {
				m.augmentBlossom(bs, s)
			}
			m.mate[s] = p
			if m.labelend[bs] == -1 {
				break
			}
			t := m.endpoint[m.labelend[bs]]
			bt := m.inblossom[t]
			s = m.endpoint[m.labelend[bt]]
			j := m.endpoint[m.labelend[bt]^1]
			if bt >= m.nvertex {
				m.augmentBlossom(bt, j)
			}
			m.mate[j] = m.labelend[bt]
			p = m.labelend[bt] ^ 1
		}
	}
}

func (m *matcher) run() {
	n := m.nvertex
	for iter := 0; iter < n; iter++ {
		for i := range m.label {
			m.label[i] = 0
		}
		for i := range m.bestedge {
			m.bestedge[i] = -1
		}
		for b := n; b < 2*n; b++ {
			m.blossombestedges[b] = nil
		}
		for i := range m.allowedge {
			m.allowedge[i] = false
		}
		m.queue = m.queue[:0]
		for v := 0; v < n; v++ {
			if m.mate[v] == -1 && m.label[m.inblossom[v]] == 0 {
				m.assignLabel(v, 1, -1)
			}
		}
		augmented := false
		for {
			for len(m.queue) > 0 && !augmented {
				v := m.queue[len(m.queue)-1]
				m.queue = m.queue[:len(m.queue)-1]
				for _, p := range m.neighbend[v] {
					k := p / 2
					w := m.endpoint[p]
					if m.inblossom[v] == m.inblossom[w] {
						continue
					}
					kslack := 0
					if !m.allowedge[k] {
						kslack = m.slack(k)
						if kslack <= 0 {
							m.allowedge[k] = true
						}
					}
					if m.allowedge[k] {
						if m.label[m.inblossom[w]] == 0 {
							m.assignLabel(w, 2, p^1)
						} else if m.label[m.inblossom[w]] == 1 {
							base := m.scanBlossom(v, w)
							if base >= 0 {
								m.addBlossom(base, k)
							} else {
								m.augmentMatching(k)
								augmented = true
								break
							}
						} else if m.label[w] == 0 {
							m.label[w] = 2
							m.labelend[w] = p ^ 1
						}
					} else if m.label[m.inblossom[w]] == 1 {
						b := m.inblossom[v]
						if m.bestedge[b] == -1 || kslack < m.slack(m.bestedge[b]) {
							m.bestedge[b] = k
						}
					} else if m.label[w] == 0 {
						if m.bestedge[w] == -1 || kslack < m.slack(m.bestedge[w]) {
							m.bestedge[w] = k
						}
					}
				}
			}
			if augmented {
				break
			}

			deltatype := 1
			delta := m.dualvar[0]
			for v := 1; v < n; v++ {
				if m.dualvar[v] < delta {
					delta = m.dualvar[v]
				}
			}
			deltaedge, deltablossom := -1, -1
			for v := 0; v < n; v++ {
				if m.label[m.inblossom[v]] == 0 && m.bestedge[v] != -1 {
					d := m.slack(m.bestedge[v])
					if d < delta {
						delta = d
						deltatype = 2
						deltaedge = m.bestedge[v]
					}
				}
			}
			for b := 0; b < 2*n; b++ {
				if m.blossomparent[b] == -1 && m.label[b] == 1 && m.bestedge[b] != -1 {
					d := m.slack(m.bestedge[b]) / 2
					if d < delta {
						delta = d
						deltatype = 3
						deltaedge = m.bestedge[b]
					}
				}
			}
			for b := n; b < 2*n; b++ {
				if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 &&
					m.label[b] == 2 && m.dualvar[b] < delta {
					delta = m.dualvar[b]
					deltatype = 4
					deltablossom = b
				}
			}

			for v := 0; v < n; v++ {
				switch m.label[m.inblossom[v]] {
				case 1:
					m.dualvar[v] -= delta
				case 2:
					m.dualvar[v] += delta
				}
			}
			for b := n; b < 2*n; b++ {
				if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 {
					switch m.label[b] {
					case 1:
						m.dualvar[b] += delta
					case 2:
						m.dualvar[b] -= delta
					}
				}
			}

			if deltatype == 1 {
				break
			} else if deltatype == 2 {
				m.allowedge[deltaedge] = true
				i := m.edges[deltaedge].U
				if m.label[m.inblossom[i]] == 0 {
					i = m.edges[deltaedge].V
				}
				m.queue = append(m.queue, i)
			} else if deltatype == 3 {
				m.allowedge[deltaedge] = true
				m.queue = append(m.queue, m.edges[deltaedge].U)
			} else {
				m.expandBlossom(deltablossom, false)
			}
		}
		if !augmented {
			break
		}
		for b := n; b < 2*n; b++ {
			if m.blossomparent[b] == -1 && m.blossombase[b] >= 0 &&
				m.label[b] == 1 && m.dualvar[b] == 0 {
				m.expandBlossom(b, true)
			}
		}
	}
}
