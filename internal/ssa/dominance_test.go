/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ssa

import (
	"testing"

	"github.com/cloudwego/wasmflow/internal/cfg"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
	"pgregory.net/rapid"
)

func makeGraph(n int, edges [][2]int) *cfg.Graph[int] {
	g := &cfg.Graph[int]{}
	for i := 0; i < n; i++ {
		g.AddBlock()
	}
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func TestDominance_Diamond(t *testing.T) {
	g := makeGraph(4, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	dt := BuildDominanceTree(g)

	for b := 1; b < 4; b++ {
		d, ok := dt.Idom(b)
		require.True(t, ok)
		require.Equal(t, 0, d)
	}
	require.Equal(t, []int{3}, dt.SortedFrontier(1))
	require.Equal(t, []int{3}, dt.SortedFrontier(2))
	require.Empty(t, dt.SortedFrontier(0))
	require.Empty(t, dt.SortedFrontier(3))
	require.Equal(t, []int{1, 2, 3}, dt.Children(0))
	require.True(t, dt.DominatedBy(0).Equal(mapset.NewThreadUnsafeSet(0, 1, 2, 3)))
	require.True(t, dt.DominatedBy(1).Equal(mapset.NewThreadUnsafeSet(1)))
	require.Equal(t, 0, dt.LCA(1, 2))
	require.Equal(t, 0, dt.LCA(3, 1))
	require.Equal(t, 1, dt.LCA(1, 1))
	require.False(t, dt.StrictlyDominates(1, 1))
	require.True(t, dt.Dominates(1, 1))
}

func TestDominance_Loop(t *testing.T) {
	/* 0 -> 1 (header) -> 2 (body) -> 1, 1 -> 3 (exit) */
	g := makeGraph(4, [][2]int{{0, 1}, {1, 2}, {2, 1}, {1, 3}})
	dt := BuildDominanceTree(g)

	idom := func(b int) int {
		d, _ := dt.Idom(b)
		return d
	}
	require.Equal(t, 0, idom(1))
	require.Equal(t, 1, idom(2))
	require.Equal(t, 1, idom(3))
	require.Equal(t, []int{1}, dt.SortedFrontier(2))
	require.Equal(t, []int{1}, dt.SortedFrontier(1))
	require.Equal(t, []int{0, 1, 3, 2}, dt.Order())
}

func TestDominance_MergeAfterMerge(t *testing.T) {
	/* the if-join block 5 gets a smaller id than the else block 6 */
	g := makeGraph(7, [][2]int{{0, 1}, {0, 6}, {1, 5}, {6, 5}, {5, 2}, {5, 3}, {2, 4}, {3, 4}})
	dt := BuildDominanceTree(g)

	d, _ := dt.Idom(5)
	require.Equal(t, 0, d)
	d, _ = dt.Idom(4)
	require.Equal(t, 5, d)
	require.Equal(t, []int{5}, dt.SortedFrontier(6))
	require.Equal(t, []int{4}, dt.SortedFrontier(3))
}

func TestDominance_Unreachable(t *testing.T) {
	g := makeGraph(4, [][2]int{{0, 1}, {2, 1}, {2, 3}})
	dt := BuildDominanceTree(g)

	_, ok := dt.Idom(2)
	require.False(t, ok)
	require.False(t, dt.Reachable(3))
	require.False(t, dt.Dominates(0, 2))
	require.False(t, dt.Dominates(2, 3))
	require.Equal(t, -1, dt.LCA(1, 2))
	require.Equal(t, 0, dt.DominatedBy(2).Cardinality())
	require.Equal(t, 0, dt.Frontier(2).Cardinality())
	require.Nil(t, dt.Children(2))

	/* the edge from the dead block does not make 1 a join point */
	require.Empty(t, dt.SortedFrontier(0))
	d, _ := dt.Idom(1)
	require.Equal(t, 0, d)
}

func TestDominance_BackEdgeToEntry(t *testing.T) {
	g := makeGraph(3, [][2]int{{0, 1}, {1, 0}, {0, 2}})
	dt := BuildDominanceTree(g)

	d, _ := dt.Idom(0)
	require.Equal(t, 0, d)
	require.Equal(t, []int{0}, dt.SortedFrontier(1))
	require.Equal(t, []int{0}, dt.SortedFrontier(0))
	require.Empty(t, dt.SortedFrontier(2))
}

func randomGraph(t *rapid.T) *cfg.Graph[int] {
	n := rapid.IntRange(1, 14).Draw(t, "blocks")
	var edges [][2]int
	for i := 0; i < n; i++ {
		ns := rapid.IntRange(0, 2).Draw(t, "succs")
		for j := 0; j < ns; j++ {
			edges = append(edges, [2]int{i, rapid.IntRange(0, n-1).Draw(t, "succ")})
		}
	}
	return makeGraph(n, edges)
}

func TestDominance_MatchesGonum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		dt := BuildDominanceTree(g)

		/* the same graph for gonum, self loops never matter for dominance */
		dg := simple.NewDirectedGraph()
		for _, bb := range g.Blocks {
			dg.AddNode(simple.Node(bb.Id))
		}
		for _, bb := range g.Blocks {
			for _, s := range bb.Succ {
				if s != bb.Id {
					dg.SetEdge(dg.NewEdge(simple.Node(bb.Id), simple.Node(s)))
				}
			}
		}
		oracle := flow.Dominators(simple.Node(g.Entry), dg)

		/* immediate dominators */
		for _, b := range dt.Order() {
			if b == g.Entry {
				continue
			}
			d, ok := dt.Idom(b)
			require.True(t, ok)
			od := oracle.DominatorOf(int64(b))
			require.NotNil(t, od)
			require.Equal(t, od.ID(), int64(d), "idom of bb_%d", b)
		}
	})
}

func TestDominance_Soundness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		dt := BuildDominanceTree(g)
		rs := g.Reachable()

		for _, b := range dt.Order() {
			require.True(t, dt.Dominates(g.Entry, b))
			d, ok := dt.Idom(b)
			require.True(t, ok)
			require.True(t, dt.Dominates(d, b))

			/* the dominated set agrees with Dominates */
			dt.DominatedBy(b).Each(func(x int) bool {
				require.True(t, dt.Dominates(b, x))
				return false
			})
		}

		/* frontiers by definition */
		for _, x := range dt.Order() {
			want := mapset.NewThreadUnsafeSet[int]()
			for _, y := range dt.Order() {
				for _, p := range g.Block(y).Pred {
					if rs[p] && dt.Dominates(x, p) && !dt.StrictlyDominates(x, y) {
						want.Add(y)
					}
				}
			}
			require.True(t, want.Equal(dt.Frontier(x)), "frontier of bb_%d: want %v got %v", x, want, dt.Frontier(x))
		}
	})
}
