package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/pkg/logger"
)

type staticSource struct {
	records []hierarchy.Record
	err     error
}

func (s *staticSource) Records(context.Context) ([]hierarchy.Record, hierarchy.NormalizeReport, error) {
	return s.records, hierarchy.NormalizeReport{}, s.err
}

func TestHierarchyServiceCurrentBeforeBuild(t *testing.T) {
	svc, err := NewHierarchyService(&staticSource{})
	require.NoError(t, err)

	snapshot := svc.Current()
	require.NotNil(t, snapshot)
	require.NotNil(t, snapshot.Manager)
	require.Empty(t, snapshot.Manager.ModuleTree("IT"))

	_, err = NewHierarchyService(nil)
	require.Error(t, err)
}

func TestHierarchyServiceRebuildSwapsSnapshot(t *testing.T) {
	source := &staticSource{records: []hierarchy.Record{
		{ID: "F1", Name: "Networking", Module: "IT", Type: hierarchy.TypeFolder},
	}}
	svc, err := NewHierarchyService(source)
	require.NoError(t, err)

	first, err := svc.Rebuild(context.Background())
	require.NoError(t, err)
	require.Same(t, first, svc.Current())
	require.Equal(t, 1, first.Manager.Len())

	source.records = append(source.records, hierarchy.Record{ID: "K1", Name: "Router", ParentID: "F1", Module: "IT", Type: hierarchy.TypeKind})
	second, err := svc.Rebuild(context.Background())
	require.NoError(t, err)
	require.Same(t, second, svc.Current())

	require.Equal(t, 1, first.Manager.Len())
	node, _ := first.Manager.Find("F1")
	require.Empty(t, node.Children)
	require.Equal(t, []string{"F1", "K1"}, nodeIDs(second.Manager.Descendants("F1", true)))
}

func TestHierarchyServiceRebuildFailureKeepsSnapshot(t *testing.T) {
	source := &staticSource{records: []hierarchy.Record{{ID: "F1", Module: "IT"}}}
	svc, err := NewHierarchyService(source)
	require.NoError(t, err)

	good, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	source.err = errors.New("db down")
	_, err = svc.Rebuild(context.Background())
	require.Error(t, err)
	require.Same(t, good, svc.Current())
}

func TestHierarchyServiceLogsCycles(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	prev := logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })

	svc, err := NewHierarchyService(&staticSource{records: []hierarchy.Record{
		{ID: "A", ParentID: "B", Module: "IT"},
		{ID: "B", ParentID: "A", Module: "IT"},
		{Module: "IT"},
	}})
	require.NoError(t, err)

	snapshot, err := svc.Rebuild(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, snapshot.Report.Cycles)
	require.Equal(t, 1, snapshot.Report.Dropped)

	require.Equal(t, 1, recorded.FilterMessageSnippet("parent cycles").Len())
	require.Equal(t, 1, recorded.FilterMessageSnippet("dropped").Len())
}

func TestHierarchyServiceConcurrentReaders(t *testing.T) {
	source := &staticSource{records: []hierarchy.Record{
		{ID: "F1", Module: "IT", Type: hierarchy.TypeFolder},
		{ID: "K1", ParentID: "F1", Module: "IT"},
	}}
	svc, err := NewHierarchyService(source)
	require.NoError(t, err)
	_, err = svc.Rebuild(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := svc.Current()
				got := snap.Manager.Descendants("F1", true)
				if len(got) != 0 && len(got) != 2 {
					t.Errorf("unexpected descendants: %d", len(got))
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		_, err := svc.Rebuild(context.Background())
		require.NoError(t, err)
	}
	wg.Wait()
}

func nodeIDs(nodes []*hierarchy.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
