package engine

import "github.com/poiesic/recall/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results,
// and to distinguish "no matches" from "embedder unavailable":
// DegradedRetrieval fires only in the latter case.
type RetrievalMonitor interface {
	Start(query string)
	AfterSemanticSearch(results []core.RetrievalResult)
	AfterKeywordSearch(results []core.RetrievalResult)
	AfterFusion(results []core.RetrievalResult)
	DegradedRetrieval(err error)
	Finish(results []core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.RetrievalResult)   {}
func (n *noopMonitor) AfterKeywordSearch(_ []core.RetrievalResult)    {}
func (n *noopMonitor) AfterFusion(_ []core.RetrievalResult)           {}
func (n *noopMonitor) DegradedRetrieval(_ error)                      {}
func (n *noopMonitor) Finish(_ []core.RetrievalResult)                {}
