// Package core hosts the report authoring service: the authorization gate,
// the freeze protocol, blob layout ownership, document rendering, and the
// default commit-time rule set.
package core

import (
	"laudocore/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewClosedReportIntegrityRule())
	engine.Register(NewFrozenHeaderImmutableRule())
	engine.Register(NewPlacementSingletonRule())
	engine.Register(NewImageIndexRule())
	engine.Register(NewReportNumberUniqueRule())
	return engine
}
