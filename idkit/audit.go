package idkit

import (
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/log"
	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/streamid"
)

// DeriveSeedLogged is DeriveSeed plus append-only audit logging: one
// Info-level line per derivation, through the same Logger the event store
// and materializer use, so a seed's derivation is traceable the same way
// an event's hash chain is.
func DeriveSeedLogged(scenarioSeed uint64, stream streamid.Identity, logger log.Logger) (SeedAudit, error) {
	audit, err := DeriveSeed(scenarioSeed, stream)
	if err != nil {
		return SeedAudit{}, err
	}

	if logger != nil {
		logger.Info("seed derived",
			log.F("scenario_seed", audit.ScenarioSeed),
			log.Stream(stream.Canonical()),
			log.F("algorithm", audit.Algorithm),
			log.F("derived_seed", audit.DerivedSeed),
		)
	}

	return audit, nil
}
