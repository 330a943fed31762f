// Package config loads SimulationSnapshot fixtures from disk for the
// CLI (§6 External Interfaces), the way internal/config.InputParser
// loads a Configuration in the teacher repo.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rpgo/retirement-sim/internal/domain"
)

// Loader reads a Snapshot from a YAML or JSON file and validates its
// cross-references before handing it to the engine.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// LoadFromFile reads filename, unmarshalling as YAML or JSON by
// extension (.json is parsed with encoding/json; everything else with
// yaml.v3, matching snapshot fixtures authored by hand), then validates
// the result.
func (l *Loader) LoadFromFile(filename string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", filename, err)
	}

	var snap domain.Snapshot
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse JSON snapshot: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse YAML snapshot: %w", err)
		}
	}

	l.normalize(&snap)

	if err := l.Validate(&snap); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}
	return &snap, nil
}

// normalize sorts the active-strategy-id list so two runs built from
// the same file never differ in iteration order.
func (l *Loader) normalize(snap *domain.Snapshot) {
	sort.Strings(snap.Scenario.PersonStrategyIDs)
}

// Validate cross-checks every id reference in the snapshot, returning
// ErrMissingReference (wrapped with the offending id) on the first
// dangling pointer found, and ErrEmptyPopulation if the scenario
// resolves to no active people at all.
func (l *Loader) Validate(snap *domain.Snapshot) error {
	people := make(map[string]bool, len(snap.People))
	for _, p := range snap.People {
		people[p.ID] = true
	}
	strategies := make(map[string]bool, len(snap.PersonStrategies))
	for _, ps := range snap.PersonStrategies {
		strategies[ps.ID] = true
		if !people[ps.PersonID] {
			return fmt.Errorf("strategy %q references person %q: %w", ps.ID, ps.PersonID, domain.ErrMissingReference)
		}
	}
	accounts := make(map[string]bool, len(snap.InvestmentAccounts))
	for _, acct := range snap.InvestmentAccounts {
		accounts[acct.ID] = true
		if !people[acct.OwnerID] {
			return fmt.Errorf("investment account %q references owner %q: %w", acct.ID, acct.OwnerID, domain.ErrMissingReference)
		}
	}
	holdings := make(map[string]bool, len(snap.Holdings))
	for _, h := range snap.Holdings {
		holdings[h.ID] = true
		if !accounts[h.InvestmentAccountID] {
			return fmt.Errorf("holding %q references investment account %q: %w", h.ID, h.InvestmentAccountID, domain.ErrMissingReference)
		}
	}
	for _, ps := range snap.PersonStrategies {
		if id := ps.RMD.ExcessTargetHoldingID; id != "" && !holdings[id] {
			return fmt.Errorf("strategy %q rmd excess target %q: %w", ps.ID, id, domain.ErrMissingReference)
		}
		if id := ps.RothConversion.SourceHoldingID; id != "" && !holdings[id] {
			return fmt.Errorf("strategy %q roth conversion source %q: %w", ps.ID, id, domain.ErrMissingReference)
		}
		if id := ps.RothConversion.TargetHoldingID; id != "" && !holdings[id] {
			return fmt.Errorf("strategy %q roth conversion target %q: %w", ps.ID, id, domain.ErrMissingReference)
		}
	}
	for _, id := range snap.Scenario.PersonStrategyIDs {
		if !strategies[id] {
			return fmt.Errorf("scenario active strategy %q: %w", id, domain.ErrMissingReference)
		}
	}
	if len(snap.ActivePeople()) == 0 {
		return domain.ErrEmptyPopulation
	}
	return nil
}
