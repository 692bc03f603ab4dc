package curriculum

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/montree/core"
)

// SeedWork is one catalog entry of a seed file: either a plain name or a mapping.
type SeedWork struct {
	Name    string `yaml:"name"`
	AltName string `yaml:"alt_name"`
}

// UnmarshalYAML accepts a plain name or a {name, alt_name} mapping. The name must not be blank.
func (sw *SeedWork) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if err := node.Decode(&sw.Name); err != nil {
			return err
		}
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			switch k := node.Content[i]; k.Value {
			case "name", "alt_name":
			default:
				return errors.Errorf("line %d: unknown field %q in catalog work", k.Line, k.Value)
			}
		}
		type plain SeedWork
		if err := node.Decode((*plain)(sw)); err != nil {
			return err
		}
	default:
		return errors.Errorf("line %d: catalog work must be a name or a mapping", node.Line)
	}
	if core.CleanString(sw.Name) == "" {
		return errors.Errorf("line %d: catalog work has no name", node.Line)
	}
	return nil
}

// CatalogSeed lists, per area, works in mastery order.
//
//	areas:
//	  mathematics:
//	    - Number Rods
//	    - name: Spindle Box
//	      alt_name: Boîte à fuseaux
type CatalogSeed struct {
	Areas map[string][]SeedWork `yaml:"areas"`
}

// ParseCatalogSeed reads a YAML catalog seed.
func ParseCatalogSeed(r io.Reader) (CatalogSeed, error) {
	var seed CatalogSeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return CatalogSeed{}, errors.Wrap(err, "decoding catalog seed")
	}
	// null entries never reach UnmarshalYAML
	for area, works := range seed.Areas {
		for i, w := range works {
			if core.CleanString(w.Name) == "" {
				return CatalogSeed{}, errors.Errorf("decoding catalog seed: area %s: work %d has no name", area, i+1)
			}
		}
	}
	return seed, nil
}

type SeedSummary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Seed activates the areas of seed and appends its works after the existing ones.
// Works whose canonical name already exists in the area are skipped, so seeding twice is harmless.
func (svc *Service) Seed(ctx context.Context, scopeID string, seed CatalogSeed) (SeedSummary, error) {
	var sum SeedSummary

	unlock, ok := svc.locks.tryLock(scopeID)
	if !ok {
		return sum, ErrReconcileInProgress
	}
	defer unlock()

	byArea := make(map[string][]SeedWork, len(seed.Areas))
	for raw, works := range seed.Areas {
		area := NormalizeArea(raw)
		if !IsArea(area) {
			err := errors.Errorf("unknown area %q", raw)
			return sum, core.NewValidationError(err, core.FieldError{Field: "areas", Error: err.Error()})
		}
		byArea[area] = append(byArea[area], works...)
	}
	areas := make([]string, 0, len(byArea))
	for a := range byArea {
		areas = append(areas, a)
	}
	sort.Strings(areas)

	if err := svc.repos.Catalog.ActivateAreas(ctx, scopeID, areas...); err != nil {
		return sum, errors.Wrap(err, "activating areas")
	}
	existing, err := svc.repos.Catalog.ListWorks(ctx, scopeID, areas...)
	if err != nil {
		return sum, errors.Wrap(err, "listing works")
	}
	run := NewRun(scopeID, areas, existing, nil)

	for _, area := range areas {
		known := make(map[string]bool)
		for _, w := range run.works[area] {
			for _, n := range w.names {
				known[n] = true
			}
		}
		for _, sw := range byArea[area] {
			name := core.CleanString(sw.Name)
			canonical := Normalize(name)
			if canonical == "" || known[canonical] {
				sum.Skipped++
				continue
			}
			nw := NewWork{
				ID:       workID(area, name),
				ScopeID:  scopeID,
				Area:     area,
				Name:     name,
				Sequence: run.MaxSequence(area) + 1,
			}
			if alt := core.CleanString(sw.AltName); alt != "" {
				nw.AltName = null.StringFrom(alt)
			}
			w, err := svc.repos.Catalog.CreateWork(ctx, nw)
			if err != nil {
				return sum, errors.Wrapf(err, "creating work %q", name)
			}
			run.AddWork(w)
			known[canonical] = true
			sum.Created++
		}
	}
	svc.log.Info("catalog seeded", "scope", scopeID, "created", sum.Created, "skipped", sum.Skipped)
	return sum, nil
}
