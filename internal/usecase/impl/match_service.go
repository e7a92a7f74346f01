package impl

import (
	"log/slog"
	"sort"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/geometry"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// candidate is one prepared entry of the static boundary dataset. Bounds
// and centroid are computed once at construction; the dataset is
// immutable for the process lifetime.
type candidate struct {
	area     *entity.CandidateArea
	bound    orb.Bound
	centroid orb.Point
	valid    bool
}

// matchStats counts prefilter and containment work for one computation.
type matchStats struct {
	candidates  int
	invalid     int
	prefiltered int
	tested      int
	matched     int
}

type matchService struct {
	candidates []candidate
	logger     *slog.Logger
}

// NewMatchService creates a containment engine over the candidate area
// collection. Candidates with degenerate geometry are kept but flagged so
// they are excluded fail-safe instead of aborting a computation.
func NewMatchService(areas []*entity.CandidateArea, logger *slog.Logger) usecase.MatchUsecase {
	candidates := make([]candidate, 0, len(areas))
	for _, area := range areas {
		entry := candidate{area: area}

		bound, boundOK := geometry.Bounds(area.Region)
		centroid, centroidOK := geometry.Centroid(area.Region)
		if boundOK && centroidOK {
			entry.bound = bound
			entry.centroid = centroid
			entry.valid = true
		}

		candidates = append(candidates, entry)
	}

	return &matchService{
		candidates: candidates,
		logger:     logger,
	}
}

// Region reduces all catchment fragments to one logical region. A
// multi-fragment catchment must be treated as one region for containment
// purposes, not matched fragment-by-fragment.
func (s *matchService) Region(catchment *geojson.FeatureCollection) (orb.MultiPolygon, bool) {
	if catchment == nil || len(catchment.Features) == 0 {
		return nil, false
	}

	var fragments []orb.Polygon
	for _, feature := range catchment.Features {
		if feature == nil || feature.Geometry == nil {
			continue
		}
		fragments = append(fragments, geometry.CollectPolygons(feature.Geometry)...)
	}

	return geometry.Combine(fragments)
}

// Match determines which candidate areas fall within the catchment.
func (s *matchService) Match(catchment *geojson.FeatureCollection, mode entity.TravelMode) []entity.AreaMatch {
	region, ok := s.Region(catchment)
	if !ok {
		return []entity.AreaMatch{}
	}

	matches, stats := s.matchRegion(region, mode)

	if s.logger != nil {
		s.logger.Debug("Catchment matching completed",
			slog.Int("candidates", stats.candidates),
			slog.Int("prefiltered", stats.prefiltered),
			slog.Int("tested", stats.tested),
			slog.Int("matched", stats.matched),
		)
	}

	return matches
}

// matchRegion runs the bbox prefilter and centroid containment test over
// the prepared candidate set.
func (s *matchService) matchRegion(region orb.MultiPolygon, mode entity.TravelMode) ([]entity.AreaMatch, matchStats) {
	var stats matchStats
	matches := make([]entity.AreaMatch, 0)

	catchmentBound, ok := geometry.Bounds(region)
	if !ok {
		return matches, stats
	}

	seen := make(map[string]struct{})
	for _, cand := range s.candidates {
		stats.candidates++

		if !cand.valid {
			// Fail-safe exclusion: degenerate candidate geometry never
			// aborts the whole computation.
			stats.invalid++

			continue
		}

		// The cheap rejection test runs before any exact containment work.
		if !geometry.BoundsOverlap(catchmentBound, cand.bound) {
			stats.prefiltered++

			continue
		}

		stats.tested++
		if !geometry.Contains(region, cand.centroid) {
			continue
		}

		name := cand.area.DisplayName()
		if _, dup := seen[name]; dup {
			// Areas resolving to the same name collapse into one entry,
			// first occurrence wins.
			continue
		}
		seen[name] = struct{}{}

		matches = append(matches, entity.AreaMatch{Name: name, Mode: mode.String()})
		stats.matched++
	}

	sortMatches(matches)

	return matches, stats
}

// sortMatches orders the result set lexicographically by name using a
// locale-aware comparison.
func sortMatches(matches []entity.AreaMatch) {
	if len(matches) < 2 {
		return
	}

	coll := collate.New(language.English)
	sort.SliceStable(matches, func(i, j int) bool {
		return coll.CompareString(matches[i].Name, matches[j].Name) < 0
	})
}
