package analysis

import (
	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// EndEffectResult compares allowing an ending only as a first ending or only
// as a second ending against allowing it in neither list.
type EndEffectResult struct {
	End        string
	FirstWith  Distribution
	SecondWith Distribution
}

// EndEffect removes end from both ending lists of rules, then measures the
// change distributions of adding it back to each list separately.
func EndEffect(window []model.Entry, rules ortho.Rules, end string) (EndEffectResult, error) {
	end, err := ortho.NormalizeRule(end)
	if err != nil {
		return EndEffectResult{}, err
	}
	neither := rules.WithoutEnd(end)
	base := ortho.NewPatterns(neither)
	first := ortho.NewPatterns(neither.With(ortho.FirstEnds, end))
	second := ortho.NewPatterns(neither.With(ortho.SecondEnds, end))

	res := EndEffectResult{End: end}
	if res.FirstWith, err = ChangeDistribution(window, first, base); err != nil {
		return EndEffectResult{}, err
	}
	if res.SecondWith, err = ChangeDistribution(window, second, base); err != nil {
		return EndEffectResult{}, err
	}
	return res, nil
}
