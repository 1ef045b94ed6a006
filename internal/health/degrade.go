package health

import (
	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
)

// BuildDegradedConfig drops sources the report marks unhealthy. Sources
// missing from the report count as healthy. A section that would lose every
// source keeps its first original one.
func BuildDegradedConfig(cfg config.Config, report Report) config.Config {
	healthy := make(map[sourceKey]bool, len(report.Results))
	for _, res := range report.Results {
		healthy[sourceKey{section: res.Section, name: res.Name, url: res.URL}] = res.OK
	}

	out := cfg.Clone()
	for _, section := range domain.AllSections {
		sec := out.Section(section)
		original := sec.Sources
		if len(original) == 0 {
			continue
		}

		kept := make([]config.Source, 0, len(original))
		for _, src := range original {
			ok, probed := healthy[sourceKey{section: string(section), name: src.Name, url: src.URL}]
			if !probed || ok {
				kept = append(kept, src)
			}
		}
		if len(kept) == 0 {
			kept = append(kept, original[0])
		}
		sec.Sources = kept
	}
	return out
}

// Removed lists the sources present in before but absent from after.
func Removed(before, after config.Config) []config.Source {
	var out []config.Source
	for _, section := range domain.AllSections {
		left := make(map[sourceKey]struct{})
		for _, src := range after.Section(section).Sources {
			left[sourceKey{section: string(section), name: src.Name, url: src.URL}] = struct{}{}
		}
		for _, src := range before.Section(section).Sources {
			if _, ok := left[sourceKey{section: string(section), name: src.Name, url: src.URL}]; !ok {
				out = append(out, src)
			}
		}
	}
	return out
}
