package xmllex

import (
	"fmt"

	"github.com/jacoelho/xmllex/pkg/xmltoken"
)

func (l lexLimitOptions) resolve() (xmltoken.Limits, error) {
	var limits xmltoken.Limits
	fields := []struct {
		name string
		opt  intOption
		dst  *int
	}{
		{"max name bytes", l.maxNameBytes, &limits.MaxNameBytes},
		{"max attr value bytes", l.maxAttrValueBytes, &limits.MaxAttrValueBytes},
		{"max text run bytes", l.maxTextRunBytes, &limits.MaxTextRunBytes},
		{"max comment bytes", l.maxCommentBytes, &limits.MaxCommentBytes},
		{"max cdata bytes", l.maxCDATABytes, &limits.MaxCDATABytes},
		{"max doctype bytes", l.maxDoctypeBytes, &limits.MaxDoctypeBytes},
		{"max attrs per element", l.maxAttrsPerElement, &limits.MaxAttrsPerElement},
		{"max per-tag bytes", l.maxPerTagBytes, &limits.MaxPerTagBytes},
		{"max depth", l.maxDepth, &limits.MaxDepth},
	}
	for _, f := range fields {
		value := f.opt.resolved()
		if value < 0 {
			return xmltoken.Limits{}, fmt.Errorf("%s must be >= 0", f.name)
		}
		*f.dst = value
	}
	// zero selects the default; values above the absolute caps are capped.
	return limits.Clamp(), nil
}
